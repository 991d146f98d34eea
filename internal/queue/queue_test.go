package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	amount := decimal.RequireFromString("120")
	ev := OrderEvent{
		Type:            PaymentRecorded,
		OrderID:         3,
		ActorID:         2,
		InventoryItemID: 1,
		CustomerName:    "John Doe",
		Status:          "pending",
		PaymentStatus:   "paid",
		Amount:          &amount,
		OccurredAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.Equal(t,
		`[2024-05-01T12:00:00Z] payment.recorded | order_id=3 | actor_id=2 | item_id=1 | customer="John Doe" | status=pending | payment_status=paid | amount=120.00`+"\n",
		FormatLine(ev))
}

func TestConsumerHandleAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "activity.log")
	c := &Consumer{LogPath: path}

	for _, typ := range []string{OrderCreated, OrderDeleted} {
		body, err := json.Marshal(OrderEvent{Type: typ, OrderID: 9, OccurredAt: time.Now()})
		require.NoError(t, err)
		require.NoError(t, c.handle(body))
	}
	require.Error(t, c.handle([]byte("{")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "order.created | order_id=9")
	require.Contains(t, string(data), "order.deleted | order_id=9")
}

func TestPublishStampsAndBuffers(t *testing.T) {
	p := NewPublisher("amqp://unused", "order.activity", 1)

	require.NoError(t, p.Publish(context.Background(), OrderEvent{Type: OrderCreated, OrderID: 1}))
	require.Error(t, p.Publish(context.Background(), OrderEvent{Type: OrderCreated, OrderID: 2}))

	ev := <-p.events
	require.NotEmpty(t, ev.ID)
	require.False(t, ev.OccurredAt.IsZero())
	require.Equal(t, uint64(1), ev.OrderID)
}
