// Package queue carries order activity over RabbitMQ: a publisher used
// by the order service and a consumer that appends every event to the
// activity log.
package queue

import (
    "time"

    "github.com/shopspring/decimal"
)

// Event types.
const (
    OrderCreated    = "order.created"
    OrderUpdated    = "order.updated"
    OrderDeleted    = "order.deleted"
    PaymentRecorded = "payment.recorded"
)

// OrderEvent describes one change to an order.  It holds enough for the
// activity log without querying the database.
type OrderEvent struct {
    ID              string           `json:"id"`
    Type            string           `json:"type"`
    OrderID         uint64           `json:"order_id"`
    ActorID         uint64           `json:"actor_id"`
    InventoryItemID uint64           `json:"inventory_item_id"`
    CustomerName    string           `json:"customer_name"`
    Status          string           `json:"status"`
    PaymentStatus   string           `json:"payment_status"`
    Amount          *decimal.Decimal `json:"amount,omitempty"`
    OccurredAt      time.Time        `json:"occurred_at"`
}
