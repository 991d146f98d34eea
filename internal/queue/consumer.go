package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer appends every order event on the queue to the activity log,
// one line per event.
type Consumer struct {
    URL     string
    Queue   string
    LogPath string
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff (capped at 30s) when the
// connection drops.
func (c *Consumer) Run(ctx context.Context) {
    backoff := time.Second
    for ctx.Err() == nil {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Warnf("activity-consumer: dial failed: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return
            }
            backoff = min(backoff*2, 30*time.Second)
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return
        }
        log.Warnf("activity-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warnf("activity-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handle(d.Body); err != nil {
                log.Errorf("activity-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false) // do not requeue poison messages
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handle(body []byte) error {
    var ev OrderEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if dir := filepath.Dir(c.LogPath); dir != "." {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return fmt.Errorf("mkdir %s: %w", dir, err)
        }
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single activity log line.
func FormatLine(ev OrderEvent) string {
    var b strings.Builder
    fmt.Fprintf(&b, "[%s] %s | order_id=%d | actor_id=%d | item_id=%d | customer=%q | status=%s | payment_status=%s",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.OrderID, ev.ActorID, ev.InventoryItemID,
        ev.CustomerName, ev.Status, ev.PaymentStatus)
    if ev.Amount != nil {
        fmt.Fprintf(&b, " | amount=%s", ev.Amount.StringFixed(2))
    }
    b.WriteString("\n")
    return b.String()
}
