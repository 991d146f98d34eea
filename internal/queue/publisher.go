package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends order events to a durable queue.  Publish only enqueues;
// a background loop started by Run owns the broker connection, so request
// handlers never wait on RabbitMQ.  Events that do not fit in the buffer
// are dropped with a warning.
type Publisher struct {
    url    string
    queue  string
    events chan OrderEvent

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewPublisher returns a publisher for the given broker URL and queue.
func NewPublisher(url, queue string, buffer int) *Publisher {
    if buffer < 1 {
        buffer = 256
    }
    return &Publisher{url: url, queue: queue, events: make(chan OrderEvent, buffer)}
}

// Publish stamps ev with an id and time when missing and enqueues it.
func (p *Publisher) Publish(_ context.Context, ev OrderEvent) error {
    if ev.ID == "" {
        ev.ID = uuid.NewString()
    }
    if ev.OccurredAt.IsZero() {
        ev.OccurredAt = time.Now().UTC()
    }
    select {
    case p.events <- ev:
        return nil
    default:
        log.Warnf("order-events: buffer full, dropping %s for order %d", ev.Type, ev.OrderID)
        return fmt.Errorf("event buffer full")
    }
}

// Run publishes queued events until ctx is cancelled.  Broker errors are
// logged and the connection is re-established on the next event.
func (p *Publisher) Run(ctx context.Context) {
    defer p.Close()
    for {
        select {
        case <-ctx.Done():
            return
        case ev := <-p.events:
            if err := p.send(ctx, ev); err != nil {
                log.Warnf("order-events: publish %s for order %d failed: %v", ev.Type, ev.OrderID, err)
                p.reset()
            }
        }
    }
}

func (p *Publisher) channel() (*amqp.Channel, error) {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    if p.conn == nil || p.conn.IsClosed() {
        conn, err := amqp.Dial(p.url)
        if err != nil {
            return nil, fmt.Errorf("dial: %w", err)
        }
        p.conn = conn
    }
    ch, err := p.conn.Channel()
    if err != nil {
        return nil, fmt.Errorf("channel open: %w", err)
    }
    // durable so events survive broker restarts
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        return nil, fmt.Errorf("queue declare: %w", err)
    }
    p.ch = ch
    return ch, nil
}

func (p *Publisher) send(ctx context.Context, ev OrderEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal: %w", err)
    }
    ch, err := p.channel()
    if err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    ev.OccurredAt,
        Body:         body,
    })
}

func (p *Publisher) reset() {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}

// Close drops the broker connection.
func (p *Publisher) Close() { p.reset() }
