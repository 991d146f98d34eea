package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/shoe-workshop/internal/model"
	"github.com/iliyamo/shoe-workshop/internal/queue"
	"github.com/iliyamo/shoe-workshop/internal/repository"
)

// EventPublisher receives order activity after each committed change.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.OrderEvent) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.OrderEvent) error { return nil }

// CreateOrderInput is a new order request.  Status and PaymentStatus
// default to pending and unpaid.
type CreateOrderInput struct {
	CustomerName    string
	InventoryItemID uint64
	Status          mo.Option[model.OrderStatus]
	PaymentStatus   mo.Option[model.PaymentStatus]
}

// UpdateOrderInput merges into an existing order.
type UpdateOrderInput struct {
	CustomerName  mo.Option[string]
	Status        mo.Option[model.OrderStatus]
	PaymentStatus mo.Option[model.PaymentStatus]
}

// PaymentInput records a payment; Status defaults to completed.
type PaymentInput struct {
	Amount decimal.Decimal
	Status mo.Option[model.PaymentState]
}

// OrderService owns the order/stock invariant: an item's stock equals its
// initial stock minus the orders outstanding against it that are not
// cancelled.  Every write that touches both tables runs in one transaction.
type OrderService struct {
	db       *sql.DB
	orders   *repository.OrderRepo
	items    *repository.InventoryRepo
	payments *repository.PaymentRepo
	logs     *repository.WorkerLogRepo
	events   EventPublisher
	now      func() time.Time
}

func NewOrderService(db *sql.DB, orders *repository.OrderRepo, items *repository.InventoryRepo,
	payments *repository.PaymentRepo, logs *repository.WorkerLogRepo, events EventPublisher) *OrderService {
	if events == nil {
		events = NopPublisher{}
	}
	return &OrderService{
		db:       db,
		orders:   orders,
		items:    items,
		payments: payments,
		logs:     logs,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create places an order for one unit of the item on behalf of userID.
// Taking the unit and inserting the order commit together; the stock
// check is part of the decrement so concurrent orders cannot oversell.
func (s *OrderService) Create(ctx context.Context, userID uint64, in CreateOrderInput) (*model.OrderDetail, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" || in.InventoryItemID == 0 {
		return nil, invalid("Customer name and inventory item ID are required")
	}
	o := model.Order{
		CustomerName:    name,
		Status:          in.Status.OrElse(model.OrderPending),
		PaymentStatus:   in.PaymentStatus.OrElse(model.PaymentUnpaid),
		UserID:          userID,
		InventoryItemID: in.InventoryItemID,
	}
	if !o.Status.Valid() || o.Status == model.OrderCancelled {
		return nil, invalid("Invalid status")
	}
	if !o.PaymentStatus.Valid() {
		return nil, invalid("Invalid payment status")
	}

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.items.DecrementStockTx(ctx, tx, o.InventoryItemID); err != nil {
			return err
		}
		return s.orders.CreateTx(ctx, tx, &o)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.OrderCreated, userID, &o, nil)
	return s.orders.GetDetail(ctx, o.ID)
}

// Get returns the order with its user, item, payments and worker logs.
func (s *OrderService) Get(ctx context.Context, id uint64) (*model.OrderDetail, error) {
	d, err := s.orders.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	byOrder, err := s.payments.ListByOrders(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	d.Payments = lo.Ternary(byOrder[id] != nil, byOrder[id], []model.Payment{})
	if d.WorkerLogs, err = s.logs.ListByOrder(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns one page of orders with their payments attached.
func (s *OrderService) List(ctx context.Context, f model.OrderFilter) ([]model.OrderDetail, model.Pagination, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, model.Pagination{}, invalid("Invalid status")
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return nil, model.Pagination{}, invalid("Invalid payment status")
	}
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	ids := lo.Map(orders, func(o model.OrderDetail, _ int) uint64 { return o.ID })
	byOrder, err := s.payments.ListByOrders(ctx, ids)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	for i := range orders {
		orders[i].Payments = lo.Ternary(byOrder[orders[i].ID] != nil, byOrder[orders[i].ID], []model.Payment{})
	}
	return orders, model.NewPagination(f.Page, f.Limit, total), nil
}

// Update merges the supplied fields.  Moving an order into cancelled
// returns its unit to stock and moving it out of cancelled takes one
// again, so deleting a cancelled order must not restore stock a second
// time.
func (s *OrderService) Update(ctx context.Context, actorID, id uint64, in UpdateOrderInput) (*model.OrderDetail, error) {
	if st, ok := in.Status.Get(); ok && !st.Valid() {
		return nil, invalid("Invalid status")
	}
	if ps, ok := in.PaymentStatus.Get(); ok && !ps.Valid() {
		return nil, invalid("Invalid payment status")
	}
	if name, ok := in.CustomerName.Get(); ok && strings.TrimSpace(name) == "" {
		return nil, invalid("Customer name cannot be empty")
	}

	var o *model.Order
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if o, err = s.orders.GetForUpdateTx(ctx, tx, id); err != nil {
			return err
		}
		prev := o.Status
		o.CustomerName = strings.TrimSpace(in.CustomerName.OrElse(o.CustomerName))
		o.Status = in.Status.OrElse(o.Status)
		o.PaymentStatus = in.PaymentStatus.OrElse(o.PaymentStatus)

		switch {
		case prev != model.OrderCancelled && o.Status == model.OrderCancelled:
			err = s.items.IncrementStockTx(ctx, tx, o.InventoryItemID)
		case prev == model.OrderCancelled && o.Status != model.OrderCancelled:
			err = s.items.DecrementStockTx(ctx, tx, o.InventoryItemID)
		}
		if err != nil {
			return err
		}
		return s.orders.UpdateTx(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.OrderUpdated, actorID, o, nil)
	return s.orders.GetDetail(ctx, id)
}

// Delete removes the order with its payments and worker logs and returns
// its unit to stock unless it was cancelled.
func (s *OrderService) Delete(ctx context.Context, actorID, id uint64) error {
	var o *model.Order
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if o, err = s.orders.GetForUpdateTx(ctx, tx, id); err != nil {
			return err
		}
		if err := s.orders.DeleteTx(ctx, tx, id); err != nil {
			return err
		}
		if o.Status == model.OrderCancelled {
			return nil
		}
		return s.items.IncrementStockTx(ctx, tx, o.InventoryItemID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, queue.OrderDeleted, actorID, o, nil)
	return nil
}

// AddPayment records a payment against an order.  A completed payment
// marks the order paid in the same transaction.
func (s *OrderService) AddPayment(ctx context.Context, actorID, orderID uint64, in PaymentInput) (*model.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, invalid("Valid payment amount is required")
	}
	p := model.Payment{
		OrderID: orderID,
		Amount:  in.Amount.Round(2),
		Status:  in.Status.OrElse(model.PaymentStateCompleted),
	}
	if !p.Status.Valid() {
		return nil, invalid("Invalid payment status")
	}
	if !p.Amount.IsPositive() {
		return nil, invalid("Valid payment amount is required")
	}

	var o *model.Order
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if o, err = s.orders.GetForUpdateTx(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.payments.CreateTx(ctx, tx, &p); err != nil {
			return err
		}
		if p.Status != model.PaymentStateCompleted || o.PaymentStatus == model.PaymentPaid {
			return nil
		}
		o.PaymentStatus = model.PaymentPaid
		return s.orders.SetPaymentStatusTx(ctx, tx, orderID, model.PaymentPaid)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.PaymentRecorded, actorID, o, &p.Amount)
	return &p, nil
}

func (s *OrderService) publish(ctx context.Context, typ string, actorID uint64, o *model.Order, amount *decimal.Decimal) {
	ev := queue.OrderEvent{
		Type:            typ,
		OrderID:         o.ID,
		ActorID:         actorID,
		InventoryItemID: o.InventoryItemID,
		CustomerName:    o.CustomerName,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Amount:          amount,
		OccurredAt:      s.now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Warnf("order %d: %s event not published: %v", o.ID, typ, err)
	}
}
