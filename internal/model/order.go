package model

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func init() {
	// amounts are rendered as JSON numbers, matching the client contract
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{OrderPending, OrderCompleted, OrderShipped, OrderCancelled}

func (s OrderStatus) Valid() bool { return lo.Contains(orderStatuses, s) }

// PaymentStatus is the payment state of an order as a whole.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentRefunded PaymentStatus = "refunded"
)

var paymentStatuses = []PaymentStatus{PaymentPaid, PaymentUnpaid, PaymentRefunded}

func (s PaymentStatus) Valid() bool { return lo.Contains(paymentStatuses, s) }

// PaymentState is the state of a single payment row.
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateCompleted PaymentState = "completed"
	PaymentStateFailed    PaymentState = "failed"
)

var paymentStates = []PaymentState{PaymentStatePending, PaymentStateCompleted, PaymentStateFailed}

func (s PaymentState) Valid() bool { return lo.Contains(paymentStates, s) }

// Order records one unit of an inventory item sold to a customer.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerName    – free text customer name.
//  Status          – fulfilment state.
//  PaymentStatus   – derived from payments; flipped to paid by a completed payment.
//  UserID          – user who placed the order.
//  InventoryItemID – item the order consumed one unit of.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Order struct {
	ID              uint64        `json:"id"`              // orders.id
	CustomerName    string        `json:"customerName"`    // orders.customer_name
	Status          OrderStatus   `json:"status"`          // orders.status
	PaymentStatus   PaymentStatus `json:"paymentStatus"`   // orders.payment_status
	UserID          uint64        `json:"userId"`          // orders.user_id
	InventoryItemID uint64        `json:"inventoryItemId"` // orders.inventory_item_id
	CreatedAt       time.Time     `json:"createdAt"`       // orders.created_at
	UpdatedAt       time.Time     `json:"updatedAt"`       // orders.updated_at
}

// OrderDetail is an order with its related records attached.  Payments
// and WorkerLogs are nil when the view does not load them.
type OrderDetail struct {
	Order
	User          UserSummary `json:"user"`
	InventoryItem ItemSummary `json:"inventoryItem"`
	Payments      []Payment   `json:"payments,omitempty"`
	WorkerLogs    []WorkerLog `json:"workerLogs,omitempty"`
}

// Payment is money received (or attempted) against an order.
type Payment struct {
	ID        uint64          `json:"id"`        // payments.id
	OrderID   uint64          `json:"orderId"`   // payments.order_id
	Amount    decimal.Decimal `json:"amount"`    // payments.amount
	Status    PaymentState    `json:"status"`    // payments.status
	CreatedAt time.Time       `json:"createdAt"` // payments.created_at
}

// OrderFilter narrows the sales listing.  Zero values mean "no filter".
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	CustomerName  string
	Page          int
	Limit         int
}

// SalesSummary is the analytics payload for a period.
type SalesSummary struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalOrders       int             `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	Period            string          `json:"period"`
}
