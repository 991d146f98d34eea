package service

import (
	"context"

	"github.com/iliyamo/shoe-workshop/internal/repository"
)

// DashboardCounts is the management overview.
type DashboardCounts struct {
	Users          int `json:"users"`
	Orders         int `json:"orders"`
	InventoryItems int `json:"inventoryItems"`
	Payments       int `json:"payments"`
}

type Dashboard struct {
	users    *repository.UserRepo
	orders   *repository.OrderRepo
	items    *repository.InventoryRepo
	payments *repository.PaymentRepo
}

func NewDashboard(users *repository.UserRepo, orders *repository.OrderRepo, items *repository.InventoryRepo, payments *repository.PaymentRepo) *Dashboard {
	return &Dashboard{users: users, orders: orders, items: items, payments: payments}
}

// Counts returns the row count of each table shown on the dashboard.
func (d *Dashboard) Counts(ctx context.Context) (DashboardCounts, error) {
	var (
		c   DashboardCounts
		err error
	)
	if c.Users, err = d.users.Count(ctx); err != nil {
		return c, err
	}
	if c.Orders, err = d.orders.Count(ctx); err != nil {
		return c, err
	}
	if c.InventoryItems, err = d.items.Count(ctx); err != nil {
		return c, err
	}
	c.Payments, err = d.payments.Count(ctx)
	return c, err
}
