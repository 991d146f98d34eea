package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

// PaymentRepo persists payments.  Payments are immutable once written.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, order_id, amount, status, created_at`

func scanPayment(row interface{ Scan(...any) error }, p *model.Payment) error {
	return row.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Status, &p.CreatedAt)
}

// CreateTx inserts p inside tx and fills in its id and timestamp.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (order_id, amount, status) VALUES (?, ?, ?)`,
		p.OrderID, p.Amount.StringFixed(2), p.Status)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanPayment(tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id), p)
}

// ListByOrders returns the payments of each order id, oldest first.
func (r *PaymentRepo) ListByOrders(ctx context.Context, orderIDs []uint64) (map[uint64][]model.Payment, error) {
	out := make(map[uint64][]model.Payment, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(orderIDs)), ",")
	args := lo.Map(orderIDs, func(id uint64, _ int) any { return id })
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id IN (`+placeholders+`) ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		out[p.OrderID] = append(out[p.OrderID], p)
	}
	return out, rows.Err()
}

// SumCompletedSince totals completed payments created at or after since.
func (r *PaymentRepo) SumCompletedSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = ? AND created_at >= ?`,
		model.PaymentStateCompleted, since).Scan(&sum)
	return sum, err
}

func (r *PaymentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`).Scan(&n)
	return n, err
}
