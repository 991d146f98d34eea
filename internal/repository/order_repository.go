package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/shoe-workshop/internal/model"
)

// OrderRepo provides persistence for orders.  Writes that must stay in
// step with inventory stock are exposed as *Tx methods and run inside the
// caller's transaction; the caller commits or rolls back.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, customer_name, status, payment_status, user_id, inventory_item_id, created_at, updated_at`

// detailSelect joins the placing user and the ordered item.
const detailSelect = `SELECT o.id, o.customer_name, o.status, o.payment_status, o.user_id, o.inventory_item_id, o.created_at, o.updated_at,
    u.id, u.name, u.email, i.id, i.name, i.model, i.size, i.stock_level
    FROM orders o
    JOIN users u ON u.id = o.user_id
    JOIN inventory_items i ON i.id = o.inventory_item_id`

func scanOrder(row interface{ Scan(...any) error }, o *model.Order) error {
    return row.Scan(&o.ID, &o.CustomerName, &o.Status, &o.PaymentStatus, &o.UserID, &o.InventoryItemID, &o.CreatedAt, &o.UpdatedAt)
}

// scanDetail reads one detailSelect row.  The item's stock level is only
// attached when withStock is set.
func scanDetail(row interface{ Scan(...any) error }, withStock bool) (*model.OrderDetail, error) {
    var d model.OrderDetail
    var stock int
    err := row.Scan(
        &d.ID, &d.CustomerName, &d.Status, &d.PaymentStatus, &d.UserID, &d.InventoryItemID, &d.CreatedAt, &d.UpdatedAt,
        &d.User.ID, &d.User.Name, &d.User.Email,
        &d.InventoryItem.ID, &d.InventoryItem.Name, &d.InventoryItem.Model, &d.InventoryItem.Size, &stock,
    )
    if err != nil {
        return nil, err
    }
    if withStock {
        d.InventoryItem.StockLevel = &stock
    }
    return &d, nil
}

// CreateTx inserts the order inside tx and reads the row back so the
// caller sees generated ids, defaults and timestamps.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
    const q = `INSERT INTO orders (customer_name, status, payment_status, user_id, inventory_item_id) VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, o.CustomerName, o.Status, o.PaymentStatus, o.UserID, o.InventoryItemID)
    if err != nil {
        return mapWriteErr(err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    return scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id), o)
}

// GetForUpdateTx loads the order and locks its row until tx ends.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error) {
    var o model.Order
    if err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id), &o); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrOrderNotFound
        }
        return nil, err
    }
    return &o, nil
}

// UpdateTx writes the mutable columns of o and refreshes its timestamps.
func (r *OrderRepo) UpdateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
    const q = `UPDATE orders SET customer_name = ?, status = ?, payment_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    if _, err := tx.ExecContext(ctx, q, o.CustomerName, o.Status, o.PaymentStatus, o.ID); err != nil {
        return err
    }
    return scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, o.ID), o)
}

// SetPaymentStatusTx overwrites the order's payment status.
func (r *OrderRepo) SetPaymentStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PaymentStatus) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE orders SET payment_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
    return err
}

// DeleteTx removes the order together with its payments and worker logs.
// The caller is expected to hold the order's row lock.
func (r *OrderRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE order_id = ?`, id); err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM worker_logs WHERE order_id = ?`, id); err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrOrderNotFound
    }
    return nil
}

// GetDetail returns the order joined with its user and item, the item's
// current stock level included.  Payments and worker logs are left for
// the caller to attach.
func (r *OrderRepo) GetDetail(ctx context.Context, id uint64) (*model.OrderDetail, error) {
    d, err := scanDetail(r.db.QueryRowContext(ctx, detailSelect+` WHERE o.id = ?`, id), true)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrOrderNotFound
    }
    return d, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func orderWhere(f model.OrderFilter) (string, []any) {
    var conds []string
    var args []any
    if f.Status != "" {
        conds = append(conds, "o.status = ?")
        args = append(args, f.Status)
    }
    if f.PaymentStatus != "" {
        conds = append(conds, "o.payment_status = ?")
        args = append(args, f.PaymentStatus)
    }
    if name := strings.TrimSpace(f.CustomerName); name != "" {
        conds = append(conds, "LOWER(o.customer_name) LIKE ?")
        args = append(args, "%"+likeEscaper.Replace(strings.ToLower(name))+"%")
    }
    if len(conds) == 0 {
        return "", nil
    }
    return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of orders matching f, newest first, and the total
// number of matching orders.
func (r *OrderRepo) List(ctx context.Context, f model.OrderFilter) ([]model.OrderDetail, int, error) {
    where, args := orderWhere(f)

    var total int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    page := model.NewPagination(f.Page, f.Limit, total)
    q := detailSelect + where + ` ORDER BY o.created_at DESC, o.id DESC LIMIT ? OFFSET ?`
    rows, err := r.db.QueryContext(ctx, q, append(args, page.Limit, page.Offset())...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    out := make([]model.OrderDetail, 0, page.Limit)
    for rows.Next() {
        d, err := scanDetail(rows, false)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, *d)
    }
    return out, total, rows.Err()
}

// CountActiveSince counts orders that are not cancelled created at or after since.
func (r *OrderRepo) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM orders WHERE status <> ? AND created_at >= ?`, model.OrderCancelled, since).Scan(&n)
    return n, err
}

// Count returns the number of orders.
func (r *OrderRepo) Count(ctx context.Context) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
    return n, err
}
