package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

// InventoryRepo persists inventory items.  Stock adjustments made on
// behalf of orders go through the *Tx methods so they share the order's
// transaction.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo constructs an InventoryRepo with the given DB handle.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

const itemColumns = `id, name, model, size, stock_level, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }, it *model.InventoryItem) error {
	return row.Scan(&it.ID, &it.Name, &it.Model, &it.Size, &it.StockLevel, &it.CreatedAt, &it.UpdatedAt)
}

// List returns every item ordered by name.
func (r *InventoryRepo) List(ctx context.Context) ([]model.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.InventoryItem, 0)
	for rows.Next() {
		var it model.InventoryItem
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetByID returns ErrItemNotFound when no row matches.
func (r *InventoryRepo) GetByID(ctx context.Context, id uint64) (*model.InventoryItem, error) {
	return getItem(ctx, r.db, id, false)
}

func getItem(ctx context.Context, q querier, id uint64, forUpdate bool) (*model.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var it model.InventoryItem
	if err := scanItem(q.QueryRowContext(ctx, query, id), &it); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// TripleTaken reports whether another item (id != excludeID) already
// uses the (name, model, size) triple.  Pass excludeID 0 on create.
func (r *InventoryRepo) TripleTaken(ctx context.Context, name, modelName, size string, excludeID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM inventory_items WHERE name = ? AND model = ? AND size = ? AND id <> ? LIMIT 1`,
		name, modelName, size, excludeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts the item and fills in ID and timestamps.  A unique key
// race is reported as ErrDuplicate.
func (r *InventoryRepo) Create(ctx context.Context, it *model.InventoryItem) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO inventory_items (name, model, size, stock_level) VALUES (?, ?, ?, ?)`,
		it.Name, it.Model, it.Size, it.StockLevel)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	saved, err := getItem(ctx, r.db, uint64(id), false)
	if err != nil {
		return err
	}
	*it = *saved
	return nil
}

// ItemPatch names the columns an update writes.  Nil fields keep their
// stored value, so stock moved by concurrent orders is never overwritten
// by a rename.
type ItemPatch struct {
	Name       *string
	Model      *string
	Size       *string
	StockLevel *int
}

// Update writes the supplied columns of item id and returns the saved row.
func (r *InventoryRepo) Update(ctx context.Context, id uint64, p ItemPatch) (*model.InventoryItem, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 5)
	if p.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *p.Name)
	}
	if p.Model != nil {
		sets, args = append(sets, "model = ?"), append(args, *p.Model)
	}
	if p.Size != nil {
		sets, args = append(sets, "size = ?"), append(args, *p.Size)
	}
	if p.StockLevel != nil {
		sets, args = append(sets, "stock_level = ?"), append(args, *p.StockLevel)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			`UPDATE inventory_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
			return nil, mapWriteErr(err)
		}
	}
	// zero affected rows is also reported for an unchanged row, so
	// existence is decided by the re-read
	return getItem(ctx, r.db, id, false)
}

// SetStock overwrites the stock level.  Used for manual corrections.
func (r *InventoryRepo) SetStock(ctx context.Context, id uint64, level int) (*model.InventoryItem, error) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET stock_level = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		level, id); err != nil {
		return nil, err
	}
	return getItem(ctx, r.db, id, false)
}

// Delete removes an item that no order references.  The reference check
// and the delete share a transaction holding the item's row lock, so an
// order cannot be placed against the item in between.
func (r *InventoryRepo) Delete(ctx context.Context, id uint64) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := getItem(ctx, tx, id, true); err != nil {
			return err
		}
		var refs int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM orders WHERE inventory_item_id = ?`, id).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return ErrConflict
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id); err != nil {
			return mapWriteErr(err)
		}
		return nil
	})
}

// DecrementStockTx takes one unit of stock.  The check and the decrement
// are a single conditional UPDATE so two concurrent orders cannot both
// consume the last unit.  Zero affected rows means the item is missing
// (ErrItemNotFound) or out of stock (ErrInsufficientStock).
func (r *InventoryRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE inventory_items SET stock_level = stock_level - 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND stock_level > 0`,
		id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := getItem(ctx, tx, id, false); err != nil {
		return err
	}
	return ErrInsufficientStock
}

// IncrementStockTx returns one unit of stock.
func (r *InventoryRepo) IncrementStockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE inventory_items SET stock_level = stock_level + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Count returns the number of inventory items.
func (r *InventoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&n)
	return n, err
}
