package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

// BatchRepo persists production batches.
type BatchRepo struct {
	db *sql.DB
}

func NewBatchRepo(db *sql.DB) *BatchRepo { return &BatchRepo{db: db} }

func (r *BatchRepo) List(ctx context.Context) ([]model.Batch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, type, created_at FROM batches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Batch, 0)
	for rows.Next() {
		var b model.Batch
		if err := rows.Scan(&b.ID, &b.Type, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BatchRepo) GetByID(ctx context.Context, id uint64) (*model.Batch, error) {
	var b model.Batch
	err := r.db.QueryRowContext(ctx, `SELECT id, type, created_at FROM batches WHERE id = ?`, id).
		Scan(&b.ID, &b.Type, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepo) Create(ctx context.Context, batchType string) (*model.Batch, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO batches (type) VALUES (?)`, batchType)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

func (r *BatchRepo) Update(ctx context.Context, id uint64, batchType string) (*model.Batch, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE batches SET type = ? WHERE id = ?`, batchType, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a batch without worker logs; otherwise ErrConflict.
func (r *BatchRepo) Delete(ctx context.Context, id uint64) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM batches WHERE id = ? FOR UPDATE`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBatchNotFound
			}
			return err
		}
		var refs int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM worker_logs WHERE batch_id = ?`, id).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return ErrConflict
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
		return mapWriteErr(err)
	})
}
