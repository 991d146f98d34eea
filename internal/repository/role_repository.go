package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

// RoleRepo persists rows of the roles table.
type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) List(ctx context.Context) ([]model.RoleRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoleRecord, 0)
	for rows.Next() {
		var rr model.RoleRecord
		if err := rows.Scan(&rr.ID, &rr.Name); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (*model.RoleRecord, error) {
	var rr model.RoleRecord
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE id = ?`, id).Scan(&rr.ID, &rr.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rr, nil
}

// Create inserts a role; a taken name is ErrDuplicate.
func (r *RoleRepo) Create(ctx context.Context, name string) (*model.RoleRecord, error) {
	name = strings.TrimSpace(name)
	res, err := r.db.ExecContext(ctx, `INSERT INTO roles (name) VALUES (?)`, name)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.RoleRecord{ID: uint64(id), Name: name}, nil
}

// Upsert returns the role with the given name, creating it if needed.
func (r *RoleRepo) Upsert(ctx context.Context, name string) (*model.RoleRecord, error) {
	if _, err := r.db.ExecContext(ctx, `INSERT IGNORE INTO roles (name) VALUES (?)`, name); err != nil {
		return nil, err
	}
	var rr model.RoleRecord
	if err := r.db.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE name = ?`, name).Scan(&rr.ID, &rr.Name); err != nil {
		return nil, err
	}
	return &rr, nil
}

func (r *RoleRepo) Rename(ctx context.Context, id uint64, name string) (*model.RoleRecord, error) {
	name = strings.TrimSpace(name)
	if _, err := r.db.ExecContext(ctx, `UPDATE roles SET name = ? WHERE id = ?`, name, id); err != nil {
		return nil, mapWriteErr(err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a role nobody holds.  Users or worker logs still pointing
// at it make the delete fail with ErrConflict.
func (r *RoleRepo) Delete(ctx context.Context, id uint64) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM roles WHERE id = ? FOR UPDATE`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRoleNotFound
			}
			return err
		}
		var refs int
		if err := tx.QueryRowContext(ctx,
			`SELECT (SELECT COUNT(*) FROM users WHERE role_id = ?) + (SELECT COUNT(*) FROM worker_logs WHERE role_id = ?)`,
			id, id).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return ErrConflict
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id); err != nil {
			return mapWriteErr(err)
		}
		return nil
	})
}
