package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

// UserRepo persists users (workers, sales staff, administrators).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userSelect = `SELECT u.id, u.name, u.email, u.password_hash, u.role_id, r.name, u.created_at, u.updated_at
	FROM users u JOIN roles r ON r.id = u.role_id`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	role := &model.RoleRecord{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &role.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	role.ID = u.RoleID
	u.Role = role
	return &u, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts a user whose password is already hashed and fills in the
// generated fields.  A taken email is reported as ErrDuplicate and an
// unknown role as ErrInvalidReference.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role_id) VALUES (?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.RoleID)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	saved, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = *saved
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, userSelect+" WHERE u.email = ? LIMIT 1", normalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, userSelect+" WHERE u.id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// List returns all users with their role.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, userSelect+" ORDER BY u.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update writes name, email, password hash and role of u.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, password_hash = ?, role_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		u.Name, u.Email, u.PasswordHash, u.RoleID, u.ID); err != nil {
		return mapWriteErr(err)
	}
	saved, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *saved
	return nil
}

// Delete removes a user that has not placed orders.  Their worker logs go
// with them.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ? FOR UPDATE", id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		var orders int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE user_id = ?", id).Scan(&orders); err != nil {
			return err
		}
		if orders > 0 {
			return ErrConflict
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM worker_logs WHERE worker_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
			return mapWriteErr(err)
		}
		return nil
	})
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
