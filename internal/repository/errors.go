// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that a delete cannot proceed because
// dependent records still reference the row, while ErrDuplicate means a
// unique key (email, role name, inventory triple) is already taken.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is the root of every "row does not exist" error.  Handlers
// should translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a delete cannot be performed because of
// dependent rows, such as deleting an inventory item that orders still
// reference.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert or update would violate a
// unique key.
var ErrDuplicate = errors.New("duplicate")

// ErrInsufficientStock is returned when an order would take the stock
// level of an item below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidReference is returned when a foreign key points at a row
// that does not exist (MySQL error 1452).
var ErrInvalidReference = errors.New("invalid reference")

var (
	ErrItemNotFound  = fmt.Errorf("inventory item %w", ErrNotFound)
	ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)
	ErrRoleNotFound  = fmt.Errorf("role %w", ErrNotFound)
	ErrBatchNotFound = fmt.Errorf("batch %w", ErrNotFound)
)

// MySQL server error numbers the repositories map to sentinels.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// mapWriteErr converts key violations reported by MySQL into sentinels.
func mapWriteErr(err error) error {
	switch mysqlErrNumber(err) {
	case mysqlDuplicateEntry:
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case mysqlRowIsReferenced:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case mysqlNoReferencedRow:
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can
// run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
