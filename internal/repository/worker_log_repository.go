package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

// WorkerLogRepo persists worker activity and aggregates it.
type WorkerLogRepo struct {
	db *sql.DB
}

func NewWorkerLogRepo(db *sql.DB) *WorkerLogRepo { return &WorkerLogRepo{db: db} }

const logSelect = `SELECT l.id, l.worker_id, l.role_id, l.batch_id, l.order_id, l.quantity, l.timestamp,
	u.name, u.email, r.name, b.type, b.created_at
	FROM worker_logs l
	JOIN users u ON u.id = l.worker_id
	JOIN roles r ON r.id = l.role_id
	JOIN batches b ON b.id = l.batch_id`

func scanLog(row interface{ Scan(...any) error }) (*model.WorkerLog, error) {
	var (
		l       model.WorkerLog
		orderID sql.NullInt64
		worker  model.UserSummary
		role    model.RoleRecord
		batch   model.Batch
	)
	err := row.Scan(&l.ID, &l.WorkerID, &l.RoleID, &l.BatchID, &orderID, &l.Quantity, &l.Timestamp,
		&worker.Name, &worker.Email, &role.Name, &batch.Type, &batch.CreatedAt)
	if err != nil {
		return nil, err
	}
	if orderID.Valid {
		id := uint64(orderID.Int64)
		l.OrderID = &id
	}
	worker.ID, role.ID, batch.ID = l.WorkerID, l.RoleID, l.BatchID
	l.Worker, l.Role, l.Batch = &worker, &role, &batch
	return &l, nil
}

// Create inserts l, leaving the timestamp to the database when zero.  A
// worker, role, batch or order that does not exist is ErrInvalidReference.
func (r *WorkerLogRepo) Create(ctx context.Context, l *model.WorkerLog) error {
	var orderID any
	if l.OrderID != nil {
		orderID = *l.OrderID
	}
	var (
		res sql.Result
		err error
	)
	if l.Timestamp.IsZero() {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO worker_logs (worker_id, role_id, batch_id, order_id, quantity) VALUES (?, ?, ?, ?, ?)`,
			l.WorkerID, l.RoleID, l.BatchID, orderID, l.Quantity)
	} else {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO worker_logs (worker_id, role_id, batch_id, order_id, quantity, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
			l.WorkerID, l.RoleID, l.BatchID, orderID, l.Quantity, l.Timestamp)
	}
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	saved, err := scanLog(r.db.QueryRowContext(ctx, logSelect+` WHERE l.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	*l = *saved
	return nil
}

func logWhere(f model.WorkerLogFilter) (string, []any) {
	var conds []string
	var args []any
	if f.WorkerID != 0 {
		conds = append(conds, "l.worker_id = ?")
		args = append(args, f.WorkerID)
	}
	if f.RoleID != 0 {
		conds = append(conds, "l.role_id = ?")
		args = append(args, f.RoleID)
	}
	if f.BatchID != 0 {
		conds = append(conds, "l.batch_id = ?")
		args = append(args, f.BatchID)
	}
	if f.Start != nil {
		conds = append(conds, "l.timestamp >= ?")
		args = append(args, *f.Start)
	}
	if f.End != nil {
		conds = append(conds, "l.timestamp <= ?")
		args = append(args, *f.End)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns matching logs, newest first.
func (r *WorkerLogRepo) List(ctx context.Context, f model.WorkerLogFilter) ([]model.WorkerLog, error) {
	where, args := logWhere(f)
	return r.query(ctx, logSelect+where+` ORDER BY l.timestamp DESC, l.id DESC`, args...)
}

// ListByOrder returns the logs recorded against an order, newest first.
func (r *WorkerLogRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.WorkerLog, error) {
	return r.query(ctx, logSelect+` WHERE l.order_id = ? ORDER BY l.timestamp DESC, l.id DESC`, orderID)
}

func (r *WorkerLogRepo) query(ctx context.Context, q string, args ...any) ([]model.WorkerLog, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WorkerLog, 0)
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

var statColumns = map[string]string{
	model.GroupByWorker: "l.worker_id",
	model.GroupByRole:   "l.role_id",
	model.GroupByBatch:  "l.batch_id",
}

// StatsGroupBy resolves a requested grouping key, falling back to
// workerId for anything unrecognised.
func StatsGroupBy(key string) string {
	if _, ok := statColumns[key]; ok {
		return key
	}
	return model.GroupByWorker
}

// Stats sums quantities and counts rows per value of the groupBy column.
func (r *WorkerLogRepo) Stats(ctx context.Context, groupBy string, f model.WorkerLogFilter) ([]model.WorkerLogStat, error) {
	groupBy = StatsGroupBy(groupBy)
	col := statColumns[groupBy]
	where, args := logWhere(f)
	q := `SELECT ` + col + `, COALESCE(SUM(l.quantity), 0), COUNT(*) FROM worker_logs l` + where +
		` GROUP BY ` + col + ` ORDER BY ` + col
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WorkerLogStat, 0)
	for rows.Next() {
		s := model.WorkerLogStat{GroupBy: groupBy}
		if err := rows.Scan(&s.Key, &s.Quantity, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
