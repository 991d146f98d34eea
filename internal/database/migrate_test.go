package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestStatementsCoverEveryTable(t *testing.T) {
	stmts := Statements()
	require.Len(t, stmts, 7)
	for i, table := range []string{"roles", "users", "inventory_items", "orders", "payments", "batches", "worker_logs"} {
		require.Contains(t, stmts[i], "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}

func TestMigrateRunsStatementsInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range Statements() {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS roles").WillReturnError(errors.New("boom"))
	err = Migrate(context.Background(), db)
	require.ErrorContains(t, err, "migrate statement 1")
	require.NoError(t, mock.ExpectationsWereMet())
}
