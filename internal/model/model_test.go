package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Admin ")
	require.True(t, ok)
	require.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("TestRole")
	require.False(t, ok)
}

func TestRolePredicates(t *testing.T) {
	require.True(t, RoleAdmin.IsAdmin())
	require.False(t, RoleWorker.IsAdmin())

	require.True(t, RoleWorker.IsWorkerOrAdmin())
	require.True(t, RoleAdmin.IsWorkerOrAdmin())
	require.False(t, RoleSales.IsWorkerOrAdmin())

	require.True(t, RoleSales.IsSalesOrAdmin())
	require.True(t, RoleAdmin.IsSalesOrAdmin())
	require.False(t, RoleWorker.IsSalesOrAdmin())

	require.True(t, RoleSales.HasAnyRole(RoleAdmin, RoleSales))
	require.False(t, RoleSales.HasAnyRole())
}

func TestStatusEnums(t *testing.T) {
	require.True(t, OrderCancelled.Valid())
	require.False(t, OrderStatus("lost").Valid())
	require.True(t, PaymentRefunded.Valid())
	require.False(t, PaymentStatus("partial").Valid())
	require.True(t, PaymentStateFailed.Valid())
	require.False(t, PaymentState("paid").Valid())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 15)
	require.Equal(t, Pagination{Page: 2, Limit: 10, Total: 15, TotalPages: 2}, p)
	require.Equal(t, 10, p.Offset())

	p = NewPagination(0, 0, 0)
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPageLimit, p.Limit)
	require.Equal(t, 0, p.TotalPages)

	p = NewPagination(1, 500, 250)
	require.Equal(t, MaxPageLimit, p.Limit)
	require.Equal(t, 3, p.TotalPages)
}

func TestPaymentAmountIsJSONNumber(t *testing.T) {
	b, err := json.Marshal(Payment{ID: 1, Amount: decimal.RequireFromString("120.50")})
	require.NoError(t, err)
	require.Contains(t, string(b), `"amount":120.5`)
}

func TestWorkerLogStatJSON(t *testing.T) {
	b, err := json.Marshal(WorkerLogStat{GroupBy: GroupByBatch, Key: 4, Quantity: 12, Count: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"batchId":4,"_sum":{"quantity":12},"_count":{"_all":2}}`, string(b))
}
