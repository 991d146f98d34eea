package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/shoe-workshop/internal/handler"
	"github.com/iliyamo/shoe-workshop/internal/middleware"
	"github.com/iliyamo/shoe-workshop/internal/model"
	"github.com/iliyamo/shoe-workshop/internal/service"
	"github.com/iliyamo/shoe-workshop/internal/utils"
)

const secret = "router-secret"

type orderStub struct {
	handler.OrderService
	deleted []uint64
}

func (s *orderStub) Delete(_ context.Context, _, id uint64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *orderStub) Summary(_ context.Context, period string) (model.SalesSummary, error) {
	return model.SalesSummary{Period: period}, nil
}

func (s *orderStub) List(_ context.Context, f model.OrderFilter) ([]model.OrderDetail, model.Pagination, error) {
	return []model.OrderDetail{}, model.NewPagination(f.Page, f.Limit, 0), nil
}

type itemStub struct{ handler.InventoryService }

func (itemStub) List(context.Context) ([]model.InventoryItem, error) { return []model.InventoryItem{}, nil }

type userStub struct{}

func (userStub) List(context.Context) ([]model.User, error) { return []model.User{}, nil }

func (itemStub) SetStock(_ context.Context, id uint64, level int) (*model.InventoryItem, error) {
	return &model.InventoryItem{ID: id, StockLevel: level}, nil
}

func newServer(t *testing.T) (*echo.Echo, *orderStub) {
	t.Helper()
	authz, err := service.NewAuthorizer()
	require.NoError(t, err)
	g := Guard{JWTSecret: secret, Perms: authz}

	orders := &orderStub{}
	e := echo.New()
	RegisterSales(e, handler.NewSalesHandler(orders), g)
	RegisterInventory(e, handler.NewInventoryHandler(itemStub{}), g)
	return e, orders
}

func call(t *testing.T, e *echo.Echo, method, target string, role model.Role, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if role != "" {
		at, err := utils.NewAccessToken(secret, 1, role, time.Minute)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+at.Token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWorkerCannotDeleteOrders(t *testing.T) {
	e, orders := newServer(t)

	rec := call(t, e, http.MethodDelete, "/api/sales/5", model.RoleWorker, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Insufficient permissions", gjson.Get(rec.Body.String(), "error").String())
	require.Empty(t, orders.deleted)

	rec = call(t, e, http.MethodDelete, "/api/sales/5", model.RoleSales, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, e, http.MethodDelete, "/api/sales/5", model.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []uint64{5}, orders.deleted)

	rec = call(t, e, http.MethodDelete, "/api/sales/5", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutePermissions(t *testing.T) {
	e, _ := newServer(t)
	cases := []struct {
		name   string
		method string
		target string
		role   model.Role
		body   string
		want   int
	}{
		{"sales reads analytics", http.MethodGet, "/api/sales/analytics/summary?period=today", model.RoleSales, "", http.StatusOK},
		{"worker cannot read analytics", http.MethodGet, "/api/sales/analytics/summary", model.RoleWorker, "", http.StatusForbidden},
		{"worker corrects stock", http.MethodPatch, "/api/inventory/2/stock", model.RoleWorker, `{"stockLevel":4}`, http.StatusOK},
		{"sales cannot correct stock", http.MethodPatch, "/api/inventory/2/stock", model.RoleSales, `{"stockLevel":4}`, http.StatusForbidden},
		{"worker cannot create items", http.MethodPost, "/api/inventory", model.RoleWorker, `{}`, http.StatusForbidden},
		{"sales cannot list inventory", http.MethodGet, "/api/inventory", model.RoleSales, "", http.StatusForbidden},
		{"worker cannot record payments", http.MethodPost, "/api/sales/1/payments", model.RoleWorker, `{"amount":5}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := call(t, e, tc.method, tc.target, tc.role, tc.body)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func newRoleServer(t *testing.T, g Guard) *echo.Echo {
	t.Helper()
	e := echo.New()
	RegisterAuth(e, handler.NewAuthHandler(nil, nil, nil, secret, time.Minute),
		handler.NewProtectedHandler(userStub{}, itemStub{}, &orderStub{}), g)
	return e
}

func TestProtectedRoleViews(t *testing.T) {
	authz, err := service.NewAuthorizer()
	require.NoError(t, err)
	e := newRoleServer(t, Guard{JWTSecret: secret, Perms: authz})

	cases := []struct {
		name   string
		target string
		role   model.Role
		want   int
	}{
		{"admin lists users", "/api/protected/admin/users", model.RoleAdmin, http.StatusOK},
		{"worker cannot list users", "/api/protected/admin/users", model.RoleWorker, http.StatusForbidden},
		{"sales cannot list users", "/api/protected/admin/users", model.RoleSales, http.StatusForbidden},
		{"worker lists inventory", "/api/protected/worker/inventory", model.RoleWorker, http.StatusOK},
		{"admin lists inventory", "/api/protected/worker/inventory", model.RoleAdmin, http.StatusOK},
		{"sales cannot list worker inventory", "/api/protected/worker/inventory", model.RoleSales, http.StatusForbidden},
		{"sales lists orders", "/api/protected/sales/orders", model.RoleSales, http.StatusOK},
		{"admin lists orders", "/api/protected/sales/orders", model.RoleAdmin, http.StatusOK},
		{"worker cannot list orders", "/api/protected/sales/orders", model.RoleWorker, http.StatusForbidden},
		{"no token", "/api/protected/sales/orders", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := call(t, e, http.MethodGet, tc.target, tc.role, "")
			require.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusForbidden {
				require.Equal(t, "Insufficient permissions", gjson.Get(rec.Body.String(), "error").String())
			}
		})
	}
}

func TestGuardLimiterSeesCaller(t *testing.T) {
	var seen []string
	limit := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := middleware.CurrentUserID(c)
			seen = append(seen, lo.Ternary(ok, strconv.FormatUint(id, 10), "anon"))
			return next(c)
		}
	}
	authz, err := service.NewAuthorizer()
	require.NoError(t, err)
	e := newRoleServer(t, Guard{JWTSecret: secret, Perms: authz, Limit: limit})

	rec := call(t, e, http.MethodGet, "/api/protected/worker/inventory", model.RoleWorker, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"1"}, seen)

	// rejected tokens never reach the limiter
	rec = call(t, e, http.MethodGet, "/api/protected/worker/inventory", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, []string{"1"}, seen)
}

func TestGuardPublicWithoutLimiter(t *testing.T) {
	e := echo.New()
	e.GET("/open", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, Guard{}.Public())
	rec := call(t, e, http.MethodGet, "/open", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}
