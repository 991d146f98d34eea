package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/shoe-workshop/internal/config"
	"github.com/iliyamo/shoe-workshop/internal/model"
	"github.com/iliyamo/shoe-workshop/internal/repository"
	"github.com/iliyamo/shoe-workshop/internal/service"
	"github.com/iliyamo/shoe-workshop/internal/utils"
)

type fakeItems struct {
	InventoryService
	created service.ItemInput
	err     error
}

func (f *fakeItems) Create(_ context.Context, in service.ItemInput) (*model.InventoryItem, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.InventoryItem{ID: 1, Name: in.Name.OrEmpty(), Model: in.Model.OrEmpty(),
		Size: in.Size.OrEmpty(), StockLevel: in.StockLevel.OrEmpty()}, nil
}

func (f *fakeItems) SetStock(_ context.Context, id uint64, level int) (*model.InventoryItem, error) {
	return &model.InventoryItem{ID: id, StockLevel: level}, nil
}

type fakeOrders struct {
	OrderService
	filter  model.OrderFilter
	created service.CreateOrderInput
	paid    service.PaymentInput
	period  string
	err     error
}

func (f *fakeOrders) Get(_ context.Context, id uint64) (*model.OrderDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.OrderDetail{Order: model.Order{ID: id, CustomerName: "John Doe"}}, nil
}

func (f *fakeOrders) List(_ context.Context, flt model.OrderFilter) ([]model.OrderDetail, model.Pagination, error) {
	f.filter = flt
	return []model.OrderDetail{}, model.NewPagination(flt.Page, flt.Limit, 15), nil
}

func (f *fakeOrders) Create(_ context.Context, _ uint64, in service.CreateOrderInput) (*model.OrderDetail, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.OrderDetail{Order: model.Order{ID: 9, CustomerName: in.CustomerName}}, nil
}

func (f *fakeOrders) AddPayment(_ context.Context, _, orderID uint64, in service.PaymentInput) (*model.Payment, error) {
	f.paid = in
	return &model.Payment{ID: 1, OrderID: orderID, Amount: in.Amount, Status: in.Status.OrElse(model.PaymentStateCompleted)}, nil
}

func (f *fakeOrders) Summary(_ context.Context, period string) (model.SalesSummary, error) {
	f.period = period
	return model.SalesSummary{TotalSales: decimal.NewFromInt(100), TotalOrders: 2,
		AverageOrderValue: decimal.NewFromInt(50), Period: period}, nil
}

// serve runs h against a single request with path params bound.
func serve(t *testing.T, h echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	require.NoError(t, h(c))
	return rec
}

func errorOf(rec *httptest.ResponseRecorder) string {
	return gjson.Get(rec.Body.String(), "error").String()
}

func TestInventoryCreate(t *testing.T) {
	items := &fakeItems{}
	h := NewInventoryHandler(items)

	rec := serve(t, h.Create, http.MethodPost, "/api/inventory", `{"name":"Boot Y","model":"Y200","size":"9","stockLevel":"30"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 30, items.created.StockLevel.MustGet())
	require.Equal(t, int64(30), gjson.Get(rec.Body.String(), "stockLevel").Int())

	items.err = repository.ErrDuplicate
	rec = serve(t, h.Create, http.MethodPost, "/api/inventory", `{"name":"Boot Y","model":"Y200","size":"9","stockLevel":30}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Item with this name, model, and size already exists", errorOf(rec))
}

func TestInventoryPatchStock(t *testing.T) {
	h := NewInventoryHandler(&fakeItems{})

	rec := serve(t, h.PatchStock, http.MethodPatch, "/api/inventory/3/stock", `{"stockLevel":-1}`, "id", "3")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Valid stock level is required", errorOf(rec))

	rec = serve(t, h.PatchStock, http.MethodPatch, "/api/inventory/3/stock", `{}`, "id", "3")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h.PatchStock, http.MethodPatch, "/api/inventory/3/stock", `{"stockLevel":7}`, "id", "3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(7), gjson.Get(rec.Body.String(), "stockLevel").Int())

	rec = serve(t, h.PatchStock, http.MethodPatch, "/api/inventory/x/stock", `{"stockLevel":7}`, "id", "x")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid inventory item ID", errorOf(rec))
}

func TestSalesCreateErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{repository.ErrInsufficientStock, http.StatusBadRequest, "Insufficient stock for this item"},
		{repository.ErrItemNotFound, http.StatusNotFound, "Inventory item not found"},
		{&service.ValidationError{Msg: "Customer name and inventory item ID are required"}, http.StatusBadRequest,
			"Customer name and inventory item ID are required"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			h := NewSalesHandler(&fakeOrders{err: tc.err})
			rec := serve(t, h.Create, http.MethodPost, "/api/sales", `{"customerName":"John Doe","inventoryItemId":"1"}`)
			require.Equal(t, tc.code, rec.Code)
			require.Equal(t, tc.msg, errorOf(rec))
		})
	}
}

func TestSalesCreatePassesInput(t *testing.T) {
	orders := &fakeOrders{}
	h := NewSalesHandler(orders)
	rec := serve(t, h.Create, http.MethodPost, "/api/sales", `{"customerName":"John Doe","inventoryItemId":"4","status":"shipped"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, uint64(4), orders.created.InventoryItemID)
	require.Equal(t, model.OrderShipped, orders.created.Status.MustGet())
	require.False(t, orders.created.PaymentStatus.IsPresent())
}

func TestSalesGet(t *testing.T) {
	rec := serve(t, NewSalesHandler(&fakeOrders{err: repository.ErrOrderNotFound}).Get, http.MethodGet, "/api/sales/5", "", "id", "5")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Order not found", errorOf(rec))

	rec = serve(t, NewSalesHandler(&fakeOrders{}).Get, http.MethodGet, "/api/sales/0", "", "id", "0")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, NewSalesHandler(&fakeOrders{}).Get, http.MethodGet, "/api/sales/5", "", "id", "5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "John Doe", gjson.Get(rec.Body.String(), "customerName").String())
}

func TestSalesList(t *testing.T) {
	orders := &fakeOrders{}
	rec := serve(t, NewSalesHandler(orders).List, http.MethodGet,
		"/api/sales?status=pending&paymentStatus=unpaid&customerName=jo&page=2&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.OrderFilter{Status: model.OrderPending, PaymentStatus: model.PaymentUnpaid,
		CustomerName: "jo", Page: 2, Limit: 10}, orders.filter)

	body := rec.Body.String()
	require.True(t, gjson.Get(body, "orders").IsArray())
	require.Equal(t, int64(2), gjson.Get(body, "pagination.totalPages").Int())
}

func TestSalesAddPayment(t *testing.T) {
	orders := &fakeOrders{}
	rec := serve(t, NewSalesHandler(orders).AddPayment, http.MethodPost, "/api/sales/3/payments",
		`{"amount":120.5,"status":"pending"}`, "id", "3")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, decimal.RequireFromString("120.5").Equal(orders.paid.Amount))
	require.Equal(t, "pending", gjson.Get(rec.Body.String(), "status").String())

	rec = serve(t, NewSalesHandler(orders).AddPayment, http.MethodPost, "/api/sales/3/payments",
		`{"amount":"abc"}`, "id", "3")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Valid payment amount is required", errorOf(rec))
}

func TestSalesAnalytics(t *testing.T) {
	orders := &fakeOrders{}
	rec := serve(t, NewSalesHandler(orders).Analytics, http.MethodGet, "/api/sales/analytics/summary?period=week", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "week", orders.period)
	body := rec.Body.String()
	require.Equal(t, float64(100), gjson.Get(body, "totalSales").Float())
	require.Equal(t, int64(2), gjson.Get(body, "totalOrders").Int())
	require.Equal(t, float64(50), gjson.Get(body, "averageOrderValue").Float())
}

func TestQRBatch(t *testing.T) {
	gen, err := service.NewQRGenerator(config.QRConfig{Level: "M", Margin: 2, Width: 256, Dark: "#000000", Light: "#FFFFFF"})
	require.NoError(t, err)
	h := NewQRHandler(gen)

	rec := serve(t, h.Batch, http.MethodGet, "/api/qr/5", "", "batchId", "5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(gjson.Get(rec.Body.String(), "qr").String(), "data:image/png;base64,"))

	rec = serve(t, h.Batch, http.MethodGet, "/api/qr/abc", "", "batchId", "abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkerLogCreateValidation(t *testing.T) {
	h := NewWorkerLogHandler(nil)

	rec := serve(t, h.Create, http.MethodPost, "/api/worker-logs", `{"workerId":1,"roleId":2}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "workerId, roleId, and batchId are required", errorOf(rec))

	rec = serve(t, h.Create, http.MethodPost, "/api/worker-logs", `{"workerId":1,"roleId":2,"batchId":3,"quantity":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h.List, http.MethodGet, "/api/worker-logs?start=yesterday", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid start date", errorOf(rec))
}

func TestParseBound(t *testing.T) {
	end, ok := parseBound("2024-03-15", true)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC), *end)

	start, ok := parseBound("2024-03-15", false)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *start)

	ts, ok := parseBound("2024-03-15T10:00:00+02:00", false)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), *ts)

	none, ok := parseBound(" ", true)
	require.True(t, ok)
	require.Nil(t, none)
}

func TestFlexInt(t *testing.T) {
	var req struct {
		A *flexInt `json:"a"`
		B *flexInt `json:"b"`
		C *flexInt `json:"c"`
	}
	rec := serve(t, func(c echo.Context) error {
		require.NoError(t, c.Bind(&req))
		return c.NoContent(http.StatusNoContent)
	}, http.MethodPost, "/", `{"a":"12","b":7,"c":null}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, uint64(12), idOf(req.A))
	require.Equal(t, uint64(7), idOf(req.B))
	require.Equal(t, uint64(0), idOf(req.C))
}

const sqlUserByEmail = "FROM users u JOIN roles r ON r.id = u.role_id WHERE u.email = ?"

var userCols = []string{"id", "name", "email", "password_hash", "role_id", "r.name", "created_at", "updated_at"}

func TestLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := utils.HashPassword("adminpass", 4)
	require.NoError(t, err)
	now := time.Now()
	h := NewAuthHandler(repository.NewUserRepo(db), nil, nil, "login-secret", time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(sqlUserByEmail)).WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Admin", "admin@example.com", hash, 1, "admin", now, now))
	rec := serve(t, h.Login, http.MethodPost, "/api/auth/login", `{"email":" Admin@Example.com ","password":"adminpass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Equal(t, "Login successful", gjson.Get(body, "message").String())
	require.Equal(t, "admin", gjson.Get(body, "user.role").String())
	claims, err := utils.ParseAccessToken("login-secret", gjson.Get(body, "token").String())
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	mock.ExpectQuery(regexp.QuoteMeta(sqlUserByEmail)).WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Admin", "admin@example.com", hash, 1, "admin", now, now))
	rec = serve(t, h.Login, http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials", errorOf(rec))

	mock.ExpectQuery(regexp.QuoteMeta(sqlUserByEmail)).WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))
	rec = serve(t, h.Login, http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com","password":"whatever"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, h.Login, http.MethodPost, "/api/auth/login", `{"email":"admin@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Email and password are required", errorOf(rec))

	require.NoError(t, mock.ExpectationsWereMet())
}
