package handler

import (
    "context"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/samber/mo"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/shoe-workshop/internal/model"
    "github.com/iliyamo/shoe-workshop/internal/service"
)

// OrderService is the part of *service.OrderService the handler uses.
type OrderService interface {
    Create(ctx context.Context, userID uint64, in service.CreateOrderInput) (*model.OrderDetail, error)
    Get(ctx context.Context, id uint64) (*model.OrderDetail, error)
    List(ctx context.Context, f model.OrderFilter) ([]model.OrderDetail, model.Pagination, error)
    Update(ctx context.Context, actorID, id uint64, in service.UpdateOrderInput) (*model.OrderDetail, error)
    Delete(ctx context.Context, actorID, id uint64) error
    AddPayment(ctx context.Context, actorID, orderID uint64, in service.PaymentInput) (*model.Payment, error)
    Summary(ctx context.Context, period string) (model.SalesSummary, error)
}

// SalesHandler serves /api/sales: orders, their payments and analytics.
type SalesHandler struct {
    Orders OrderService
}

func NewSalesHandler(orders OrderService) *SalesHandler { return &SalesHandler{Orders: orders} }

type createOrderReq struct {
    CustomerName    string               `json:"customerName"`
    InventoryItemID *flexInt             `json:"inventoryItemId"`
    Status          *model.OrderStatus   `json:"status"`
    PaymentStatus   *model.PaymentStatus `json:"paymentStatus"`
}

type updateOrderReq struct {
    CustomerName  *string              `json:"customerName"`
    Status        *model.OrderStatus   `json:"status"`
    PaymentStatus *model.PaymentStatus `json:"paymentStatus"`
}

type paymentReq struct {
    Amount decimal.Decimal     `json:"amount"`
    Status *model.PaymentState `json:"status"`
}

type orderPage struct {
    Orders     []model.OrderDetail `json:"orders"`
    Pagination model.Pagination    `json:"pagination"`
}

// List filters by status, paymentStatus and customerName and pages with
// page/limit.  Malformed numbers fall back to the defaults.
func (h *SalesHandler) List(c echo.Context) error {
    page, _ := strconv.Atoi(c.QueryParam("page"))
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    f := model.OrderFilter{
        Status:        model.OrderStatus(c.QueryParam("status")),
        PaymentStatus: model.PaymentStatus(c.QueryParam("paymentStatus")),
        CustomerName:  c.QueryParam("customerName"),
        Page:          page,
        Limit:         limit,
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    orders, p, err := h.Orders.List(ctx, f)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, orderPage{Orders: orders, Pagination: p})
}

func (h *SalesHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid order ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    d, err := h.Orders.Get(ctx, id)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, d)
}

// Create places an order for one unit of an item.
func (h *SalesHandler) Create(c echo.Context) error {
    var req createOrderReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    d, err := h.Orders.Create(ctx, actorID(c), service.CreateOrderInput{
        CustomerName:    req.CustomerName,
        InventoryItemID: idOf(req.InventoryItemID),
        Status:          mo.PointerToOption(req.Status),
        PaymentStatus:   mo.PointerToOption(req.PaymentStatus),
    })
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusCreated, d)
}

func (h *SalesHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid order ID")
    }
    var req updateOrderReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    d, err := h.Orders.Update(ctx, actorID(c), id, service.UpdateOrderInput{
        CustomerName:  mo.PointerToOption(req.CustomerName),
        Status:        mo.PointerToOption(req.Status),
        PaymentStatus: mo.PointerToOption(req.PaymentStatus),
    })
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, d)
}

// Delete removes the order and, unless it was cancelled, returns its unit
// to stock.
func (h *SalesHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid order ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Orders.Delete(ctx, actorID(c), id); err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Order deleted successfully"})
}

func (h *SalesHandler) AddPayment(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid order ID")
    }
    var req paymentReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Valid payment amount is required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    p, err := h.Orders.AddPayment(ctx, actorID(c), id, service.PaymentInput{
        Amount: req.Amount,
        Status: mo.PointerToOption(req.Status),
    })
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusCreated, p)
}

// Analytics returns the sales summary for ?period=today|week|month|year.
func (h *SalesHandler) Analytics(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    s, err := h.Orders.Summary(ctx, c.QueryParam("period"))
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, s)
}
