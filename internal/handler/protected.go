package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/samber/lo"

    "github.com/iliyamo/shoe-workshop/internal/model"
)

// UserLister is the part of *repository.UserRepo the role views read.
type UserLister interface {
    List(ctx context.Context) ([]model.User, error)
}

// ItemLister is satisfied by *repository.InventoryRepo and InventoryService.
type ItemLister interface {
    List(ctx context.Context) ([]model.InventoryItem, error)
}

// ProtectedHandler serves the per-role overview endpoints under
// /api/protected.  Access is decided by the role predicates mounted in
// front of each route.
type ProtectedHandler struct {
    Users  UserLister
    Items  ItemLister
    Orders OrderService
}

func NewProtectedHandler(users UserLister, items ItemLister, orders OrderService) *ProtectedHandler {
    return &ProtectedHandler{Users: users, Items: items, Orders: orders}
}

// AdminUsers lists every account with its role name.
func (h *ProtectedHandler) AdminUsers(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    users, err := h.Users.List(ctx)
    if err != nil {
        return respondError(c, err, nil)
    }
    out := lo.Map(users, func(u model.User, _ int) userPart {
        p := userPart{ID: u.ID, Name: u.Name, Email: u.Email}
        if u.Role != nil {
            p.Role = model.Role(u.Role.Name)
        }
        return p
    })
    return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// WorkerInventory lists every inventory item.
func (h *ProtectedHandler) WorkerInventory(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, err := h.Items.List(ctx)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, echo.Map{"inventory": items})
}

// SalesOrders returns all orders with their user, item and payments,
// walking the paginated listing to the end.
func (h *ProtectedHandler) SalesOrders(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    all := make([]model.OrderDetail, 0)
    for page := 1; ; page++ {
        orders, pg, err := h.Orders.List(ctx, model.OrderFilter{Page: page, Limit: model.MaxPageLimit})
        if err != nil {
            return respondError(c, err, nil)
        }
        all = append(all, orders...)
        if page >= pg.TotalPages {
            break
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"orders": all})
}
