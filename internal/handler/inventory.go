package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/samber/mo"

    "github.com/iliyamo/shoe-workshop/internal/model"
    "github.com/iliyamo/shoe-workshop/internal/repository"
    "github.com/iliyamo/shoe-workshop/internal/service"
)

// InventoryService is the part of *service.InventoryService the handler uses.
type InventoryService interface {
    List(ctx context.Context) ([]model.InventoryItem, error)
    Get(ctx context.Context, id uint64) (*model.InventoryItem, error)
    Create(ctx context.Context, in service.ItemInput) (*model.InventoryItem, error)
    Update(ctx context.Context, id uint64, in service.ItemInput) (*model.InventoryItem, error)
    SetStock(ctx context.Context, id uint64, level int) (*model.InventoryItem, error)
    Delete(ctx context.Context, id uint64) error
}

// InventoryHandler serves /api/inventory.
type InventoryHandler struct {
    Items InventoryService
}

func NewInventoryHandler(items InventoryService) *InventoryHandler {
    return &InventoryHandler{Items: items}
}

type itemReq struct {
    Name       *string  `json:"name"`
    Model      *string  `json:"model"`
    Size       *string  `json:"size"`
    StockLevel *flexInt `json:"stockLevel"`
}

func (r itemReq) input() service.ItemInput {
    in := service.ItemInput{
        Name:  mo.PointerToOption(r.Name),
        Model: mo.PointerToOption(r.Model),
        Size:  mo.PointerToOption(r.Size),
    }
    if r.StockLevel != nil {
        in.StockLevel = mo.Some(int(*r.StockLevel))
    }
    return in
}

var itemErrs = errMsgs{
    repository.ErrDuplicate: "Item with this name, model, and size already exists",
    repository.ErrConflict:  "Cannot delete inventory item with associated orders",
}

// List returns all items sorted by name.
func (h *InventoryHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, err := h.Items.List(ctx)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, items)
}

func (h *InventoryHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid inventory item ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    it, err := h.Items.Get(ctx, id)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, it)
}

func (h *InventoryHandler) Create(c echo.Context) error {
    var req itemReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    it, err := h.Items.Create(ctx, req.input())
    if err != nil {
        return respondError(c, err, itemErrs)
    }
    return c.JSON(http.StatusCreated, it)
}

// Update merges the supplied fields into the item.
func (h *InventoryHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid inventory item ID")
    }
    var req itemReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    it, err := h.Items.Update(ctx, id, req.input())
    if err != nil {
        return respondError(c, err, itemErrs)
    }
    return c.JSON(http.StatusOK, it)
}

func (h *InventoryHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid inventory item ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Items.Delete(ctx, id); err != nil {
        return respondError(c, err, itemErrs)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Inventory item deleted successfully"})
}

// PatchStock sets the stock level directly, for manual corrections.
func (h *InventoryHandler) PatchStock(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid inventory item ID")
    }
    var req struct {
        StockLevel *flexInt `json:"stockLevel"`
    }
    if err := c.Bind(&req); err != nil || req.StockLevel == nil || *req.StockLevel < 0 {
        return badRequest(c, "Valid stock level is required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    it, err := h.Items.SetStock(ctx, id, int(*req.StockLevel))
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, it)
}
