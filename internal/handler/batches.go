package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shoe-workshop/internal/repository"
)

// BatchHandler serves /api/batches.
type BatchHandler struct {
    Batches *repository.BatchRepo
}

func NewBatchHandler(batches *repository.BatchRepo) *BatchHandler {
    return &BatchHandler{Batches: batches}
}

var batchErrs = errMsgs{
    repository.ErrBatchNotFound: "Batch not found",
    repository.ErrConflict:      "Cannot delete batch with worker logs",
}

type batchReq struct {
    Type string `json:"type"`
}

func (h *BatchHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    batches, err := h.Batches.List(ctx)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, batches)
}

func (h *BatchHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid batch ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Batches.GetByID(ctx, id)
    if err != nil {
        return respondError(c, err, batchErrs)
    }
    return c.JSON(http.StatusOK, b)
}

func (h *BatchHandler) Create(c echo.Context) error {
    var req batchReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Type) == "" {
        return badRequest(c, "Type is required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Batches.Create(ctx, strings.TrimSpace(req.Type))
    if err != nil {
        return respondError(c, err, batchErrs)
    }
    return c.JSON(http.StatusCreated, b)
}

func (h *BatchHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid batch ID")
    }
    var req batchReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Type) == "" {
        return badRequest(c, "Type is required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Batches.Update(ctx, id, strings.TrimSpace(req.Type))
    if err != nil {
        return respondError(c, err, batchErrs)
    }
    return c.JSON(http.StatusOK, b)
}

func (h *BatchHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid batch ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Batches.Delete(ctx, id); err != nil {
        return respondError(c, err, batchErrs)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Batch deleted successfully"})
}
