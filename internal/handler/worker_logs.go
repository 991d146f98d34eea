package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shoe-workshop/internal/model"
    "github.com/iliyamo/shoe-workshop/internal/repository"
)

// WorkerLogHandler serves /api/worker-logs.
type WorkerLogHandler struct {
    Logs *repository.WorkerLogRepo
}

func NewWorkerLogHandler(logs *repository.WorkerLogRepo) *WorkerLogHandler {
    return &WorkerLogHandler{Logs: logs}
}

type workerLogReq struct {
    WorkerID  *flexInt   `json:"workerId"`
    RoleID    *flexInt   `json:"roleId"`
    BatchID   *flexInt   `json:"batchId"`
    OrderID   *flexInt   `json:"orderId"`
    Quantity  *flexInt   `json:"quantity"`
    Timestamp *time.Time `json:"timestamp"`
}

// Create records work done.  quantity defaults to 1 and timestamp to now.
func (h *WorkerLogHandler) Create(c echo.Context) error {
    var req workerLogReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    l := model.WorkerLog{
        WorkerID: idOf(req.WorkerID),
        RoleID:   idOf(req.RoleID),
        BatchID:  idOf(req.BatchID),
        Quantity: 1,
    }
    if l.WorkerID == 0 || l.RoleID == 0 || l.BatchID == 0 {
        return badRequest(c, "workerId, roleId, and batchId are required")
    }
    if req.Quantity != nil {
        if *req.Quantity < 1 {
            return badRequest(c, "Quantity must be at least 1")
        }
        l.Quantity = int(*req.Quantity)
    }
    if id := idOf(req.OrderID); id > 0 {
        l.OrderID = &id
    }
    if req.Timestamp != nil {
        l.Timestamp = req.Timestamp.UTC()
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Logs.Create(ctx, &l); err != nil {
        return respondError(c, err, errMsgs{
            repository.ErrInvalidReference: "Worker, role, batch or order does not exist",
        })
    }
    return c.JSON(http.StatusCreated, l)
}

// List returns logs filtered by workerId, roleId, batchId and the
// start/end timestamp range.
func (h *WorkerLogHandler) List(c echo.Context) error {
    f, msg := logFilter(c)
    if msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    logs, err := h.Logs.List(ctx, f)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, logs)
}

// Stats aggregates quantities per ?groupBy=workerId|roleId|batchId.
func (h *WorkerLogHandler) Stats(c echo.Context) error {
    f, msg := logFilter(c)
    if msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    stats, err := h.Logs.Stats(ctx, c.QueryParam("groupBy"), f)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, stats)
}

// logFilter builds the filter from query parameters.  A non-empty msg
// describes the first malformed parameter.
func logFilter(c echo.Context) (model.WorkerLogFilter, string) {
    var (
        f  model.WorkerLogFilter
        ok bool
    )
    if f.WorkerID, ok = queryID(c, "workerId"); !ok {
        return f, "Invalid workerId"
    }
    if f.RoleID, ok = queryID(c, "roleId"); !ok {
        return f, "Invalid roleId"
    }
    if f.BatchID, ok = queryID(c, "batchId"); !ok {
        return f, "Invalid batchId"
    }
    if f.Start, ok = parseBound(c.QueryParam("start"), false); !ok {
        return f, "Invalid start date"
    }
    if f.End, ok = parseBound(c.QueryParam("end"), true); !ok {
        return f, "Invalid end date"
    }
    return f, ""
}

// parseBound accepts RFC3339 or YYYY-MM-DD.  A date-only end bound covers
// the whole day.
func parseBound(v string, end bool) (*time.Time, bool) {
    v = strings.TrimSpace(v)
    if v == "" {
        return nil, true
    }
    if t, err := time.Parse(time.RFC3339, v); err == nil {
        t = t.UTC()
        return &t, true
    }
    t, err := time.Parse(time.DateOnly, v)
    if err != nil {
        return nil, false
    }
    if end {
        t = t.Add(24*time.Hour - time.Nanosecond)
    }
    return &t, true
}
