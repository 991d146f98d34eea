package handler // handler defines http handlers

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shoe-workshop/internal/middleware"
    "github.com/iliyamo/shoe-workshop/internal/repository"
    "github.com/iliyamo/shoe-workshop/internal/service"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// queryID reads an optional positive integer query parameter.  ok is
// false only when the parameter is present and malformed.
func queryID(c echo.Context, name string) (uint64, bool) {
    v := strings.TrimSpace(c.QueryParam(name))
    if v == "" {
        return 0, true
    }
    id, err := strconv.ParseUint(v, 10, 64)
    return id, err == nil && id > 0
}

// actorID returns the authenticated user id stored by JWTAuth.
func actorID(c echo.Context) uint64 {
    id, _ := middleware.CurrentUserID(c)
    return id
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func notFound(c echo.Context, msg string) error {
    return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}

// errMsgs overrides the client message for specific sentinels.
type errMsgs map[error]string

// respondError maps service and repository errors onto status codes.
// Anything unrecognised is logged and reported as a 500 with a generic
// message.
func respondError(c echo.Context, err error, msgs errMsgs) error {
    var verr *service.ValidationError
    if errors.As(err, &verr) {
        return badRequest(c, verr.Msg)
    }
    for sentinel, msg := range msgs {
        if errors.Is(err, sentinel) {
            if errors.Is(sentinel, repository.ErrNotFound) {
                return notFound(c, msg)
            }
            return badRequest(c, msg)
        }
    }
    switch {
    case errors.Is(err, repository.ErrItemNotFound):
        return notFound(c, "Inventory item not found")
    case errors.Is(err, repository.ErrOrderNotFound):
        return notFound(c, "Order not found")
    case errors.Is(err, repository.ErrNotFound):
        return notFound(c, "Not found")
    case errors.Is(err, repository.ErrInsufficientStock):
        return badRequest(c, "Insufficient stock for this item")
    case errors.Is(err, repository.ErrDuplicate):
        return badRequest(c, "Record already exists")
    case errors.Is(err, repository.ErrConflict):
        return badRequest(c, "Record is still referenced")
    case errors.Is(err, repository.ErrInvalidReference):
        return badRequest(c, "Referenced record does not exist")
    }
    c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
}

// flexInt accepts a JSON number or a numeric string, as form-driven
// clients send both.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
    b = bytes.Trim(b, `"`)
    if len(b) == 0 || string(b) == "null" {
        return nil
    }
    var n json.Number
    if err := json.Unmarshal(b, &n); err != nil {
        return err
    }
    v, err := n.Int64()
    if err != nil {
        return err
    }
    *f = flexInt(v)
    return nil
}

// idOf converts an optional id field; non-positive values read as 0.
func idOf(f *flexInt) uint64 {
    if f == nil || *f <= 0 {
        return 0
    }
    return uint64(*f)
}
