package middleware

// identity.go holds the context keys JWTAuth fills and the accessors
// handlers use to read them back.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shoe-workshop/internal/model"
    "github.com/iliyamo/shoe-workshop/internal/utils"
)

// Context keys set by JWTAuth.
const (
    ctxUserID = "user_id"
    ctxRole   = "role"
    ctxClaims = "claims"
)

// CurrentUserID returns the authenticated user's id, or false when the
// request did not pass JWTAuth.
func CurrentUserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id != 0
}

// CurrentRole returns the authenticated user's role.
func CurrentRole(c echo.Context) (model.Role, bool) {
    r, ok := c.Get(ctxRole).(model.Role)
    return r, ok
}

// CurrentClaims returns the verified token claims.
func CurrentClaims(c echo.Context) (*utils.Claims, bool) {
    cl, ok := c.Get(ctxClaims).(*utils.Claims)
    return cl, ok
}

// userKey renders the caller for rate limit keys; "anon" before JWTAuth
// has run.
func userKey(c echo.Context) string {
    if id, ok := CurrentUserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
