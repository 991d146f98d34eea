package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/shoe-workshop/internal/model"
    "github.com/iliyamo/shoe-workshop/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject, role and claims into the request context.
// A request without a token gets 401; a token that fails verification
// (bad signature, expired, unknown role) gets 403 with the same message
// whatever the cause.  Nothing is looked up server-side.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // The header must be "Bearer <token>" with a non-empty token.
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
            if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Access token required"})
            }

            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid or expired token"})
            }
            // ParseAccessToken already validated both claims.
            id, _ := claims.UserID()
            role, _ := model.ParseRole(claims.Role)

            c.Set(ctxUserID, id)
            c.Set(ctxRole, role)
            c.Set(ctxClaims, claims)
            return next(c)
        }
    }
}
