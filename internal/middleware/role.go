package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shoe-workshop/internal/model"
)

// Permissions answers whether a role may perform an action on a resource.
// *service.Authorizer implements it.
type Permissions interface {
    Allowed(role model.Role, resource, action string) bool
}

func forbidden(c echo.Context) error {
    return c.JSON(http.StatusForbidden, echo.Map{"error": "Insufficient permissions"})
}

// RequireRole returns a middleware that lets the request through only when
// the role stored by JWTAuth is in roles.  A missing role is treated like
// a wrong one.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := CurrentRole(c)
            if !ok || !role.HasAnyRole(roles...) {
                return forbidden(c)
            }
            return next(c)
        }
    }
}

// RequireAdmin admits administrators only.
func RequireAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }

// RequireWorkerOrAdmin admits workers and administrators.
func RequireWorkerOrAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleWorker, model.RoleAdmin) }

// RequireSalesOrAdmin admits sales staff and administrators.
func RequireSalesOrAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleSales, model.RoleAdmin) }

// RequirePermission consults the permission table for (resource, action).
func RequirePermission(p Permissions, resource, action string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := CurrentRole(c)
            if !ok || !p.Allowed(role, resource, action) {
                return forbidden(c)
            }
            return next(c)
        }
    }
}
