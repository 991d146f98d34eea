package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/shoe-workshop/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/shoe-workshop/internal/middleware" // JWT authentication and permission checks
	"github.com/iliyamo/shoe-workshop/internal/service"    // resource and action names of the permission table
)

// Guard bundles the token secret and permission table every protected
// route is checked against, plus an optional rate limiter.
type Guard struct {
	JWTSecret string
	Perms     middleware.Permissions
	Limit     echo.MiddlewareFunc // nil disables limiting
}

// Auth returns the JWT middleware followed by the limiter, so limiter
// keys built from the user id see the authenticated caller.
func (g Guard) Auth() echo.MiddlewareFunc {
	jwt := middleware.JWTAuth(g.JWTSecret)
	if g.Limit == nil {
		return jwt
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc { return jwt(g.Limit(next)) }
}

// Public returns the limiter for routes that need no token.  Callers on
// those routes are anonymous, so they share the "anon" user key.
func (g Guard) Public() echo.MiddlewareFunc {
	if g.Limit == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return g.Limit
}

// Can returns the permission check for (resource, action).  It must run
// after Auth.
func (g Guard) Can(resource, action string) echo.MiddlewareFunc {
	return middleware.RequirePermission(g.Perms, resource, action)
}

// RegisterRoutes registers routes that do not require authentication:
// the health check and batch QR codes.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc, qr *handler.QRHandler, g Guard) {
	e.GET("/healthz", health)
	// QR codes only encode the batch id, so scanning stations need no token.
	e.GET("/api/qr/:batchId", qr.Batch, g.Public())
}

// RegisterAuth registers login and the profile endpoints.  Login is open;
// everything else requires a valid access token.  The per-role views
// under /api/protected are gated by role rather than by permission.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, v *handler.ProtectedHandler, g Guard) {
	e.POST("/api/auth/login", a.Login, g.Public())
	e.GET("/api/auth/me", a.Me, g.Auth())

	p := e.Group("/api/protected", g.Auth())
	p.GET("/profile", a.Me)
	p.GET("/admin/users", v.AdminUsers, middleware.RequireAdmin())
	p.GET("/worker/inventory", v.WorkerInventory, middleware.RequireWorkerOrAdmin())
	p.GET("/sales/orders", v.SalesOrders, middleware.RequireSalesOrAdmin())
	p.GET("/management/dashboard", a.ManagementDashboard, g.Can(service.ResDashboard, service.ActRead))
}
