package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-workshop/internal/handler"
	"github.com/iliyamo/shoe-workshop/internal/service"
)

// crud is the handler shape shared by roles, batches and workers.
type crud interface {
	List(c echo.Context) error
	Get(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

// registerCRUD mounts the five endpoints of a resource under prefix.  Any
// role granted read may list; writes and deletes follow the table.
func registerCRUD(e *echo.Echo, prefix, resource string, h crud, g Guard) {
	r := e.Group(prefix, g.Auth())

	r.GET("", h.List, g.Can(resource, service.ActRead))
	r.GET("/:id", h.Get, g.Can(resource, service.ActRead))
	r.POST("", h.Create, g.Can(resource, service.ActWrite))
	r.PUT("/:id", h.Update, g.Can(resource, service.ActWrite))
	r.PATCH("/:id", h.Update, g.Can(resource, service.ActWrite)) // alias for clients that use PATCH
	r.DELETE("/:id", h.Delete, g.Can(resource, service.ActDelete))
}

// RegisterManagement registers /api/roles, /api/batches and /api/workers.
func RegisterManagement(e *echo.Echo, roles *handler.RoleHandler, batches *handler.BatchHandler, workers *handler.WorkerHandler, g Guard) {
	// ---- Roles ----
	registerCRUD(e, "/api/roles", service.ResRoles, roles, g)
	// ---- Batches ----
	registerCRUD(e, "/api/batches", service.ResBatches, batches, g)
	// ---- Workers ----
	registerCRUD(e, "/api/workers", service.ResWorkers, workers, g)
}
