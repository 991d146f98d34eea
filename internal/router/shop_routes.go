package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-workshop/internal/handler"
	"github.com/iliyamo/shoe-workshop/internal/service"
)

// RegisterInventory registers /api/inventory.  Reads and stock corrections
// are open to workers; catalogue changes are admin only.
func RegisterInventory(e *echo.Echo, h *handler.InventoryHandler, g Guard) {
	r := e.Group("/api/inventory", g.Auth())

	r.GET("", h.List, g.Can(service.ResInventory, service.ActRead))
	r.GET("/:id", h.Get, g.Can(service.ResInventory, service.ActRead))
	r.POST("", h.Create, g.Can(service.ResInventory, service.ActWrite))
	r.PUT("/:id", h.Update, g.Can(service.ResInventory, service.ActWrite))
	r.DELETE("/:id", h.Delete, g.Can(service.ResInventory, service.ActDelete))
	r.PATCH("/:id/stock", h.PatchStock, g.Can(service.ResStock, service.ActWrite))
}

// RegisterSales registers /api/sales: orders, payments and analytics.
func RegisterSales(e *echo.Echo, h *handler.SalesHandler, g Guard) {
	r := e.Group("/api/sales", g.Auth())

	// ---- Analytics ----
	// Registered before /:id; echo prefers static segments anyway.
	r.GET("/analytics/summary", h.Analytics, g.Can(service.ResAnalytics, service.ActRead))

	// ---- Orders ----
	r.GET("", h.List, g.Can(service.ResSales, service.ActRead))
	r.GET("/:id", h.Get, g.Can(service.ResSales, service.ActRead))
	r.POST("", h.Create, g.Can(service.ResSales, service.ActWrite))
	r.PUT("/:id", h.Update, g.Can(service.ResSales, service.ActWrite))
	r.DELETE("/:id", h.Delete, g.Can(service.ResSales, service.ActDelete))

	// ---- Payments ----
	r.POST("/:id/payments", h.AddPayment, g.Can(service.ResPayments, service.ActWrite))
}

// RegisterWorkerLogs registers /api/worker-logs.
func RegisterWorkerLogs(e *echo.Echo, h *handler.WorkerLogHandler, g Guard) {
	r := e.Group("/api/worker-logs", g.Auth())

	r.GET("", h.List, g.Can(service.ResWorkerLogs, service.ActRead))
	r.GET("/stats", h.Stats, g.Can(service.ResWorkerLogs, service.ActRead))
	r.POST("", h.Create, g.Can(service.ResWorkerLogs, service.ActWrite))
}
