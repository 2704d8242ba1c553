package router

import (
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers of the back office API
type Handlers struct {
	Orders      *handler.OrderHandler
	Payments    *handler.PaymentHandler
	Commissions *handler.CommissionHandler
	System      *handler.SystemHandler

	// Idempotency guards payment registration; nil disables the guard
	Idempotency gin.HandlerFunc
}

// FinancingRoutes returns the route groups of the financing API:
//
//	POST   /orders
//	PUT    /orders/:id/terms
//	GET    /orders/:id/schedule
//	POST   /orders/:id/resync
//	POST   /orders/:id/payments
//	GET    /orders/:id/commission?party=&mode=
//	POST   /orders/:id/commission-payments
//	PUT    /payments/:id
//	DELETE /payments/:id
//	POST   /financing/simulate
//	GET    /financing/plans
func FinancingRoutes(h Handlers) []RouteRegistrar {
	guard := h.Idempotency
	if guard == nil {
		guard = func(c *gin.Context) { c.Next() }
	}

	orders := NewDomainGroup("orders", "/orders").
		POST("", h.Orders.Create).
		PUT("/:id/terms", h.Orders.ChangeTerms).
		GET("/:id/schedule", h.Orders.GetSchedule).
		POST("/:id/resync", h.Orders.Resync).
		POST("/:id/payments", guard, h.Payments.Register).
		GET("/:id/commission", h.Commissions.Accrual).
		POST("/:id/commission-payments", h.Commissions.RecordPayment)

	payments := NewDomainGroup("payments", "/payments").
		PUT("/:id", h.Payments.Edit).
		DELETE("/:id", h.Payments.Delete)

	financing := NewDomainGroup("financing", "/financing").
		POST("/simulate", h.Orders.Simulate).
		GET("/plans", h.Orders.ListPlans)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	return []RouteRegistrar{orders, payments, financing, system}
}

// Mount registers the versioned API and the unversioned health endpoint
func Mount(engine *gin.Engine, h Handlers, opts ...RouterOption) {
	engine.GET("/health", h.System.Health)
	NewRouter(engine, opts...).Register(FinancingRoutes(h)...).Setup()
}
