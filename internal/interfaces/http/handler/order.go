package handler

import (
	"context"

	financingapp "github.com/erp/backoffice/internal/application/financing"
	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderService is the order financing use case surface used by OrderHandler
type OrderService interface {
	CreateOrder(ctx context.Context, req financingapp.CreateOrderRequest) (*financingapp.OrderResponse, error)
	ChangeTerms(ctx context.Context, orderID uuid.UUID, req financingapp.ChangeTermsRequest) (*financingapp.OrderResponse, error)
	GetSchedule(ctx context.Context, orderID uuid.UUID) (*financingapp.ScheduleResponse, error)
	Resync(ctx context.Context, orderID uuid.UUID) (*financingapp.ScheduleResponse, error)
	Simulate(ctx context.Context, req financingapp.SimulateRequest) (*financingapp.QuoteResponse, error)
	ListPlans(ctx context.Context, mode financing.PlanMode) ([]financingapp.PlanResponse, error)
}

// OrderHandler handles order financing endpoints
type OrderHandler struct {
	BaseHandler
	service OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// ListPlansQuery filters the plan listing
type ListPlansQuery struct {
	Mode financing.PlanMode `form:"mode" binding:"omitempty,plan_mode"`
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req financingapp.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ChangeTerms handles PUT /orders/:id/terms
func (h *OrderHandler) ChangeTerms(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	var req financingapp.ChangeTermsRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.service.ChangeTerms(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetSchedule handles GET /orders/:id/schedule
func (h *OrderHandler) GetSchedule(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	schedule, err := h.service.GetSchedule(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// Resync handles POST /orders/:id/resync. It rebuilds the schedule from the
// stored payments.
func (h *OrderHandler) Resync(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	schedule, err := h.service.Resync(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// Simulate handles POST /financing/simulate
func (h *OrderHandler) Simulate(c *gin.Context) {
	var req financingapp.SimulateRequest
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.service.Simulate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// ListPlans handles GET /financing/plans?mode=
func (h *OrderHandler) ListPlans(c *gin.Context) {
	var query ListPlansQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	plans, err := h.service.ListPlans(c.Request.Context(), query.Mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plans)
}

var _ OrderService = (*financingapp.OrderFinancingService)(nil)
