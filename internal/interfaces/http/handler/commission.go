package handler

import (
	"context"

	financingapp "github.com/erp/backoffice/internal/application/financing"
	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CommissionService is the commission use case surface used by CommissionHandler
type CommissionService interface {
	Accrual(ctx context.Context, orderID uuid.UUID, party trade.CommissionParty, mode financing.CommissionMode) (*financingapp.CommissionResponse, error)
	RecordCommissionPayment(ctx context.Context, orderID uuid.UUID, req financingapp.RecordCommissionPaymentRequest) (*financingapp.CommissionPaymentResponse, error)
}

// CommissionHandler handles commission endpoints
type CommissionHandler struct {
	BaseHandler
	service CommissionService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(service CommissionService) *CommissionHandler {
	return &CommissionHandler{service: service}
}

// AccrualQuery selects the party and the accrual mode. Mode defaults to
// collected.
type AccrualQuery struct {
	Party trade.CommissionParty    `form:"party" binding:"required,party"`
	Mode  financing.CommissionMode `form:"mode" binding:"omitempty,commission_mode"`
}

// Accrual handles GET /orders/:id/commission?party=&mode=
func (h *CommissionHandler) Accrual(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	var query AccrualQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if query.Mode == "" {
		query.Mode = financing.CommissionModeCollected
	}

	accrual, err := h.service.Accrual(c.Request.Context(), orderID, query.Party, query.Mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accrual)
}

// RecordPayment handles POST /orders/:id/commission-payments
func (h *CommissionHandler) RecordPayment(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}
	var req financingapp.RecordCommissionPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payout, err := h.service.RecordCommissionPayment(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payout)
}

var _ CommissionService = (*financingapp.CommissionService)(nil)
