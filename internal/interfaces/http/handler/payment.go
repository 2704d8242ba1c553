package handler

import (
	"context"

	financingapp "github.com/erp/backoffice/internal/application/financing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentService is the payment use case surface used by PaymentHandler
type PaymentService interface {
	RegisterPayment(ctx context.Context, orderID uuid.UUID, req financingapp.RegisterPaymentRequest) (*financingapp.PaymentResponse, error)
	EditPayment(ctx context.Context, paymentID uuid.UUID, req financingapp.EditPaymentRequest) (*financingapp.PaymentResponse, error)
	DeletePayment(ctx context.Context, paymentID uuid.UUID) error
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	service PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Register handles POST /orders/:id/payments. The response carries the
// allocation of the payment over the schedule.
func (h *PaymentHandler) Register(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req financingapp.RegisterPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.service.RegisterPayment(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Edit handles PUT /payments/:id
func (h *PaymentHandler) Edit(c *gin.Context) {
	paymentID, ok := h.pathID(c, "payment")
	if !ok {
		return
	}
	var req financingapp.EditPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.service.EditPayment(c.Request.Context(), paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Delete handles DELETE /payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	paymentID, ok := h.pathID(c, "payment")
	if !ok {
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), paymentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

var _ PaymentService = (*financingapp.PaymentService)(nil)
