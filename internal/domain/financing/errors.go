package financing

import "github.com/erp/backoffice/internal/domain/shared"

// Financing domain errors. The default ClampSilently policy never returns
// ErrNegativeAmount or ErrOverpayment.
var (
	ErrNegativeAmount        = shared.NewDomainError("NEGATIVE_AMOUNT", "Amount must not be negative")
	ErrOverpayment           = shared.NewDomainError("OVERPAYMENT", "Payment exceeds the outstanding balance of the schedule")
	ErrPaymentExceedsBalance = shared.NewDomainError("PAYMENT_EXCEEDS_BALANCE", "Payment exceeds the order outstanding balance")
	ErrPlanInactive          = shared.NewDomainError("PLAN_INACTIVE", "Financing plan is not active")
	ErrInvalidPlan           = shared.NewDomainError("INVALID_PLAN", "Financing plan definition is invalid")
	ErrUnknownCommissionMode = shared.NewDomainError("INVALID_INPUT", "Unknown commission mode")
)
