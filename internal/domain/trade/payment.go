package trade

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Payment is money received against an order. CreatedAt is the economic
// payment date and drives replay order.
type Payment struct {
	shared.BaseEntity
	OrderID   uuid.UUID
	Amount    int64
	Method    financing.PaymentMethod
	Reference string
}

// NewPayment creates a payment dated paidAt
func NewPayment(orderID uuid.UUID, amount int64, method financing.PaymentMethod, reference string, paidAt time.Time) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	p := &Payment{
		BaseEntity: shared.NewBaseEntityAt(paidAt),
		OrderID:    orderID,
	}
	if err := p.set(amount, method, reference); err != nil {
		return nil, err
	}
	return p, nil
}

// PaymentChanges holds the fields an edit may change; nil leaves a field as is
type PaymentChanges struct {
	Amount    *int64
	Method    *financing.PaymentMethod
	Reference *string
	PaidAt    *time.Time
}

// Edit applies changes to the payment. The order schedule must be replayed afterwards.
func (p *Payment) Edit(changes PaymentChanges) error {
	amount, method, reference := p.Amount, p.Method, p.Reference
	if changes.Amount != nil {
		amount = *changes.Amount
	}
	if changes.Method != nil {
		method = *changes.Method
	}
	if changes.Reference != nil {
		reference = *changes.Reference
	}
	if err := p.set(amount, method, reference); err != nil {
		return err
	}
	if changes.PaidAt != nil {
		p.CreatedAt = *changes.PaidAt
	}
	p.Touch()
	return nil
}

func (p *Payment) set(amount int64, method financing.PaymentMethod, reference string) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(method))
	}
	reference = strings.TrimSpace(reference)
	if len(reference) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 100 characters")
	}
	p.Amount = amount
	p.Method = method
	p.Reference = reference
	return nil
}

// PaidAt is the economic payment date
func (p *Payment) PaidAt() time.Time {
	return p.CreatedAt
}

// Fact returns what the replay needs from the payment
func (p *Payment) Fact() financing.PaymentFact {
	return financing.PaymentFact{ID: p.ID, Amount: p.Amount, PaidAt: p.CreatedAt}
}

// SumPayments totals payment amounts
func SumPayments(payments []Payment) int64 {
	var total int64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}
