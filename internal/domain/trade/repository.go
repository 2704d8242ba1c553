package trade

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items, returning shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// Save creates an order with its items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order if its stored version is one behind the aggregate's
	SaveWithLock(ctx context.Context, order *Order) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment, returning shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByOrder returns the payments of an order ordered by created_at, then id
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)

	// SumByOrder totals the payments received for an order
	SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// Delete removes a payment
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommissionPaymentRepository defines the interface for commission payout persistence
type CommissionPaymentRepository interface {
	// FindByOrder returns the payouts of an order ordered by date
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]CommissionPayment, error)

	// SumByOrderAndParty totals payouts for one order and one party
	SumByOrderAndParty(ctx context.Context, orderID uuid.UUID, party CommissionParty) (int64, error)

	// Save creates a commission payment
	Save(ctx context.Context, payment *CommissionPayment) error
}
