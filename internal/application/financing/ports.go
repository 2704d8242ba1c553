package financing

import (
	"context"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
)

// OrderLocker serializes schedule mutations per order.
type OrderLocker interface {
	// Lock blocks until key is held or ctx is done. The returned release
	// must be called exactly once.
	Lock(ctx context.Context, key string) (release func(), err error)
}

// OrderLockKey is the lock key guarding an order's instalments
func OrderLockKey(orderID uuid.UUID) string {
	return "financing:order:" + orderID.String()
}

// TransactionScope provides transactional access to the financing repositories.
// All repository operations executed in fn are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to one transaction.
type TransactionalRepositories interface {
	OrderRepo() trade.OrderRepository
	PaymentRepo() trade.PaymentRepository
	InstalmentRepo() financing.InstalmentRepository
}

// Options configures the financing services
type Options struct {
	Policy financing.ClampingPolicy
	// RejectOverpayment refuses payments above the outstanding balance
	// instead of dropping the excess
	RejectOverpayment bool
}
