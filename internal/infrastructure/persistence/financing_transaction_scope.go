package persistence

import (
	"context"

	appfin "github.com/erp/backoffice/internal/application/financing"
	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements the financing TransactionScope with a GORM transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in one transaction; an error from fn rolls it back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfin.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r txRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r txRepositories) PaymentRepo() trade.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r txRepositories) InstalmentRepo() financing.InstalmentRepository {
	return NewGormInstalmentRepository(r.tx)
}

var _ appfin.TransactionScope = (*GormTransactionScope)(nil)
