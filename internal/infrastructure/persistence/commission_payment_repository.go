package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommissionPaymentRepository implements trade.CommissionPaymentRepository using GORM
type GormCommissionPaymentRepository struct {
	db *gorm.DB
}

// NewGormCommissionPaymentRepository creates a new GormCommissionPaymentRepository
func NewGormCommissionPaymentRepository(db *gorm.DB) *GormCommissionPaymentRepository {
	return &GormCommissionPaymentRepository{db: db}
}

// FindByOrder returns the payouts of an order ordered by date
func (r *GormCommissionPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.CommissionPayment, error) {
	var rows []models.CommissionPaymentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payouts := make([]trade.CommissionPayment, len(rows))
	for i := range rows {
		payouts[i] = *rows[i].ToDomain()
	}
	return payouts, nil
}

// SumByOrderAndParty totals the payouts made to one party for an order
func (r *GormCommissionPaymentRepository) SumByOrderAndParty(ctx context.Context, orderID uuid.UUID, party trade.CommissionParty) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CommissionPaymentModel{}).
		Where("order_id = ? AND party = ?", orderID, party).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// Save creates a commission payment
func (r *GormCommissionPaymentRepository) Save(ctx context.Context, payment *trade.CommissionPayment) error {
	model := &models.CommissionPaymentModel{}
	model.FromDomain(payment)
	return r.db.WithContext(ctx).Create(model).Error
}

var _ trade.CommissionPaymentRepository = (*GormCommissionPaymentRepository)(nil)
