package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or fully overwrites an order and its items
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Save(&model.Items).Error
	})
}

// SaveWithLock updates the order's terms and totals if the stored version is
// one behind the aggregate. Items are immutable after creation.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	m := models.OrderModelFromDomain(order)
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]any{
			"seller_id":         m.SellerID,
			"alliance_id":       m.AllianceID,
			"discount":          m.Discount,
			"down_payment":      m.DownPayment,
			"coinpay":           m.Coinpay,
			"plan_id":           m.PlanID,
			"plan_months":       m.PlanMonths,
			"plan_interest_pct": m.PlanInterestPct,
			"plan_mode":         m.PlanMode,
			"base_finance":      m.BaseFinance,
			"interest":          m.Interest,
			"total_to_finance":  m.TotalToFinance,
			"total_final":       m.TotalFinal,
			"version":           m.Version,
			"updated_at":        m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("Order was modified by another transaction")
	}
	return nil
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
