package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPlanRepository implements financing.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by its ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*financing.FinancingPlan, error) {
	var model models.FinancingPlanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists active plans ordered by months, then name
func (r *GormPlanRepository) FindActive(ctx context.Context) ([]financing.FinancingPlan, error) {
	var rows []models.FinancingPlanModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("months ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	plans := make([]financing.FinancingPlan, len(rows))
	for i := range rows {
		plans[i] = *rows[i].ToDomain()
	}
	return plans, nil
}

// Save creates or updates a plan
func (r *GormPlanRepository) Save(ctx context.Context, plan *financing.FinancingPlan) error {
	return r.db.WithContext(ctx).Save(models.FinancingPlanModelFromDomain(plan)).Error
}

var _ financing.PlanRepository = (*GormPlanRepository)(nil)
