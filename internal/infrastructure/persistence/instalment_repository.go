package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const instalmentBatchSize = 100

// GormInstalmentRepository implements financing.InstalmentRepository using GORM
type GormInstalmentRepository struct {
	db *gorm.DB
}

// NewGormInstalmentRepository creates a new GormInstalmentRepository
func NewGormInstalmentRepository(db *gorm.DB) *GormInstalmentRepository {
	return &GormInstalmentRepository{db: db}
}

// FindByOrder returns the order's schedule ordered by instalment number
func (r *GormInstalmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]financing.Instalment, error) {
	var rows []models.InstalmentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	instalments := make([]financing.Instalment, len(rows))
	for i := range rows {
		instalments[i] = rows[i].ToDomain()
	}
	return instalments, nil
}

// ReplaceForOrder deletes the order's schedule and inserts the given one.
// Generated IDs are written back into instalments. Inside an outer
// transaction this runs as a savepoint.
func (r *GormInstalmentRepository) ReplaceForOrder(ctx context.Context, orderID uuid.UUID, instalments []financing.Instalment) error {
	for _, inst := range instalments {
		if inst.OrderID != orderID {
			return fmt.Errorf("instalment %d belongs to order %s, not %s", inst.Number, inst.OrderID, orderID)
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.InstalmentModel{}).Error; err != nil {
			return err
		}
		if len(instalments) == 0 {
			return nil
		}
		rows := models.InstalmentModelsFromDomain(instalments, time.Now())
		for i := range rows {
			instalments[i].ID = rows[i].ID
		}
		return tx.CreateInBatches(&rows, instalmentBatchSize).Error
	})
}

// SaveAll writes back the mutable columns of each instalment
func (r *GormInstalmentRepository) SaveAll(ctx context.Context, instalments []financing.Instalment) error {
	if len(instalments) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, inst := range instalments {
			result := tx.Model(&models.InstalmentModel{}).
				Where("id = ?", inst.ID).
				Updates(map[string]any{
					"amount":     inst.Amount,
					"is_paid":    inst.IsPaid,
					"paid_at":    inst.PaidAt,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("instalment %s not found", inst.ID)
			}
		}
		return nil
	})
}

var _ financing.InstalmentRepository = (*GormInstalmentRepository)(nil)
