package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSellerRepository implements partner.SellerRepository using GORM
type GormSellerRepository struct {
	db *gorm.DB
}

// NewGormSellerRepository creates a new GormSellerRepository
func NewGormSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

// FindByID finds a seller by its ID
func (r *GormSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Seller, error) {
	var model models.SellerModel
	if err := first(ctx, r.db, &model, id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a seller
func (r *GormSellerRepository) Save(ctx context.Context, seller *partner.Seller) error {
	model := &models.SellerModel{}
	model.FromDomain(seller)
	return r.db.WithContext(ctx).Save(model).Error
}

// GormAllianceRepository implements partner.AllianceRepository using GORM
type GormAllianceRepository struct {
	db *gorm.DB
}

// NewGormAllianceRepository creates a new GormAllianceRepository
func NewGormAllianceRepository(db *gorm.DB) *GormAllianceRepository {
	return &GormAllianceRepository{db: db}
}

// FindByID finds an alliance by its ID
func (r *GormAllianceRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Alliance, error) {
	var model models.AllianceModel
	if err := first(ctx, r.db, &model, id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an alliance
func (r *GormAllianceRepository) Save(ctx context.Context, alliance *partner.Alliance) error {
	model := &models.AllianceModel{}
	model.FromDomain(alliance)
	return r.db.WithContext(ctx).Save(model).Error
}

func first(ctx context.Context, db *gorm.DB, dest any, id uuid.UUID) error {
	err := db.WithContext(ctx).First(dest, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

var (
	_ partner.SellerRepository   = (*GormSellerRepository)(nil)
	_ partner.AllianceRepository = (*GormAllianceRepository)(nil)
)
