package financing

import (
	"context"

	"github.com/google/uuid"
)

// PlanRepository defines the interface for financing plan persistence
type PlanRepository interface {
	// FindByID finds a plan by ID, returning shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*FinancingPlan, error)

	// FindActive lists the plans that can be chosen for new orders
	FindActive(ctx context.Context) ([]FinancingPlan, error)

	// Save creates or updates a plan
	Save(ctx context.Context, plan *FinancingPlan) error
}

// InstalmentRepository defines the interface for instalment persistence
type InstalmentRepository interface {
	// FindByOrder returns an order's instalments ordered by number
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Instalment, error)

	// ReplaceForOrder deletes every instalment of the order and inserts the
	// given ones in a single transaction
	ReplaceForOrder(ctx context.Context, orderID uuid.UUID, instalments []Instalment) error

	// SaveAll updates the given instalments in place
	SaveAll(ctx context.Context, instalments []Instalment) error
}
