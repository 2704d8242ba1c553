package partner

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var maxCommissionPct = decimal.NewFromInt(100)

// Contact holds the name and contact fields shared by sellers and alliances
type Contact struct {
	Name  string
	Email string
	Phone string
}

func (c Contact) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(c.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validateCommissionPct(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(maxCommissionPct) {
		return shared.NewDomainError("INVALID_COMMISSION_PCT", "Commission percentage must be between 0 and 100")
	}
	return nil
}

// Seller is an employee earning a flat commission on the orders they sell
type Seller struct {
	shared.BaseEntity
	Contact
	CommissionPct decimal.Decimal
	IsActive      bool
}

// NewSeller creates an active seller
func NewSeller(contact Contact, commissionPct decimal.Decimal) (*Seller, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	if err := contact.validate(); err != nil {
		return nil, err
	}
	if err := validateCommissionPct(commissionPct); err != nil {
		return nil, err
	}
	return &Seller{
		BaseEntity:    shared.NewBaseEntity(),
		Contact:       contact,
		CommissionPct: commissionPct,
		IsActive:      true,
	}, nil
}

// SetCommissionPct changes the seller's percentage for future accrual reads
func (s *Seller) SetCommissionPct(pct decimal.Decimal) error {
	if err := validateCommissionPct(pct); err != nil {
		return err
	}
	s.CommissionPct = pct
	s.Touch()
	return nil
}

// Alliance is a referral partner earning a flat commission on referred orders
type Alliance struct {
	shared.BaseEntity
	Contact
	CommissionPct decimal.Decimal
	IsActive      bool
}

// NewAlliance creates an active alliance
func NewAlliance(contact Contact, commissionPct decimal.Decimal) (*Alliance, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	if err := contact.validate(); err != nil {
		return nil, err
	}
	if err := validateCommissionPct(commissionPct); err != nil {
		return nil, err
	}
	return &Alliance{
		BaseEntity:    shared.NewBaseEntity(),
		Contact:       contact,
		CommissionPct: commissionPct,
		IsActive:      true,
	}, nil
}

// SetCommissionPct changes the alliance's percentage for future accrual reads
func (a *Alliance) SetCommissionPct(pct decimal.Decimal) error {
	if err := validateCommissionPct(pct); err != nil {
		return err
	}
	a.CommissionPct = pct
	a.Touch()
	return nil
}

// SellerRepository defines the interface for seller persistence
type SellerRepository interface {
	// FindByID finds a seller, returning shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Seller, error)
	// Save creates or updates a seller
	Save(ctx context.Context, seller *Seller) error
}

// AllianceRepository defines the interface for alliance persistence
type AllianceRepository interface {
	// FindByID finds an alliance, returning shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Alliance, error)
	// Save creates or updates an alliance
	Save(ctx context.Context, alliance *Alliance) error
}
