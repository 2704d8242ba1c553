package financing

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanMode tags how an order is settled
type PlanMode string

const (
	PlanModeCash    PlanMode = "CASH"
	PlanModeInHouse PlanMode = "IN_HOUSE"
	PlanModeCard    PlanMode = "CARD"
	PlanModeCompany PlanMode = "COMPANY"
)

// AllPlanModes lists every supported plan mode
func AllPlanModes() []PlanMode {
	return []PlanMode{PlanModeCash, PlanModeInHouse, PlanModeCard, PlanModeCompany}
}

// IsValid reports whether m is a known plan mode
func (m PlanMode) IsValid() bool {
	switch m {
	case PlanModeCash, PlanModeInHouse, PlanModeCard, PlanModeCompany:
		return true
	}
	return false
}

func (m PlanMode) String() string {
	return string(m)
}

// InterestKind selects the interest formula used by plan simulation
type InterestKind string

const (
	InterestNone     InterestKind = "NONE"
	InterestSimple   InterestKind = "SIMPLE"
	InterestCompound InterestKind = "COMPOUND"
)

// IsValid reports whether k is a known interest kind
func (k InterestKind) IsValid() bool {
	switch k {
	case InterestNone, InterestSimple, InterestCompound:
		return true
	}
	return false
}

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodDeposit  PaymentMethod = "DEPOSIT"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodDebit    PaymentMethod = "DEBIT_CARD"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodDeposit, PaymentMethodCard, PaymentMethodDebit:
		return true
	}
	return false
}

// IsCardBased reports whether the method is subject to the card-fee surcharge
func (m PaymentMethod) IsCardBased() bool {
	return m == PaymentMethodCard || m == PaymentMethodDebit
}

// FinancingPlan is reference data describing how an order is financed.
// Orders snapshot a plan's terms; later plan changes do not affect them.
type FinancingPlan struct {
	shared.BaseEntity
	Name         string
	Mode         PlanMode
	Months       int
	InterestPct  decimal.Decimal
	InterestKind InterestKind
	CardFeePct   decimal.Decimal
	IsActive     bool
}

// NewFinancingPlan creates an active plan with nominal interest applied once over the term
func NewFinancingPlan(name string, mode PlanMode, months int, interestPct decimal.Decimal) (*FinancingPlan, error) {
	plan := &FinancingPlan{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         strings.TrimSpace(name),
		Mode:         mode,
		Months:       months,
		InterestPct:  interestPct,
		InterestKind: InterestSimple,
		CardFeePct:   decimal.Zero,
		IsActive:     true,
	}
	if interestPct.IsZero() {
		plan.InterestKind = InterestNone
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Validate checks the plan definition
func (p *FinancingPlan) Validate() error {
	if p.Name == "" {
		return ErrInvalidPlan.WithMessage("Plan name cannot be empty")
	}
	if !p.Mode.IsValid() {
		return ErrInvalidPlan.WithMessage("Unknown plan mode: " + string(p.Mode))
	}
	if !p.InterestKind.IsValid() {
		return ErrInvalidPlan.WithMessage("Unknown interest kind: " + string(p.InterestKind))
	}
	if p.Months < 0 || p.Months > 120 {
		return ErrInvalidPlan.WithMessage("Plan months must be between 0 and 120")
	}
	if p.Mode == PlanModeCash && p.Months != 0 {
		return ErrInvalidPlan.WithMessage("Cash plans cannot have instalments")
	}
	if p.InterestPct.IsNegative() || p.CardFeePct.IsNegative() {
		return ErrInvalidPlan.WithMessage("Plan percentages cannot be negative")
	}
	return nil
}

// SetInterestKind changes the formula used by plan simulation
func (p *FinancingPlan) SetInterestKind(kind InterestKind) error {
	if !kind.IsValid() {
		return ErrInvalidPlan.WithMessage("Unknown interest kind: " + string(kind))
	}
	p.InterestKind = kind
	p.Touch()
	return nil
}

// SetCardFee sets the surcharge applied to card-based payments
func (p *FinancingPlan) SetCardFee(pct decimal.Decimal) error {
	if pct.IsNegative() {
		return ErrInvalidPlan.WithMessage("Card fee cannot be negative")
	}
	p.CardFeePct = pct
	p.Touch()
	return nil
}

// Deactivate retires the plan. Orders referencing it lose their schedule on the next replay.
func (p *FinancingPlan) Deactivate() {
	p.IsActive = false
	p.Touch()
}

// Activate makes the plan selectable again
func (p *FinancingPlan) Activate() {
	p.IsActive = true
	p.Touch()
}

// Terms returns the snapshot an order keeps of this plan
func (p *FinancingPlan) Terms() *PlanTerms {
	return &PlanTerms{
		PlanID:      p.ID,
		Months:      p.Months,
		InterestPct: p.InterestPct,
		Mode:        p.Mode,
	}
}

// PlanTerms is the part of a plan an order snapshots at creation or edit time
type PlanTerms struct {
	PlanID      uuid.UUID
	Months      int
	InterestPct decimal.Decimal
	Mode        PlanMode
}

// IsFinanced reports whether the terms produce instalments
func (t *PlanTerms) IsFinanced() bool {
	return t != nil && t.Months > 0
}
