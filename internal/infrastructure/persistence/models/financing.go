package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancingPlanModel is the persistence model for financing plan reference data.
type FinancingPlanModel struct {
	BaseModel
	Name         string                 `gorm:"type:varchar(100);not null"`
	Mode         financing.PlanMode     `gorm:"type:varchar(20);not null"`
	Months       int                    `gorm:"not null;default:0"`
	InterestPct  decimal.Decimal        `gorm:"type:decimal(9,4);not null;default:0"`
	InterestKind financing.InterestKind `gorm:"type:varchar(20);not null;default:'SIMPLE'"`
	CardFeePct   decimal.Decimal        `gorm:"type:decimal(9,4);not null;default:0"`
	IsActive     bool                   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (FinancingPlanModel) TableName() string {
	return "financing_plans"
}

// ToDomain converts the persistence model to a domain FinancingPlan.
func (m *FinancingPlanModel) ToDomain() *financing.FinancingPlan {
	return &financing.FinancingPlan{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		Mode:         m.Mode,
		Months:       m.Months,
		InterestPct:  m.InterestPct,
		InterestKind: m.InterestKind,
		CardFeePct:   m.CardFeePct,
		IsActive:     m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain FinancingPlan.
func (m *FinancingPlanModel) FromDomain(p *financing.FinancingPlan) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Mode = p.Mode
	m.Months = p.Months
	m.InterestPct = p.InterestPct
	m.InterestKind = p.InterestKind
	m.CardFeePct = p.CardFeePct
	m.IsActive = p.IsActive
}

// FinancingPlanModelFromDomain creates a new persistence model from a domain FinancingPlan.
func FinancingPlanModelFromDomain(p *financing.FinancingPlan) *FinancingPlanModel {
	m := &FinancingPlanModel{}
	m.FromDomain(p)
	return m
}

// InstalmentModel is the persistence model for one scheduled instalment.
// (order_id, number) is unique; the schedule is rewritten as a whole on replay.
type InstalmentModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_instalments_order_number,priority:1"`
	Number    int        `gorm:"not null;uniqueIndex:idx_instalments_order_number,priority:2"`
	DueDate   time.Time  `gorm:"type:date;not null"`
	Amount    int64      `gorm:"not null"`
	IsPaid    bool       `gorm:"not null;default:false"`
	PaidAt    *time.Time `gorm:"type:date"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InstalmentModel) TableName() string {
	return "instalments"
}

// ToDomain converts the persistence model to a domain Instalment.
func (m *InstalmentModel) ToDomain() financing.Instalment {
	return financing.Instalment{
		ID:      m.ID,
		OrderID: m.OrderID,
		Number:  m.Number,
		DueDate: m.DueDate,
		Amount:  m.Amount,
		IsPaid:  m.IsPaid,
		PaidAt:  m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Instalment.
// A missing ID is generated.
func (m *InstalmentModel) FromDomain(i financing.Instalment) {
	m.ID = i.ID
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.OrderID = i.OrderID
	m.Number = i.Number
	m.DueDate = i.DueDate
	m.Amount = i.Amount
	m.IsPaid = i.IsPaid
	m.PaidAt = i.PaidAt
}

// InstalmentModelsFromDomain converts a schedule, stamping every row with now.
func InstalmentModelsFromDomain(instalments []financing.Instalment, now time.Time) []InstalmentModel {
	rows := make([]InstalmentModel, len(instalments))
	for i, inst := range instalments {
		rows[i].FromDomain(inst)
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
	}
	return rows
}
