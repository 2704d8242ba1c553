package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
)

// PaymentModel is the persistence model for a client payment.
// created_at is the economic payment date and is indexed with order_id for replay.
type PaymentModel struct {
	ID        uuid.UUID               `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID               `gorm:"type:uuid;not null;index:idx_payments_order_created,priority:1"`
	Amount    int64                   `gorm:"not null"`
	Method    financing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference string                  `gorm:"type:varchar(100)"`
	CreatedAt time.Time               `gorm:"not null;index:idx_payments_order_created,priority:2"`
	UpdatedAt time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *trade.Payment {
	p := &trade.Payment{
		OrderID:   m.OrderID,
		Amount:    m.Amount,
		Method:    m.Method,
		Reference: m.Reference,
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return p
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *trade.Payment) {
	m.ID = p.ID
	m.OrderID = p.OrderID
	m.Amount = p.Amount
	m.Method = p.Method
	m.Reference = p.Reference
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *trade.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// CommissionPaymentModel is the persistence model for a payout to a seller or alliance.
type CommissionPaymentModel struct {
	BaseModel
	OrderID    uuid.UUID             `gorm:"type:uuid;not null;index:idx_commission_payments_order_party,priority:1"`
	Party      trade.CommissionParty `gorm:"type:varchar(20);not null;index:idx_commission_payments_order_party,priority:2"`
	SellerID   *uuid.UUID            `gorm:"type:uuid;index"`
	AllianceID *uuid.UUID            `gorm:"type:uuid;index"`
	Amount     int64                 `gorm:"not null"`
	Date       time.Time             `gorm:"type:date;not null"`
	Notes      string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CommissionPaymentModel) TableName() string {
	return "commission_payments"
}

// ToDomain converts the persistence model to a domain CommissionPayment.
func (m *CommissionPaymentModel) ToDomain() *trade.CommissionPayment {
	return &trade.CommissionPayment{
		BaseEntity: m.BaseModel.ToDomain(),
		OrderID:    m.OrderID,
		Party:      m.Party,
		SellerID:   m.SellerID,
		AllianceID: m.AllianceID,
		Amount:     m.Amount,
		Date:       m.Date,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain CommissionPayment.
func (m *CommissionPaymentModel) FromDomain(c *trade.CommissionPayment) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.OrderID = c.OrderID
	m.Party = c.Party
	m.SellerID = c.SellerID
	m.AllianceID = c.AllianceID
	m.Amount = c.Amount
	m.Date = c.Date
	m.Notes = c.Notes
}
