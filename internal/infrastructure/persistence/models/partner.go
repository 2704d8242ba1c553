package models

import (
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// ContactColumns holds the contact columns shared by sellers and alliances.
type ContactColumns struct {
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200)"`
	Phone string `gorm:"type:varchar(50)"`
}

func (c ContactColumns) toDomain() partner.Contact {
	return partner.Contact{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func contactColumns(c partner.Contact) ContactColumns {
	return ContactColumns{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// SellerModel is the persistence model for a seller.
type SellerModel struct {
	BaseModel
	ContactColumns
	CommissionPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SellerModel) TableName() string {
	return "sellers"
}

// ToDomain converts the persistence model to a domain Seller.
func (m *SellerModel) ToDomain() *partner.Seller {
	return &partner.Seller{
		BaseEntity:    m.BaseModel.ToDomain(),
		Contact:       m.ContactColumns.toDomain(),
		CommissionPct: m.CommissionPct,
		IsActive:      m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Seller.
func (m *SellerModel) FromDomain(s *partner.Seller) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ContactColumns = contactColumns(s.Contact)
	m.CommissionPct = s.CommissionPct
	m.IsActive = s.IsActive
}

// AllianceModel is the persistence model for an alliance.
type AllianceModel struct {
	BaseModel
	ContactColumns
	CommissionPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AllianceModel) TableName() string {
	return "alliances"
}

// ToDomain converts the persistence model to a domain Alliance.
func (m *AllianceModel) ToDomain() *partner.Alliance {
	return &partner.Alliance{
		BaseEntity:    m.BaseModel.ToDomain(),
		Contact:       m.ContactColumns.toDomain(),
		CommissionPct: m.CommissionPct,
		IsActive:      m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Alliance.
func (m *AllianceModel) FromDomain(a *partner.Alliance) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.ContactColumns = contactColumns(a.Contact)
	m.CommissionPct = a.CommissionPct
	m.IsActive = a.IsActive
}
