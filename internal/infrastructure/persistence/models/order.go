package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
// The plan snapshot is flattened into plan_* columns; a NULL plan_id is a
// cash order.
type OrderModel struct {
	AggregateModel
	ClientID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	SellerID   *uuid.UUID       `gorm:"type:uuid;index"`
	AllianceID *uuid.UUID       `gorm:"type:uuid;index"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`

	TotalList   int64 `gorm:"not null;default:0"`
	Discount    int64 `gorm:"not null;default:0"`
	DownPayment int64 `gorm:"not null;default:0"`
	Coinpay     int64 `gorm:"not null;default:0"`

	PlanID          *uuid.UUID         `gorm:"type:uuid;index"`
	PlanMonths      int                `gorm:"not null;default:0"`
	PlanInterestPct decimal.Decimal    `gorm:"type:decimal(9,4);not null;default:0"`
	PlanMode        financing.PlanMode `gorm:"type:varchar(20)"`

	BaseFinance    int64 `gorm:"not null;default:0"`
	Interest       int64 `gorm:"not null;default:0"`
	TotalToFinance int64 `gorm:"not null;default:0"`
	TotalFinal     int64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ClientID:          m.ClientID,
		SellerID:          m.SellerID,
		AllianceID:        m.AllianceID,
		TotalList:         m.TotalList,
		Discount:          m.Discount,
		DownPayment:       m.DownPayment,
		Coinpay:           m.Coinpay,
		BaseFinance:       m.BaseFinance,
		Interest:          m.Interest,
		TotalToFinance:    m.TotalToFinance,
		TotalFinal:        m.TotalFinal,
		Items:             make([]trade.OrderItem, len(m.Items)),
	}
	if m.PlanID != nil {
		order.Plan = &financing.PlanTerms{
			PlanID:      *m.PlanID,
			Months:      m.PlanMonths,
			InterestPct: m.PlanInterestPct,
			Mode:        m.PlanMode,
		}
	}
	for i, item := range m.Items {
		order.Items[i] = item.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.ClientID = o.ClientID
	m.SellerID = o.SellerID
	m.AllianceID = o.AllianceID
	m.TotalList = o.TotalList
	m.Discount = o.Discount
	m.DownPayment = o.DownPayment
	m.Coinpay = o.Coinpay
	m.BaseFinance = o.BaseFinance
	m.Interest = o.Interest
	m.TotalToFinance = o.TotalToFinance
	m.TotalFinal = o.TotalFinal

	m.PlanID, m.PlanMonths, m.PlanInterestPct, m.PlanMode = nil, 0, decimal.Zero, ""
	if o.Plan != nil {
		planID := o.Plan.PlanID
		m.PlanID = &planID
		m.PlanMonths = o.Plan.Months
		m.PlanInterestPct = o.Plan.InterestPct
		m.PlanMode = o.Plan.Mode
	}

	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i].FromDomain(item, o.CreatedAt)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int64     `gorm:"not null"`
	UnitPrice int64     `gorm:"not null"`
	Subtotal  int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Subtotal:  m.Subtotal,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(i trade.OrderItem, createdAt time.Time) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.Subtotal = i.Subtotal
	m.CreatedAt = createdAt
}
