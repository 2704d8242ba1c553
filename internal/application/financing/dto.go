package financing

import (
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Order DTOs ====================

// OrderItemInput is an item line of a new order
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64     `json:"unit_price" binding:"gte=0"`
}

// CreateOrderRequest represents a request to create a financed order
type CreateOrderRequest struct {
	ClientID    uuid.UUID        `json:"client_id" binding:"required"`
	SellerID    *uuid.UUID       `json:"seller_id"`
	AllianceID  *uuid.UUID       `json:"alliance_id"`
	PlanID      *uuid.UUID       `json:"plan_id"`
	Items       []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Discount    int64            `json:"discount"`
	DownPayment int64            `json:"down_payment"`
	Coinpay     int64            `json:"coinpay"`
}

// ChangeTermsRequest replaces the financing inputs of an order.
// A nil PlanID turns the order into a cash order.
type ChangeTermsRequest struct {
	PlanID      *uuid.UUID `json:"plan_id"`
	Discount    int64      `json:"discount"`
	DownPayment int64      `json:"down_payment"`
	Coinpay     int64      `json:"coinpay"`
	Version     int        `json:"version"`
}

// OrderItemResponse represents an order item in API responses
type OrderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	Subtotal  int64     `json:"subtotal"`
}

// PlanTermsResponse is the plan snapshot held by an order
type PlanTermsResponse struct {
	PlanID      uuid.UUID          `json:"plan_id"`
	Mode        financing.PlanMode `json:"mode"`
	Months      int                `json:"months"`
	InterestPct decimal.Decimal    `json:"interest_pct"`
}

// OrderResponse represents an order with its computed totals
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	ClientID       uuid.UUID           `json:"client_id"`
	SellerID       *uuid.UUID          `json:"seller_id,omitempty"`
	AllianceID     *uuid.UUID          `json:"alliance_id,omitempty"`
	Plan           *PlanTermsResponse  `json:"plan,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	TotalList      int64               `json:"total_list"`
	Discount       int64               `json:"discount"`
	DownPayment    int64               `json:"down_payment"`
	Coinpay        int64               `json:"coinpay"`
	BaseFinance    int64               `json:"base_finance"`
	Interest       int64               `json:"interest"`
	TotalToFinance int64               `json:"total_to_finance"`
	TotalFinal     int64               `json:"total_final"`
	Version        int                 `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Schedule       *ScheduleResponse   `json:"schedule,omitempty"`
}

// ToOrderResponse converts an order to its response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}

	resp := OrderResponse{
		ID:             o.ID,
		ClientID:       o.ClientID,
		SellerID:       o.SellerID,
		AllianceID:     o.AllianceID,
		Items:          items,
		TotalList:      o.TotalList,
		Discount:       o.Discount,
		DownPayment:    o.DownPayment,
		Coinpay:        o.Coinpay,
		BaseFinance:    o.BaseFinance,
		Interest:       o.Interest,
		TotalToFinance: o.TotalToFinance,
		TotalFinal:     o.TotalFinal,
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.Plan != nil {
		resp.Plan = &PlanTermsResponse{
			PlanID:      o.Plan.PlanID,
			Mode:        o.Plan.Mode,
			Months:      o.Plan.Months,
			InterestPct: o.Plan.InterestPct,
		}
	}
	return resp
}

// ==================== Schedule DTOs ====================

// InstalmentResponse represents an instalment in API responses
type InstalmentResponse struct {
	ID      uuid.UUID  `json:"id"`
	Number  int        `json:"number"`
	DueDate time.Time  `json:"due_date"`
	Amount  int64      `json:"amount"`
	IsPaid  bool       `json:"is_paid"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

// ScheduleSummary aggregates the state of a schedule
type ScheduleSummary struct {
	Instalments   int        `json:"instalments"`
	PaidCount     int        `json:"paid_count"`
	Outstanding   int64      `json:"outstanding"`
	NextDueDate   *time.Time `json:"next_due_date,omitempty"`
	NextDueAmount int64      `json:"next_due_amount"`
}

// ScheduleResponse is an order's schedule with its summary
type ScheduleResponse struct {
	OrderID     uuid.UUID            `json:"order_id"`
	Instalments []InstalmentResponse `json:"instalments"`
	Summary     ScheduleSummary      `json:"summary"`
	// Dropped is the payment amount no instalment absorbed during a replay
	Dropped int64 `json:"dropped,omitempty"`
}

// ToScheduleResponse builds the schedule view of instalments
func ToScheduleResponse(orderID uuid.UUID, instalments []financing.Instalment) ScheduleResponse {
	resp := ScheduleResponse{
		OrderID:     orderID,
		Instalments: make([]InstalmentResponse, len(instalments)),
		Summary: ScheduleSummary{
			Instalments: len(instalments),
			Outstanding: financing.Outstanding(instalments),
		},
	}
	for i, inst := range instalments {
		resp.Instalments[i] = InstalmentResponse{
			ID:      inst.ID,
			Number:  inst.Number,
			DueDate: inst.DueDate,
			Amount:  inst.Amount,
			IsPaid:  inst.IsPaid,
			PaidAt:  inst.PaidAt,
		}
		if inst.IsPaid {
			resp.Summary.PaidCount++
			continue
		}
		if resp.Summary.NextDueDate == nil || inst.DueDate.Before(*resp.Summary.NextDueDate) {
			due := inst.DueDate
			resp.Summary.NextDueDate = &due
			resp.Summary.NextDueAmount = inst.Amount
		}
	}
	return resp
}

// ==================== Simulation DTOs ====================

// SimulateRequest quotes an order against a plan without persisting anything
type SimulateRequest struct {
	ItemsTotal    int64                   `json:"items_total" binding:"gte=0"`
	Discount      int64                   `json:"discount"`
	DownPayment   int64                   `json:"down_payment"`
	Coinpay       int64                   `json:"coinpay"`
	PlanID        *uuid.UUID              `json:"plan_id"`
	PaymentMethod financing.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
	StartDate     *time.Time              `json:"start_date"`
}

// QuoteResponse is the result of a simulation
type QuoteResponse struct {
	financing.Quote
	PlanID *uuid.UUID `json:"plan_id,omitempty"`
}

// ==================== Payment DTOs ====================

// RegisterPaymentRequest represents a payment received against an order
type RegisterPaymentRequest struct {
	Amount    int64                   `json:"amount" binding:"required"`
	Method    financing.PaymentMethod `json:"method" binding:"required,payment_method"`
	Reference string                  `json:"reference" binding:"max=100"`
	PaidAt    *time.Time              `json:"paid_at"`
}

// EditPaymentRequest changes a stored payment; omitted fields are kept
type EditPaymentRequest struct {
	Amount    *int64                   `json:"amount"`
	Method    *financing.PaymentMethod `json:"method" binding:"omitempty,payment_method"`
	Reference *string                  `json:"reference" binding:"omitempty,max=100"`
	PaidAt    *time.Time               `json:"paid_at"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID         uuid.UUID               `json:"id"`
	OrderID    uuid.UUID               `json:"order_id"`
	Amount     int64                   `json:"amount"`
	Method     financing.PaymentMethod `json:"method"`
	Reference  string                  `json:"reference,omitempty"`
	PaidAt     time.Time               `json:"paid_at"`
	Allocation *financing.Allocation   `json:"allocation,omitempty"`
}

// ToPaymentResponse converts a payment to its response
func ToPaymentResponse(p *trade.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		PaidAt:    p.PaidAt(),
	}
}

// ==================== Commission DTOs ====================

// CommissionResponse is the accrual of one party on one order
type CommissionResponse struct {
	OrderID       uuid.UUID             `json:"order_id"`
	Party         trade.CommissionParty `json:"party"`
	PartnerID     uuid.UUID             `json:"partner_id"`
	CommissionPct decimal.Decimal       `json:"commission_pct"`
	financing.Accrual
	// Balance is the figure shown to users for the selected mode
	Balance int64 `json:"balance"`
}

// RecordCommissionPaymentRequest records a payout to the seller or the alliance
type RecordCommissionPaymentRequest struct {
	Party  trade.CommissionParty `json:"party" binding:"required,party"`
	Amount int64                 `json:"amount" binding:"required,gt=0"`
	Date   *time.Time            `json:"date"`
	Notes  string                `json:"notes" binding:"max=500"`
}

// CommissionPaymentResponse represents a commission payout
type CommissionPaymentResponse struct {
	ID        uuid.UUID             `json:"id"`
	OrderID   uuid.UUID             `json:"order_id"`
	Party     trade.CommissionParty `json:"party"`
	PartnerID uuid.UUID             `json:"partner_id"`
	Amount    int64                 `json:"amount"`
	Date      time.Time             `json:"date"`
	Notes     string                `json:"notes,omitempty"`
}

// ToCommissionPaymentResponse converts a commission payment to its response
func ToCommissionPaymentResponse(c *trade.CommissionPayment) CommissionPaymentResponse {
	return CommissionPaymentResponse{
		ID:        c.ID,
		OrderID:   c.OrderID,
		Party:     c.Party,
		PartnerID: c.PartnerID(),
		Amount:    c.Amount,
		Date:      c.Date,
		Notes:     c.Notes,
	}
}

// ==================== Plan DTOs ====================

// PlanResponse represents a financing plan offered to new orders
type PlanResponse struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Mode         financing.PlanMode     `json:"mode"`
	Months       int                    `json:"months"`
	InterestPct  decimal.Decimal        `json:"interest_pct"`
	InterestKind financing.InterestKind `json:"interest_kind"`
	CardFeePct   decimal.Decimal        `json:"card_fee_pct"`
}

// ToPlanResponse converts a plan to its response
func ToPlanResponse(p *financing.FinancingPlan) PlanResponse {
	return PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		Mode:         p.Mode,
		Months:       p.Months,
		InterestPct:  p.InterestPct,
		InterestKind: p.InterestKind,
		CardFeePct:   p.CardFeePct,
	}
}
