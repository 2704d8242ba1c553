package trade

import (
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderItem represents a merchandise line of an order. Amounts are in minor units.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice int64
	Subtotal  int64 // UnitPrice * Quantity
}

// NewOrderItem creates a new order item
func NewOrderItem(productID uuid.UUID, quantity, unitPrice int64) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderItem{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice * quantity,
	}, nil
}

// OrderTerms are the order inputs that affect financing
type OrderTerms struct {
	Discount    int64
	DownPayment int64
	Coinpay     int64
	// Plan is the snapshot of the financing plan; nil means a cash order
	Plan *financing.PlanTerms
}

// Order is the aggregate root for a financed retail order.
//
// TotalToFinance is the amount amortized by the instalment schedule
// (principal plus interest). TotalFinal additionally includes the
// prepayments, so TotalFinal >= DownPayment + Coinpay always holds.
// The schedule therefore excludes the down payment and coinpay, which are
// settled at checkout.
type Order struct {
	shared.BaseAggregateRoot
	ClientID   uuid.UUID
	SellerID   *uuid.UUID
	AllianceID *uuid.UUID
	Items      []OrderItem

	TotalList   int64
	Discount    int64
	DownPayment int64
	Coinpay     int64
	Plan        *financing.PlanTerms

	BaseFinance    int64
	Interest       int64
	TotalToFinance int64
	TotalFinal     int64
}

// NewOrder creates an order and computes its totals under the given clamping policy
func NewOrder(clientID uuid.UUID, items []OrderItem, terms OrderTerms, policy financing.ClampingPolicy) (*Order, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must have at least one item")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		Items:             make([]OrderItem, len(items)),
	}
	copy(order.Items, items)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.TotalList += order.Items[i].Subtotal
	}

	if err := order.applyTerms(terms, policy); err != nil {
		return nil, err
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))
	return order, nil
}

// ChangeTerms re-prices the order with new prepayments and plan snapshot.
// The instalment schedule must be replayed afterwards.
func (o *Order) ChangeTerms(terms OrderTerms, policy financing.ClampingPolicy) error {
	previousFinal := o.TotalFinal
	if err := o.applyTerms(terms, policy); err != nil {
		return err
	}

	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderTermsChangedEvent(o, previousFinal))
	return nil
}

func (o *Order) applyTerms(terms OrderTerms, policy financing.ClampingPolicy) error {
	totals, err := financing.Calculator{Policy: policy}.Totals(financing.TotalsInput{
		ItemsTotal:  o.TotalList,
		Discount:    terms.Discount,
		DownPayment: terms.DownPayment,
		Coinpay:     terms.Coinpay,
	}, terms.Plan)
	if err != nil {
		return err
	}

	o.Discount = max(terms.Discount, 0)
	o.DownPayment = max(terms.DownPayment, 0)
	o.Coinpay = max(terms.Coinpay, 0)
	o.Plan = terms.Plan
	o.BaseFinance = totals.BaseFinance
	o.Interest = totals.Interest
	o.TotalToFinance = totals.ToFinance
	o.TotalFinal = totals.Final
	return nil
}

// AssignSeller links the order to the seller who made the sale
func (o *Order) AssignSeller(sellerID uuid.UUID) {
	o.SellerID = &sellerID
	o.Touch()
}

// AssignAlliance links the order to the referring alliance
func (o *Order) AssignAlliance(allianceID uuid.UUID) {
	o.AllianceID = &allianceID
	o.Touch()
}

// Terms returns the current financing inputs of the order
func (o *Order) Terms() OrderTerms {
	return OrderTerms{
		Discount:    o.Discount,
		DownPayment: o.DownPayment,
		Coinpay:     o.Coinpay,
		Plan:        o.Plan,
	}
}

// PlanID returns the referenced plan, or nil for cash orders
func (o *Order) PlanID() *uuid.UUID {
	if o.Plan == nil {
		return nil
	}
	id := o.Plan.PlanID
	return &id
}

// Months is the snapshotted term length
func (o *Order) Months() int {
	if o.Plan == nil {
		return 0
	}
	return o.Plan.Months
}

// InstalmentTotal is the amount the schedule amortizes: TotalToFinance,
// not TotalFinal, since prepayments never become instalments.
func (o *Order) InstalmentTotal() int64 {
	return o.TotalToFinance
}

// ScheduleStart is the date instalment due dates are counted from
func (o *Order) ScheduleStart() time.Time {
	return financing.ScheduleStart(o.CreatedAt)
}

// Schedule generates the order's pristine schedule, stamped with the order ID
func (o *Order) Schedule() []financing.Instalment {
	return o.stamp(financing.GenerateSchedule(o.InstalmentTotal(), o.Months(), o.ScheduleStart()))
}

// Replay regenerates the schedule and reapplies payments in chronological order.
// months overrides the snapshot; callers pass 0 when the plan is gone.
func (o *Order) Replay(months int, payments []Payment, policy financing.ClampingPolicy) (financing.ReplayResult, error) {
	facts := make([]financing.PaymentFact, len(payments))
	for i := range payments {
		facts[i] = payments[i].Fact()
	}

	res, err := financing.Allocator{Policy: policy}.Replay(o.InstalmentTotal(), months, o.ScheduleStart(), facts)
	if err != nil {
		return financing.ReplayResult{}, err
	}
	o.stamp(res.Instalments)
	return res, nil
}

func (o *Order) stamp(instalments []financing.Instalment) []financing.Instalment {
	for i := range instalments {
		instalments[i].OrderID = o.ID
	}
	return instalments
}

// CommissionBasis maps the order onto the commission calculator inputs.
// The interest-exclusive principal is BaseFinance and the amount collected
// through payments is TotalToFinance, so the collected ratio is the
// principal share of each instalment payment.
func (o *Order) CommissionBasis(paymentsReceived, commissionPaid int64) financing.CommissionBasis {
	return financing.CommissionBasis{
		TotalList:        o.TotalList,
		Discount:         o.Discount,
		DownPayment:      o.DownPayment,
		Coinpay:          o.Coinpay,
		TotalToFinance:   o.BaseFinance,
		TotalFinal:       o.TotalToFinance,
		PaymentsReceived: paymentsReceived,
		CommissionPaid:   commissionPaid,
	}
}
