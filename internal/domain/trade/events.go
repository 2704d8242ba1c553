package trade

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated      = "OrderCreated"
	EventTypeOrderTermsChanged = "OrderTermsChanged"
	EventTypePaymentRegistered = "PaymentRegistered"
	EventTypePaymentEdited     = "PaymentEdited"
	EventTypePaymentDeleted    = "PaymentDeleted"
)

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	ClientID       uuid.UUID `json:"client_id"`
	TotalToFinance int64     `json:"total_to_finance"`
	TotalFinal     int64     `json:"total_final"`
	Months         int       `json:"months"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		ClientID:        order.ClientID,
		TotalToFinance:  order.TotalToFinance,
		TotalFinal:      order.TotalFinal,
		Months:          order.Months(),
	}
}

// OrderTermsChangedEvent is raised when discount, prepayments or plan change
type OrderTermsChangedEvent struct {
	shared.BaseDomainEvent
	OrderID            uuid.UUID `json:"order_id"`
	PreviousTotalFinal int64     `json:"previous_total_final"`
	TotalFinal         int64     `json:"total_final"`
	Months             int       `json:"months"`
}

// NewOrderTermsChangedEvent creates a new OrderTermsChangedEvent
func NewOrderTermsChangedEvent(order *Order, previousTotalFinal int64) *OrderTermsChangedEvent {
	return &OrderTermsChangedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeOrderTermsChanged, AggregateTypeOrder, order.ID),
		OrderID:            order.ID,
		PreviousTotalFinal: previousTotalFinal,
		TotalFinal:         order.TotalFinal,
		Months:             order.Months(),
	}
}

// PaymentEvent is raised when a payment of an order is registered, edited or deleted.
// The aggregate is the order, so handlers can key work by order.
type PaymentEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	PaymentID uuid.UUID `json:"payment_id"`
	Amount    int64     `json:"amount"`
}

// NewPaymentEvent creates a payment event of the given type
func NewPaymentEvent(eventType string, payment *Payment) *PaymentEvent {
	return &PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, payment.OrderID),
		OrderID:         payment.OrderID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
	}
}
