package financing

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"go.uber.org/zap"
)

// ReplayOnPaymentChange rebuilds an order's schedule after one of its
// payments was edited or deleted
type ReplayOnPaymentChange struct {
	replayer *ScheduleReplayer
	logger   *zap.Logger
}

// NewReplayOnPaymentChange creates a new ReplayOnPaymentChange handler
func NewReplayOnPaymentChange(replayer *ScheduleReplayer, logger *zap.Logger) *ReplayOnPaymentChange {
	return &ReplayOnPaymentChange{
		replayer: replayer,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReplayOnPaymentChange) EventTypes() []string {
	return []string{trade.EventTypePaymentEdited, trade.EventTypePaymentDeleted}
}

// Handle replays the schedule of the order the payment belongs to
func (h *ReplayOnPaymentChange) Handle(ctx context.Context, event shared.DomainEvent) error {
	paymentEvent, ok := event.(*trade.PaymentEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	trigger := TriggerPaymentEdited
	if event.EventType() == trade.EventTypePaymentDeleted {
		trigger = TriggerPaymentDeleted
	}

	h.logger.Debug("replaying schedule after payment change",
		zap.String("order_id", paymentEvent.OrderID.String()),
		zap.String("payment_id", paymentEvent.PaymentID.String()),
		zap.String("trigger", trigger),
	)

	if _, err := h.replayer.reapply(ctx, paymentEvent.OrderID, trigger); err != nil {
		return fmt.Errorf("failed to replay schedule for order %s: %w", paymentEvent.OrderID, err)
	}
	return nil
}

// Ensure ReplayOnPaymentChange implements EventHandler
var _ shared.EventHandler = (*ReplayOnPaymentChange)(nil)
