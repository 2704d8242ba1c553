package financing

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService registers, edits and deletes payments received against orders
type PaymentService struct {
	orderRepo         trade.OrderRepository
	paymentRepo       trade.PaymentRepository
	instalmentRepo    financing.InstalmentRepository
	txScope           TransactionScope
	locker            OrderLocker
	eventPublisher    shared.EventPublisher
	metrics           *telemetry.FinancingMetrics
	policy            financing.ClampingPolicy
	rejectOverpayment bool
	logger            *zap.Logger
	now               func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	orderRepo trade.OrderRepository,
	paymentRepo trade.PaymentRepository,
	instalmentRepo financing.InstalmentRepository,
	txScope TransactionScope,
	locker OrderLocker,
	opts Options,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orderRepo:         orderRepo,
		paymentRepo:       paymentRepo,
		instalmentRepo:    instalmentRepo,
		txScope:           txScope,
		locker:            locker,
		policy:            opts.Policy,
		rejectOverpayment: opts.RejectOverpayment,
		logger:            logger,
		now:               time.Now,
	}
}

// SetEventPublisher sets the event publisher. Edits and deletes rely on a
// subscriber to replay the schedule.
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the financing metrics recorder
func (s *PaymentService) SetMetrics(metrics *telemetry.FinancingMetrics) {
	s.metrics = metrics
}

// RegisterPayment records a payment and applies it to the current schedule.
// It does not replay earlier payments.
func (s *PaymentService) RegisterPayment(ctx context.Context, orderID uuid.UUID, req RegisterPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "register",
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrAmount, req.Amount,
	)
	defer span.End()

	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	payment, err := trade.NewPayment(orderID, req.Amount, req.Method, req.Reference, paidAt)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, OrderLockKey(orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	instalments, err := s.instalmentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load instalments: %w", err)
	}

	financed := len(instalments) > 0
	if financed && s.rejectOverpayment && payment.Amount > financing.Outstanding(instalments) {
		return nil, financing.ErrPaymentExceedsBalance
	}

	var (
		alloc   financing.Allocation
		touched []financing.Instalment
	)
	telemetry.WithProfilingLabels(ctx, telemetry.FinancingLabels("register_payment", ""), func(ctx context.Context) {
		alloc, err = financing.Allocator{Policy: s.policy}.Apply(instalments, payment.Amount, payment.PaidAt())
		if err != nil {
			return
		}
		touched = changedInstalments(instalments, alloc)
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
			if len(touched) == 0 {
				return nil
			}
			return repos.InstalmentRepo().SaveAll(ctx, touched)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordPayment(ctx, string(payment.Method), payment.Amount)
	if financed && alloc.Dropped > 0 {
		s.metrics.RecordDropped(ctx, alloc.Dropped)
		s.logger.Warn("payment exceeds outstanding balance, excess dropped",
			zap.String("order_id", orderID.String()),
			zap.String("payment_id", payment.ID.String()),
			zap.Int64("dropped", alloc.Dropped),
		)
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrInstalments, len(touched),
		telemetry.SpanAttrDropped, alloc.Dropped,
	)

	s.publish(ctx, trade.NewPaymentEvent(trade.EventTypePaymentRegistered, payment))

	resp := ToPaymentResponse(payment)
	resp.Allocation = &alloc
	return &resp, nil
}

// EditPayment changes a stored payment. The schedule is rebuilt by the
// PaymentEdited subscriber after the write commits.
func (s *PaymentService) EditPayment(ctx context.Context, paymentID uuid.UUID, req EditPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "edit",
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)
	defer span.End()

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := payment.Edit(trade.PaymentChanges{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		PaidAt:    req.PaidAt,
	}); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.publish(ctx, trade.NewPaymentEvent(trade.EventTypePaymentEdited, payment))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// DeletePayment removes a payment. The schedule is rebuilt by the
// PaymentDeleted subscriber after the delete commits.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete",
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)
	defer span.End()

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.paymentRepo.Delete(ctx, paymentID); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.publish(ctx, trade.NewPaymentEvent(trade.EventTypePaymentDeleted, payment))
	return nil
}

func (s *PaymentService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

// changedInstalments returns copies of the instalments alloc touched
func changedInstalments(instalments []financing.Instalment, alloc financing.Allocation) []financing.Instalment {
	numbers := make(map[int]struct{}, len(alloc.Mutations))
	for _, n := range alloc.Touched() {
		numbers[n] = struct{}{}
	}
	touched := make([]financing.Instalment, 0, len(numbers))
	for _, inst := range instalments {
		if _, ok := numbers[inst.Number]; ok {
			touched = append(touched, inst)
		}
	}
	return touched
}
