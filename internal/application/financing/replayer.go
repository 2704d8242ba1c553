package financing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Replay triggers, recorded on metrics and logs
const (
	TriggerResync         = "resync"
	TriggerTermsChanged   = "terms_changed"
	TriggerPaymentEdited  = "payment_edited"
	TriggerPaymentDeleted = "payment_deleted"
)

// ScheduleReplayer rebuilds an order's instalments from its payment history.
// Every rebuild runs under the order lock and replaces the stored
// instalments in one transaction.
type ScheduleReplayer struct {
	orderRepo   trade.OrderRepository
	planRepo    financing.PlanRepository
	paymentRepo trade.PaymentRepository
	txScope     TransactionScope
	locker      OrderLocker
	policy      financing.ClampingPolicy
	metrics     *telemetry.FinancingMetrics
	logger      *zap.Logger
}

// NewScheduleReplayer creates a new ScheduleReplayer
func NewScheduleReplayer(
	orderRepo trade.OrderRepository,
	planRepo financing.PlanRepository,
	paymentRepo trade.PaymentRepository,
	txScope TransactionScope,
	locker OrderLocker,
	policy financing.ClampingPolicy,
	logger *zap.Logger,
) *ScheduleReplayer {
	return &ScheduleReplayer{
		orderRepo:   orderRepo,
		planRepo:    planRepo,
		paymentRepo: paymentRepo,
		txScope:     txScope,
		locker:      locker,
		policy:      policy,
		logger:      logger,
	}
}

// SetMetrics sets the financing metrics recorder
func (r *ScheduleReplayer) SetMetrics(metrics *telemetry.FinancingMetrics) {
	r.metrics = metrics
}

// ReapplyAllPayments regenerates the schedule of an order and reapplies all of
// its payments in chronological order
func (r *ScheduleReplayer) ReapplyAllPayments(ctx context.Context, orderID uuid.UUID) (*ScheduleResponse, error) {
	return r.reapply(ctx, orderID, TriggerResync)
}

func (r *ScheduleReplayer) reapply(ctx context.Context, orderID uuid.UUID, trigger string) (*ScheduleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "schedule", "reapply_all_payments",
		telemetry.SpanAttrOrderID, orderID.String(),
	)
	defer span.End()

	release, err := r.locker.Lock(ctx, OrderLockKey(orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	order, err := r.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	var res financing.ReplayResult
	telemetry.WithProfilingLabels(ctx, telemetry.FinancingLabels("replay", trigger), func(ctx context.Context) {
		res, err = r.rebuild(ctx, order)
		if err != nil {
			return
		}
		err = r.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			return repos.InstalmentRepo().ReplaceForOrder(ctx, order.ID, res.Instalments)
		})
		if err != nil {
			err = fmt.Errorf("failed to replace instalments: %w", err)
		}
	})
	r.observe(ctx, order.ID, trigger, res, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInstalments, len(res.Instalments),
		telemetry.SpanAttrDropped, res.Dropped,
	)
	resp := ToScheduleResponse(order.ID, res.Instalments)
	resp.Dropped = res.Dropped
	return &resp, nil
}

// rebuild computes a fresh schedule for order with every stored payment applied.
// The caller must hold the order lock.
func (r *ScheduleReplayer) rebuild(ctx context.Context, order *trade.Order) (financing.ReplayResult, error) {
	months, err := r.effectiveMonths(ctx, order)
	if err != nil {
		return financing.ReplayResult{}, err
	}

	payments, err := r.paymentRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		return financing.ReplayResult{}, fmt.Errorf("failed to load payments: %w", err)
	}

	return order.Replay(months, payments, r.policy)
}

// effectiveMonths is the snapshotted term, or 0 when the plan was removed or
// deactivated, in which case the replay yields an empty schedule
func (r *ScheduleReplayer) effectiveMonths(ctx context.Context, order *trade.Order) (int, error) {
	if order.Plan == nil {
		return 0, nil
	}
	plan, err := r.planRepo.FindByID(ctx, order.Plan.PlanID)
	if errors.Is(err, shared.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load financing plan: %w", err)
	}
	if !plan.IsActive {
		return 0, nil
	}
	return order.Months(), nil
}

func (r *ScheduleReplayer) observe(ctx context.Context, orderID uuid.UUID, trigger string, res financing.ReplayResult, elapsed time.Duration, err error) {
	r.metrics.RecordReplay(ctx, trigger, elapsed, err)
	if err != nil {
		r.logger.Error("schedule replay failed",
			zap.String("order_id", orderID.String()),
			zap.String("trigger", trigger),
			zap.Error(err),
		)
		return
	}

	r.logger.Info("schedule replayed",
		zap.String("order_id", orderID.String()),
		zap.String("trigger", trigger),
		zap.Int("instalments", len(res.Instalments)),
		zap.Int("payments", len(res.Allocations)),
		zap.Int64("outstanding", financing.Outstanding(res.Instalments)),
		zap.Duration("elapsed", elapsed),
	)
	if res.Dropped > 0 && len(res.Instalments) > 0 {
		r.metrics.RecordDropped(ctx, res.Dropped)
		r.logger.Warn("payments exceed schedule, excess dropped",
			zap.String("order_id", orderID.String()),
			zap.Int64("dropped", res.Dropped),
		)
	}
}
