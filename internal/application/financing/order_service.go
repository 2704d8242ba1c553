package financing

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderFinancingService handles the financing lifecycle of orders
type OrderFinancingService struct {
	orderRepo      trade.OrderRepository
	planRepo       financing.PlanRepository
	instalmentRepo financing.InstalmentRepository
	sellerRepo     partner.SellerRepository
	allianceRepo   partner.AllianceRepository
	txScope        TransactionScope
	locker         OrderLocker
	replayer       *ScheduleReplayer
	eventPublisher shared.EventPublisher
	policy         financing.ClampingPolicy
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderFinancingService creates a new OrderFinancingService
func NewOrderFinancingService(
	orderRepo trade.OrderRepository,
	planRepo financing.PlanRepository,
	instalmentRepo financing.InstalmentRepository,
	sellerRepo partner.SellerRepository,
	allianceRepo partner.AllianceRepository,
	txScope TransactionScope,
	locker OrderLocker,
	replayer *ScheduleReplayer,
	opts Options,
	logger *zap.Logger,
) *OrderFinancingService {
	return &OrderFinancingService{
		orderRepo:      orderRepo,
		planRepo:       planRepo,
		instalmentRepo: instalmentRepo,
		sellerRepo:     sellerRepo,
		allianceRepo:   allianceRepo,
		txScope:        txScope,
		locker:         locker,
		replayer:       replayer,
		policy:         opts.Policy,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderFinancingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateOrder prices a new order, snapshots its plan and stores it together
// with its initial schedule
func (s *OrderFinancingService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_financing", "create_order")
	defer span.End()

	terms, err := s.resolveTerms(ctx, req.PlanID, req.Discount, req.DownPayment, req.Coinpay)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	items := make([]trade.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		item, err := trade.NewOrderItem(in.ProductID, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	order, err := trade.NewOrder(req.ClientID, items, terms, s.policy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.SellerID != nil {
		if _, err := s.sellerRepo.FindByID(ctx, *req.SellerID); err != nil {
			return nil, fmt.Errorf("failed to load seller: %w", err)
		}
		order.AssignSeller(*req.SellerID)
	}
	if req.AllianceID != nil {
		if _, err := s.allianceRepo.FindByID(ctx, *req.AllianceID); err != nil {
			return nil, fmt.Errorf("failed to load alliance: %w", err)
		}
		order.AssignAlliance(*req.AllianceID)
	}

	schedule := order.Schedule()
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		return repos.InstalmentRepo().ReplaceForOrder(ctx, order.ID, schedule)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID.String(),
		telemetry.SpanAttrMonths, order.Months(),
		telemetry.SpanAttrAmount, order.TotalFinal,
	)
	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.Int64("total_to_finance", order.TotalToFinance),
		zap.Int("months", order.Months()),
	)
	s.publish(ctx, order)

	resp := ToOrderResponse(order)
	sched := ToScheduleResponse(order.ID, schedule)
	resp.Schedule = &sched
	return &resp, nil
}

// ChangeTerms re-prices an order with new prepayments or a new plan and
// replays its schedule in the same transaction
func (s *OrderFinancingService) ChangeTerms(ctx context.Context, orderID uuid.UUID, req ChangeTermsRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_financing", "change_terms",
		telemetry.SpanAttrOrderID, orderID.String(),
	)
	defer span.End()

	release, err := s.locker.Lock(ctx, OrderLockKey(orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Version > 0 && req.Version != order.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	terms, err := s.resolveTerms(ctx, req.PlanID, req.Discount, req.DownPayment, req.Coinpay)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := order.ChangeTerms(terms, s.policy); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	res, err := s.replayer.rebuild(ctx, order)
	if err == nil {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
				return err
			}
			return repos.InstalmentRepo().ReplaceForOrder(ctx, order.ID, res.Instalments)
		})
	}
	s.replayer.observe(ctx, order.ID, TriggerTermsChanged, res, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, order)

	resp := ToOrderResponse(order)
	sched := ToScheduleResponse(order.ID, res.Instalments)
	sched.Dropped = res.Dropped
	resp.Schedule = &sched
	return &resp, nil
}

// GetSchedule returns the stored instalments of an order with a summary
func (s *OrderFinancingService) GetSchedule(ctx context.Context, orderID uuid.UUID) (*ScheduleResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	instalments, err := s.instalmentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instalments: %w", err)
	}
	resp := ToScheduleResponse(orderID, instalments)
	return &resp, nil
}

// Simulate quotes an order against a plan without persisting anything.
// Inactive plans can still be simulated.
func (s *OrderFinancingService) Simulate(ctx context.Context, req SimulateRequest) (*QuoteResponse, error) {
	var plan *financing.FinancingPlan
	if req.PlanID != nil {
		p, err := s.planRepo.FindByID(ctx, *req.PlanID)
		if err != nil {
			return nil, err
		}
		plan = p
	}

	start := s.now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	method := req.PaymentMethod
	if method == "" {
		method = financing.PaymentMethodCash
	}

	quote, err := financing.Calculator{Policy: s.policy}.Simulate(financing.TotalsInput{
		ItemsTotal:  req.ItemsTotal,
		Discount:    req.Discount,
		DownPayment: req.DownPayment,
		Coinpay:     req.Coinpay,
	}, plan, method, start)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{Quote: quote, PlanID: req.PlanID}, nil
}

// ListPlans returns the active plans, optionally restricted to one mode
func (s *OrderFinancingService) ListPlans(ctx context.Context, mode financing.PlanMode) ([]PlanResponse, error) {
	plans, err := s.planRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	resp := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		if mode != "" && plans[i].Mode != mode {
			continue
		}
		resp = append(resp, ToPlanResponse(&plans[i]))
	}
	return resp, nil
}

// Resync replays the schedule of an order from its stored payments
func (s *OrderFinancingService) Resync(ctx context.Context, orderID uuid.UUID) (*ScheduleResponse, error) {
	return s.replayer.ReapplyAllPayments(ctx, orderID)
}

// resolveTerms snapshots the referenced plan; a nil planID means cash
func (s *OrderFinancingService) resolveTerms(ctx context.Context, planID *uuid.UUID, discount, downPayment, coinpay int64) (trade.OrderTerms, error) {
	terms := trade.OrderTerms{
		Discount:    discount,
		DownPayment: downPayment,
		Coinpay:     coinpay,
	}
	if planID == nil {
		return terms, nil
	}

	plan, err := s.planRepo.FindByID(ctx, *planID)
	if err != nil {
		return terms, err
	}
	if !plan.IsActive {
		return terms, financing.ErrPlanInactive
	}
	terms.Plan = plan.Terms()
	return terms, nil
}

func (s *OrderFinancingService) publish(ctx context.Context, order *trade.Order) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
