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
	"github.com/shopspring/decimal"
)

// ErrNoCommissionParty is returned when the order is not linked to the requested party
var ErrNoCommissionParty = shared.ErrInvalidState.WithMessage("Order has no partner for the requested commission party")

// CommissionService computes commission accruals and records payouts
type CommissionService struct {
	orderRepo      trade.OrderRepository
	paymentRepo    trade.PaymentRepository
	commissionRepo trade.CommissionPaymentRepository
	sellerRepo     partner.SellerRepository
	allianceRepo   partner.AllianceRepository
	now            func() time.Time
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(
	orderRepo trade.OrderRepository,
	paymentRepo trade.PaymentRepository,
	commissionRepo trade.CommissionPaymentRepository,
	sellerRepo partner.SellerRepository,
	allianceRepo partner.AllianceRepository,
) *CommissionService {
	return &CommissionService{
		orderRepo:      orderRepo,
		paymentRepo:    paymentRepo,
		commissionRepo: commissionRepo,
		sellerRepo:     sellerRepo,
		allianceRepo:   allianceRepo,
		now:            time.Now,
	}
}

// Accrual computes what the party has earned on the order under mode and
// what remains owed after payouts
func (s *CommissionService) Accrual(ctx context.Context, orderID uuid.UUID, party trade.CommissionParty, mode financing.CommissionMode) (*CommissionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commission", "accrual",
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrParty, string(party),
		telemetry.SpanAttrCommissionMode, string(mode),
	)
	defer span.End()

	if !mode.IsValid() {
		return nil, financing.ErrUnknownCommissionMode
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	partnerID, pct, err := s.partnerRate(ctx, order, party)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	received, err := s.paymentRepo.SumByOrder(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	paid, err := s.commissionRepo.SumByOrderAndParty(ctx, orderID, party)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum commission payments: %w", err)
	}

	accrual, err := financing.ComputeCommission(order.CommissionBasis(received, paid), pct, mode)
	if err != nil {
		return nil, err
	}

	return &CommissionResponse{
		OrderID:       orderID,
		Party:         party,
		PartnerID:     partnerID,
		CommissionPct: pct,
		Accrual:       accrual,
		Balance:       accrual.DisplayBalance(),
	}, nil
}

// RecordCommissionPayment records a payout to the order's seller or alliance
func (s *CommissionService) RecordCommissionPayment(ctx context.Context, orderID uuid.UUID, req RecordCommissionPaymentRequest) (*CommissionPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commission", "record_payment",
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrParty, string(req.Party),
		telemetry.SpanAttrAmount, req.Amount,
	)
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	partnerID, err := partyOf(order, req.Party)
	if err != nil {
		return nil, err
	}

	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	payout, err := trade.NewCommissionPayment(orderID, req.Party, partnerID, req.Amount, date, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.commissionRepo.Save(ctx, payout); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save commission payment: %w", err)
	}

	resp := ToCommissionPaymentResponse(payout)
	return &resp, nil
}

func (s *CommissionService) partnerRate(ctx context.Context, order *trade.Order, party trade.CommissionParty) (uuid.UUID, decimal.Decimal, error) {
	partnerID, err := partyOf(order, party)
	if err != nil {
		return uuid.Nil, decimal.Zero, err
	}

	switch party {
	case trade.CommissionPartySeller:
		seller, err := s.sellerRepo.FindByID(ctx, partnerID)
		if err != nil {
			return uuid.Nil, decimal.Zero, err
		}
		return partnerID, seller.CommissionPct, nil
	default:
		alliance, err := s.allianceRepo.FindByID(ctx, partnerID)
		if err != nil {
			return uuid.Nil, decimal.Zero, err
		}
		return partnerID, alliance.CommissionPct, nil
	}
}

// partyOf returns the partner linked to order for party
func partyOf(order *trade.Order, party trade.CommissionParty) (uuid.UUID, error) {
	switch party {
	case trade.CommissionPartySeller:
		if order.SellerID != nil {
			return *order.SellerID, nil
		}
	case trade.CommissionPartyAlliance:
		if order.AllianceID != nil {
			return *order.AllianceID, nil
		}
	default:
		return uuid.Nil, shared.ErrInvalidInput.WithMessage("Unknown commission party: " + string(party))
	}
	return uuid.Nil, ErrNoCommissionParty
}
