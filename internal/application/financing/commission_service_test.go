package financing

import (
	"context"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCommissionService_Accrual(t *testing.T) {
	ctx := context.Background()

	// 100000 list, 20000 down payment, 12 months at 20%:
	// principal 80000, collectable 96000
	newFinancedOrder := func(t *testing.T) *trade.Order {
		return newTestOrder(t, activePlan(t, 12, 20), 100000, 20000)
	}

	t.Run("collected mode scales payments to principal", func(t *testing.T) {
		f := newFixture(t, Options{})
		svc := f.commissionService()
		order := newFinancedOrder(t)
		seller, err := partner.NewSeller(partner.Contact{Name: "Ana"}, decimal.NewFromInt(10))
		require.NoError(t, err)
		order.AssignSeller(seller.ID)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.sellers.On("FindByID", mock.Anything, seller.ID).Return(seller, nil)
		f.payments.On("SumByOrder", mock.Anything, order.ID).Return(int64(48000), nil)
		f.commissions.On("SumByOrderAndParty", mock.Anything, order.ID, trade.CommissionPartySeller).Return(int64(2500), nil)

		resp, err := svc.Accrual(ctx, order.ID, trade.CommissionPartySeller, financing.CommissionModeCollected)
		require.NoError(t, err)

		assert.Equal(t, seller.ID, resp.PartnerID)
		assert.Equal(t, int64(60000), resp.BaseCollected)
		assert.Equal(t, int64(6000), resp.AccruedCollected)
		assert.Equal(t, int64(100000), resp.BaseExpected)
		assert.Equal(t, int64(10000), resp.AccruedExpected)
		assert.Equal(t, int64(2500), resp.Paid)
		assert.Equal(t, int64(7500), resp.BalanceExpected)
		assert.Equal(t, int64(7500), resp.Balance)
		f.assertExpectations(t)
	})

	t.Run("list based mode uses list minus discount", func(t *testing.T) {
		f := newFixture(t, Options{})
		svc := f.commissionService()
		order := newFinancedOrder(t)
		alliance, err := partner.NewAlliance(partner.Contact{Name: "Club"}, decimal.NewFromInt(5))
		require.NoError(t, err)
		order.AssignAlliance(alliance.ID)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.alliances.On("FindByID", mock.Anything, alliance.ID).Return(alliance, nil)
		f.payments.On("SumByOrder", mock.Anything, order.ID).Return(int64(0), nil)
		f.commissions.On("SumByOrderAndParty", mock.Anything, order.ID, trade.CommissionPartyAlliance).Return(int64(6000), nil)

		resp, err := svc.Accrual(ctx, order.ID, trade.CommissionPartyAlliance, financing.CommissionModeListBased)
		require.NoError(t, err)

		assert.Equal(t, int64(5000), resp.AccruedExpected)
		assert.Equal(t, int64(-1000), resp.BalanceExpected)
		assert.Equal(t, int64(0), resp.Balance)
	})

	t.Run("order without the party", func(t *testing.T) {
		f := newFixture(t, Options{})
		svc := f.commissionService()
		order := newFinancedOrder(t)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := svc.Accrual(ctx, order.ID, trade.CommissionPartySeller, financing.CommissionModeCollected)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("unknown mode", func(t *testing.T) {
		f := newFixture(t, Options{})
		svc := f.commissionService()

		_, err := svc.Accrual(ctx, uuid.New(), trade.CommissionPartySeller, financing.CommissionMode("gross"))
		assert.ErrorIs(t, err, financing.ErrUnknownCommissionMode)
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestCommissionService_RecordCommissionPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("records a payout to the linked seller", func(t *testing.T) {
		f := newFixture(t, Options{})
		svc := f.commissionService()
		order := newTestOrder(t, nil, 1000, 0)
		sellerID := uuid.New()
		order.AssignSeller(sellerID)
		date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.commissions.On("Save", mock.Anything, mock.MatchedBy(func(c *trade.CommissionPayment) bool {
			return c.SellerID != nil && *c.SellerID == sellerID && c.AllianceID == nil && c.Amount == 150
		})).Return(nil)

		resp, err := svc.RecordCommissionPayment(ctx, order.ID, RecordCommissionPaymentRequest{
			Party:  trade.CommissionPartySeller,
			Amount: 150,
			Date:   &date,
			Notes:  " first payout ",
		})
		require.NoError(t, err)
		assert.Equal(t, sellerID, resp.PartnerID)
		assert.Equal(t, date, resp.Date)
		assert.Equal(t, "first payout", resp.Notes)
		f.assertExpectations(t)
	})

	t.Run("order without alliance", func(t *testing.T) {
		f := newFixture(t, Options{})
		svc := f.commissionService()
		order := newTestOrder(t, nil, 1000, 0)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := svc.RecordCommissionPayment(ctx, order.ID, RecordCommissionPaymentRequest{
			Party:  trade.CommissionPartyAlliance,
			Amount: 150,
		})
		assert.ErrorIs(t, err, ErrNoCommissionParty)
	})
}
