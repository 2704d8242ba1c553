package financing

import (
	"context"
	"errors"
	"runtime/pprof"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T, order *trade.Order, amount int64, paidAt time.Time) trade.Payment {
	t.Helper()
	p, err := trade.NewPayment(order.ID, amount, financing.PaymentMethodCash, "", paidAt)
	require.NoError(t, err)
	return *p
}

func TestScheduleReplayer_ReapplyAllPayments(t *testing.T) {
	ctx := context.Background()

	t.Run("reapplies payments in date order and replaces the schedule", func(t *testing.T) {
		f := newFixture(t, Options{})
		plan := activePlan(t, 3, 0)
		order := newTestOrder(t, plan, 1000, 0)
		day := order.CreatedAt

		// stored out of date order; the replay sorts them
		payments := []trade.Payment{
			newTestPayment(t, order, 400, day.Add(48*time.Hour)),
			newTestPayment(t, order, 333, day.Add(24*time.Hour)),
		}

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.plans.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
		f.payments.On("FindByOrder", mock.Anything, order.ID).Return(payments, nil)
		var replaced []financing.Instalment
		f.instalments.On("ReplaceForOrder", mock.Anything, order.ID, mock.Anything).
			Run(func(args mock.Arguments) {
				replaced = args.Get(2).([]financing.Instalment)
				assert.True(t, f.locker.isHeld(OrderLockKey(order.ID)))
				trigger, _ := pprof.Label(args.Get(0).(context.Context), telemetry.ProfilingLabelTrigger)
				assert.Equal(t, TriggerResync, trigger)
			}).
			Return(nil)

		resp, err := f.replayer.ReapplyAllPayments(ctx, order.ID)
		require.NoError(t, err)

		assert.Equal(t, []int64{333, 333, 267}, amounts(replaced))
		assert.True(t, replaced[0].IsPaid)
		assert.True(t, replaced[1].IsPaid)
		assert.False(t, replaced[2].IsPaid)
		for _, inst := range replaced {
			assert.Equal(t, order.ID, inst.OrderID)
		}

		assert.Equal(t, 2, resp.Summary.PaidCount)
		assert.Equal(t, int64(267), resp.Summary.Outstanding)
		assert.Equal(t, int64(267), resp.Summary.NextDueAmount)
		assert.False(t, f.locker.isHeld(OrderLockKey(order.ID)))
		f.assertExpectations(t)
	})

	t.Run("inactive plan yields an empty schedule", func(t *testing.T) {
		f := newFixture(t, Options{})
		plan := activePlan(t, 3, 0)
		order := newTestOrder(t, plan, 1000, 0)
		plan.Deactivate()

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.plans.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
		f.payments.On("FindByOrder", mock.Anything, order.ID).Return([]trade.Payment{}, nil)
		f.instalments.On("ReplaceForOrder", mock.Anything, order.ID, []financing.Instalment{}).Return(nil)

		resp, err := f.replayer.ReapplyAllPayments(ctx, order.ID)
		require.NoError(t, err)
		assert.Empty(t, resp.Instalments)
		f.assertExpectations(t)
	})

	t.Run("missing plan yields an empty schedule", func(t *testing.T) {
		f := newFixture(t, Options{})
		plan := activePlan(t, 3, 0)
		order := newTestOrder(t, plan, 1000, 0)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.plans.On("FindByID", mock.Anything, plan.ID).Return(nil, shared.ErrNotFound)
		f.payments.On("FindByOrder", mock.Anything, order.ID).Return([]trade.Payment{newTestPayment(t, order, 100, order.CreatedAt)}, nil)
		f.instalments.On("ReplaceForOrder", mock.Anything, order.ID, []financing.Instalment{}).Return(nil)

		resp, err := f.replayer.ReapplyAllPayments(ctx, order.ID)
		require.NoError(t, err)
		assert.Empty(t, resp.Instalments)
		assert.Equal(t, int64(100), resp.Dropped)
		f.assertExpectations(t)
	})

	t.Run("inactive plan yields an empty schedule under strict policy", func(t *testing.T) {
		f := newFixture(t, Options{Policy: financing.RejectInvalid})
		plan := activePlan(t, 3, 0)
		order := newTestOrder(t, plan, 1000, 0)
		plan.Deactivate()

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.plans.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
		f.payments.On("FindByOrder", mock.Anything, order.ID).Return([]trade.Payment{newTestPayment(t, order, 400, order.CreatedAt)}, nil)
		f.instalments.On("ReplaceForOrder", mock.Anything, order.ID, []financing.Instalment{}).Return(nil)

		resp, err := f.replayer.ReapplyAllPayments(ctx, order.ID)
		require.NoError(t, err)
		assert.Empty(t, resp.Instalments)
		assert.Equal(t, int64(400), resp.Dropped)
		f.assertExpectations(t)
	})

	t.Run("lock failure stops before loading anything", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := newTestOrder(t, nil, 1000, 0)
		f.locker.err = shared.ErrLockTimeout

		_, err := f.replayer.ReapplyAllPayments(ctx, order.ID)
		assert.ErrorIs(t, err, shared.ErrLockTimeout)
		f.assertExpectations(t)
	})

	t.Run("strict policy surfaces overpayment", func(t *testing.T) {
		f := newFixture(t, Options{Policy: financing.RejectInvalid})
		plan := activePlan(t, 2, 0)
		order := newTestOrder(t, plan, 1000, 0)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.plans.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
		f.payments.On("FindByOrder", mock.Anything, order.ID).Return([]trade.Payment{newTestPayment(t, order, 1500, order.CreatedAt)}, nil)

		_, err := f.replayer.ReapplyAllPayments(ctx, order.ID)
		assert.ErrorIs(t, err, financing.ErrOverpayment)
		f.instalments.AssertNotCalled(t, "ReplaceForOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persistence failure is wrapped", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := newTestOrder(t, nil, 1000, 0)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.payments.On("FindByOrder", mock.Anything, order.ID).Return([]trade.Payment{}, nil)
		f.instalments.On("ReplaceForOrder", mock.Anything, order.ID, mock.Anything).Return(errors.New("db down"))

		_, err := f.replayer.ReapplyAllPayments(ctx, order.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to replace instalments")
	})
}

func TestReplayOnPaymentChange(t *testing.T) {
	ctx := context.Background()

	t.Run("subscribes to payment edits and deletes", func(t *testing.T) {
		h := NewReplayOnPaymentChange(nil, nil)
		assert.ElementsMatch(t, []string{trade.EventTypePaymentEdited, trade.EventTypePaymentDeleted}, h.EventTypes())
	})

	t.Run("replays the order of the changed payment", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := newTestOrder(t, nil, 1000, 0)
		payment := newTestPayment(t, order, 100, order.CreatedAt)

		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.payments.On("FindByOrder", mock.Anything, order.ID).Return([]trade.Payment{}, nil)
		f.instalments.On("ReplaceForOrder", mock.Anything, order.ID, mock.Anything).Return(nil)

		h := NewReplayOnPaymentChange(f.replayer, f.replayer.logger)
		require.NoError(t, h.Handle(ctx, trade.NewPaymentEvent(trade.EventTypePaymentDeleted, &payment)))
		assert.Equal(t, []string{OrderLockKey(order.ID)}, f.locker.acquired)
		f.assertExpectations(t)
	})

	t.Run("rejects other events", func(t *testing.T) {
		f := newFixture(t, Options{})
		order := newTestOrder(t, nil, 1000, 0)

		h := NewReplayOnPaymentChange(f.replayer, f.replayer.logger)
		err := h.Handle(ctx, trade.NewOrderCreatedEvent(order))
		assert.Error(t, err)
	})
}
