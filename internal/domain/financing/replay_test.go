package financing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaySchedule(t *testing.T) {
	start := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	day := func(n int) time.Time { return start.AddDate(0, 0, n) }

	t.Run("equals sequential application from scratch", func(t *testing.T) {
		payments := []PaymentFact{
			{ID: uuid.New(), Amount: 300, PaidAt: day(5)},
			{ID: uuid.New(), Amount: 1200, PaidAt: day(40)},
		}

		res := ReplaySchedule(1000, 2, start, payments)

		expected := GenerateSchedule(1000, 2, start)
		ApplyPayment(expected, 300, day(5))
		ApplyPayment(expected, 1200, day(40))

		assert.Equal(t, expected, res.Instalments)
		assert.Equal(t, int64(500), res.Dropped)
		require.Len(t, res.Allocations, 2)
		assert.Equal(t, []int{1}, res.Allocations[0].Touched())
		assert.Equal(t, []int{1, 2}, res.Allocations[1].Touched())
	})

	t.Run("orders payments chronologically", func(t *testing.T) {
		early := PaymentFact{ID: uuid.New(), Amount: 300, PaidAt: day(1)}
		late := PaymentFact{ID: uuid.New(), Amount: 500, PaidAt: day(30)}

		forward := ReplaySchedule(1000, 2, start, []PaymentFact{early, late})
		backward := ReplaySchedule(1000, 2, start, []PaymentFact{late, early})

		assert.Equal(t, forward, backward)
		assert.Equal(t, day(30), *forward.Instalments[0].PaidAt)
	})

	t.Run("is reproducible", func(t *testing.T) {
		payments := []PaymentFact{
			{Amount: 120, PaidAt: day(3)},
			{Amount: 120, PaidAt: day(3)},
			{Amount: 999, PaidAt: day(9)},
		}
		assert.Equal(t, ReplaySchedule(5000, 7, start, payments), ReplaySchedule(5000, 7, start, payments))
	})

	t.Run("does not reorder the caller's slice", func(t *testing.T) {
		payments := []PaymentFact{
			{Amount: 1, PaidAt: day(9)},
			{Amount: 2, PaidAt: day(1)},
		}
		ReplaySchedule(100, 1, start, payments)
		assert.Equal(t, int64(1), payments[0].Amount)
	})

	t.Run("zero months produces empty schedule", func(t *testing.T) {
		res := ReplaySchedule(1000, 0, start, []PaymentFact{{Amount: 100, PaidAt: day(1)}})

		assert.Empty(t, res.Instalments)
		assert.Equal(t, int64(100), res.Dropped)
	})

	t.Run("strict policy with zero months produces empty schedule", func(t *testing.T) {
		res, err := Allocator{Policy: RejectInvalid}.Replay(96000, 0, start, []PaymentFact{{Amount: 100, PaidAt: day(1)}})

		require.NoError(t, err)
		assert.Empty(t, res.Instalments)
		assert.Equal(t, int64(100), res.Dropped)
	})

	t.Run("strict policy surfaces overpayment in history", func(t *testing.T) {
		_, err := Allocator{Policy: RejectInvalid}.Replay(1000, 2, start, []PaymentFact{{Amount: 1200, PaidAt: day(1)}})
		assert.ErrorIs(t, err, ErrOverpayment)
	})
}
