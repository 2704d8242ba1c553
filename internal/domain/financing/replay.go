package financing

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// PaymentFact is the part of a stored payment the replay needs
type PaymentFact struct {
	ID     uuid.UUID
	Amount int64
	PaidAt time.Time
}

// ReplayResult is a regenerated schedule with every payment reapplied
type ReplayResult struct {
	Instalments []Instalment
	Allocations []Allocation
	Dropped     int64
}

// ReplaySchedule regenerates the schedule and reapplies payments with the
// default clamping policy. See Allocator.Replay.
func ReplaySchedule(total int64, months int, start time.Time, payments []PaymentFact) ReplayResult {
	res, _ := Allocator{}.Replay(total, months, start, payments)
	return res
}

// Replay discards any previous state, generates a fresh schedule and applies
// payments in ascending PaidAt. Payments with the same PaidAt keep their input
// order, so the result is reproducible for a given payment history.
// With an empty schedule every payment is dropped.
func (a Allocator) Replay(total int64, months int, start time.Time, payments []PaymentFact) (ReplayResult, error) {
	ordered := slices.Clone(payments)
	slices.SortStableFunc(ordered, func(x, y PaymentFact) int {
		return cmp.Compare(x.PaidAt.UnixNano(), y.PaidAt.UnixNano())
	})

	res := ReplayResult{
		Instalments: GenerateSchedule(total, months, start),
		Allocations: make([]Allocation, 0, len(ordered)),
	}
	for _, p := range ordered {
		alloc, err := a.Apply(res.Instalments, p.Amount, p.PaidAt)
		if err != nil {
			return ReplayResult{}, err
		}
		res.Allocations = append(res.Allocations, alloc)
		res.Dropped += alloc.Dropped
	}
	return res, nil
}
