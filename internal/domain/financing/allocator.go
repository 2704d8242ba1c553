package financing

import (
	"cmp"
	"slices"
	"time"
)

// MutationKind describes what a payment did to an instalment
type MutationKind string

const (
	MutationMarkedPaid MutationKind = "MARKED_PAID"
	MutationReduced    MutationKind = "REDUCED"
)

// Mutation records one instalment touched by a payment
type Mutation struct {
	Number         int          `json:"number"`
	Kind           MutationKind `json:"kind"`
	PreviousAmount int64        `json:"previous_amount"`
	NewAmount      int64        `json:"new_amount"`
	PaidAt         *time.Time   `json:"paid_at,omitempty"`
}

// Allocation is the outcome of applying one payment
type Allocation struct {
	Mutations []Mutation `json:"mutations"`
	// Applied is the part of the payment consumed by the schedule
	Applied int64 `json:"applied"`
	// Dropped is the unconsumed excess; it is not carried as credit
	Dropped int64 `json:"dropped"`
}

// Touched returns the numbers of the instalments the payment changed
func (a Allocation) Touched() []int {
	numbers := make([]int, len(a.Mutations))
	for i, m := range a.Mutations {
		numbers[i] = m.Number
	}
	return numbers
}

// Allocator applies payments to schedules under a clamping policy.
// The zero value clamps silently.
type Allocator struct {
	Policy ClampingPolicy
}

// ApplyPayment applies amount to instalments with the default clamping policy.
// See Allocator.Apply.
func ApplyPayment(instalments []Instalment, amount int64, payDate time.Time) Allocation {
	alloc, _ := Allocator{}.Apply(instalments, amount, payDate)
	return alloc
}

// Apply walks the unpaid instalments in ascending Number, marking each one
// paid while the payment covers it and reducing the first one it cannot
// cover. Instalments are mutated in place. Without a schedule there is
// nothing to settle and the whole amount is dropped, under either policy.
//
// Apply is only safe on a schedule that has seen every earlier payment
// exactly once; replays must start from a freshly generated schedule.
func (a Allocator) Apply(instalments []Instalment, amount int64, payDate time.Time) (Allocation, error) {
	amount, err := a.Policy.Amount("payment amount", amount)
	if err != nil {
		return Allocation{}, err
	}
	if len(instalments) == 0 {
		return Allocation{Mutations: []Mutation{}, Dropped: amount}, nil
	}
	if a.Policy == RejectInvalid && amount > Outstanding(instalments) {
		return Allocation{}, ErrOverpayment
	}

	order := make([]int, len(instalments))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return cmp.Compare(instalments[x].Number, instalments[y].Number)
	})

	alloc := Allocation{Mutations: []Mutation{}}
	remaining := amount
	for _, idx := range order {
		if remaining <= 0 {
			break
		}
		inst := &instalments[idx]
		if inst.IsPaid {
			continue
		}

		if remaining >= inst.Amount {
			paidAt := payDate
			inst.IsPaid = true
			inst.PaidAt = &paidAt
			remaining -= inst.Amount
			alloc.Mutations = append(alloc.Mutations, Mutation{
				Number:         inst.Number,
				Kind:           MutationMarkedPaid,
				PreviousAmount: inst.Amount,
				NewAmount:      inst.Amount,
				PaidAt:         &paidAt,
			})
			continue
		}

		previous := inst.Amount
		inst.Amount -= remaining
		remaining = 0
		alloc.Mutations = append(alloc.Mutations, Mutation{
			Number:         inst.Number,
			Kind:           MutationReduced,
			PreviousAmount: previous,
			NewAmount:      inst.Amount,
		})
	}

	alloc.Applied = amount - remaining
	alloc.Dropped = remaining
	return alloc, nil
}
