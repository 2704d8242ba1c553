package financing

import (
	"time"

	"github.com/google/uuid"
)

// Instalment is one scheduled partial payment of an order's financed amount.
// Amount shrinks when a partial payment is applied; a paid instalment keeps
// the amount that settled it.
type Instalment struct {
	ID      uuid.UUID  `json:"id"`
	OrderID uuid.UUID  `json:"order_id"`
	Number  int        `json:"number"`
	DueDate time.Time  `json:"due_date"`
	Amount  int64      `json:"amount"`
	IsPaid  bool       `json:"is_paid"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

// Outstanding returns what is still owed on the instalment
func (i Instalment) Outstanding() int64 {
	if i.IsPaid {
		return 0
	}
	return i.Amount
}

// Outstanding sums the unpaid amounts of a schedule
func Outstanding(instalments []Instalment) int64 {
	var total int64
	for _, inst := range instalments {
		total += inst.Outstanding()
	}
	return total
}

// ScheduleStart truncates t to midnight in its own location
func ScheduleStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DueDate returns the due date of instalment number n (1-based).
// It is computed from start rather than chained, with time.AddDate's month
// normalization: a schedule starting on Jan 31 falls due on Mar 3 (Mar 2 in
// leap years) for the first instalment.
func DueDate(start time.Time, n int) time.Time {
	return ScheduleStart(start).AddDate(0, n, 0)
}

// GenerateSchedule splits total into months instalments due monthly after start.
// Every instalment gets floor(total/months) and the last one absorbs the
// remainder, so the amounts always sum to total. A non-positive total or
// month count yields an empty schedule.
func GenerateSchedule(total int64, months int, start time.Time) []Instalment {
	if months <= 0 || total <= 0 {
		return []Instalment{}
	}

	per := total / int64(months)
	remainder := total - per*int64(months)

	schedule := make([]Instalment, months)
	for i := range schedule {
		schedule[i] = Instalment{
			Number:  i + 1,
			DueDate: DueDate(start, i+1),
			Amount:  per,
		}
	}
	schedule[months-1].Amount += remainder
	return schedule
}

// GenerateRoundedSchedule rounds total/months half-up and then adjusts the
// last instalment (borrowing from earlier ones if it would go negative) so
// the schedule still sums to total.
//
// Deprecated: amounts differ from GenerateSchedule whenever the fractional
// part of total/months is at least one half. Use GenerateSchedule.
func GenerateRoundedSchedule(total int64, months int, start time.Time) []Instalment {
	if months <= 0 || total <= 0 {
		return []Instalment{}
	}

	per := (2*total + int64(months)) / (2 * int64(months))

	schedule := make([]Instalment, months)
	var allocated int64
	for i := range schedule {
		schedule[i] = Instalment{
			Number:  i + 1,
			DueDate: DueDate(start, i+1),
			Amount:  per,
		}
		if i < months-1 {
			allocated += per
		}
	}

	last := total - allocated
	for i := months - 2; last < 0 && i >= 0; i-- {
		take := min(schedule[i].Amount, -last)
		schedule[i].Amount -= take
		last += take
	}
	schedule[months-1].Amount = last
	return schedule
}
