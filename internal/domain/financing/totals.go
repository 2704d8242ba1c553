package financing

import (
	"time"

	"github.com/shopspring/decimal"
)

// TotalsInput holds the order amounts, in minor units, that feed the totals
type TotalsInput struct {
	ItemsTotal  int64
	Discount    int64
	DownPayment int64
	Coinpay     int64
}

// Totals is the result of ComputeTotals.
//
//	BaseFinance = max(ItemsTotal - Discount - DownPayment - Coinpay, 0)
//	ToFinance   = BaseFinance + Interest
//	Final       = DownPayment + Coinpay + ToFinance
type Totals struct {
	BaseFinance int64 `json:"base_finance"`
	Interest    int64 `json:"interest"`
	ToFinance   int64 `json:"to_finance"`
	Final       int64 `json:"final"`
}

// Calculator computes order totals under a clamping policy.
// The zero value clamps silently.
type Calculator struct {
	Policy ClampingPolicy
}

// ComputeTotals computes totals with the default clamping policy; it never fails.
// A nil plan means no interest.
func ComputeTotals(in TotalsInput, plan *PlanTerms) Totals {
	t, _ := Calculator{}.Totals(in, plan)
	return t
}

// Totals computes baseFinance, nominal interest (applied once over the full term), toFinance and final
func (c Calculator) Totals(in TotalsInput, plan *PlanTerms) (Totals, error) {
	in, err := c.normalize(in)
	if err != nil {
		return Totals{}, err
	}

	base := max(in.ItemsTotal-in.Discount-(in.DownPayment+in.Coinpay), 0)

	var interest int64
	if plan != nil {
		pct, err := c.Policy.Percent("interest_pct", plan.InterestPct)
		if err != nil {
			return Totals{}, err
		}
		interest = ApplyPercent(base, pct)
	}

	return Totals{
		BaseFinance: base,
		Interest:    interest,
		ToFinance:   base + interest,
		Final:       in.DownPayment + in.Coinpay + base + interest,
	}, nil
}

func (c Calculator) normalize(in TotalsInput) (TotalsInput, error) {
	var err error
	if in.ItemsTotal, err = c.Policy.Amount("items_total", in.ItemsTotal); err != nil {
		return in, err
	}
	if in.Discount, err = c.Policy.Amount("discount", in.Discount); err != nil {
		return in, err
	}
	if in.DownPayment, err = c.Policy.Amount("down_payment", in.DownPayment); err != nil {
		return in, err
	}
	if in.Coinpay, err = c.Policy.Amount("coinpay", in.Coinpay); err != nil {
		return in, err
	}
	return in, nil
}

// Quote is a plan-driven simulation of an order's financing
type Quote struct {
	Totals
	CardFee              int64         `json:"card_fee"`
	Months               int           `json:"months"`
	InterestKind         InterestKind  `json:"interest_kind"`
	InstalmentAmount     int64         `json:"instalment_amount"`
	LastInstalmentAmount int64         `json:"last_instalment_amount"`
	Schedule             []Instalment  `json:"schedule"`
	Mode                 PlanMode      `json:"mode"`
	PaymentMethod        PaymentMethod `json:"payment_method"`
}

// SimulatePlan quotes an order against a plan with the default clamping policy
func SimulatePlan(in TotalsInput, plan *FinancingPlan, method PaymentMethod, start time.Time) Quote {
	q, _ := Calculator{}.Simulate(in, plan, method, start)
	return q
}

// Simulate is the richer calculator used for quotes. Unlike Totals it
// honours the plan's InterestKind, treating InterestPct as a monthly rate:
//
//	SIMPLE:   base × (1 + r × months)
//	COMPOUND: base × (1 + r)^months
//
// A card fee inflates the base before interest when the plan is a card plan
// or the payment method is card-based.
func (c Calculator) Simulate(in TotalsInput, plan *FinancingPlan, method PaymentMethod, start time.Time) (Quote, error) {
	in, err := c.normalize(in)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{PaymentMethod: method, InterestKind: InterestNone, Mode: PlanModeCash}
	base := max(in.ItemsTotal-in.Discount-(in.DownPayment+in.Coinpay), 0)

	var interest int64
	if plan != nil {
		q.Months = plan.Months
		q.InterestKind = plan.InterestKind
		q.Mode = plan.Mode

		if plan.Mode == PlanModeCard || method.IsCardBased() {
			fee, err := c.Policy.Percent("card_fee_pct", plan.CardFeePct)
			if err != nil {
				return Quote{}, err
			}
			q.CardFee = ApplyPercent(base, fee)
			base += q.CardFee
		}

		rate, err := c.Policy.Percent("interest_pct", plan.InterestPct)
		if err != nil {
			return Quote{}, err
		}
		interest = periodicInterest(base, rate.Shift(-2), plan.Months, plan.InterestKind)
	}

	q.Totals = Totals{
		BaseFinance: base,
		Interest:    interest,
		ToFinance:   base + interest,
		Final:       in.DownPayment + in.Coinpay + base + interest,
	}
	q.Schedule = GenerateSchedule(q.ToFinance, q.Months, start)
	if n := len(q.Schedule); n > 0 {
		q.InstalmentAmount = q.Schedule[0].Amount
		q.LastInstalmentAmount = q.Schedule[n-1].Amount
	}
	return q, nil
}

func periodicInterest(base int64, rate decimal.Decimal, months int, kind InterestKind) int64 {
	if months <= 0 || base == 0 {
		return 0
	}
	principal := decimal.NewFromInt(base)
	switch kind {
	case InterestSimple:
		return roundMinor(principal.Mul(rate).Mul(decimal.NewFromInt(int64(months))))
	case InterestCompound:
		factor := decimal.NewFromInt(1)
		growth := factor.Add(rate)
		for range months {
			factor = factor.Mul(growth)
		}
		return roundMinor(principal.Mul(factor)) - base
	default:
		return 0
	}
}
