package financing

import (
	"github.com/shopspring/decimal"
)

// CommissionMode selects the commission base formula
type CommissionMode string

const (
	// CommissionModeCollected bases commission on principal actually collected
	CommissionModeCollected CommissionMode = "collected"
	// CommissionModeListBased bases commission on list price less discount
	CommissionModeListBased CommissionMode = "listBased"
)

// IsValid reports whether m is a known commission mode
func (m CommissionMode) IsValid() bool {
	return m == CommissionModeCollected || m == CommissionModeListBased
}

// CommissionBasis carries the order facts commission is computed from.
// TotalToFinance is the interest-exclusive principal and TotalFinal the
// amount collectable through payments, so TotalToFinance/TotalFinal is the
// principal share of every collected unit.
type CommissionBasis struct {
	TotalList        int64
	Discount         int64
	DownPayment      int64
	Coinpay          int64
	TotalToFinance   int64
	TotalFinal       int64
	PaymentsReceived int64
	// CommissionPaid is what was already paid out to the party
	CommissionPaid int64
}

// Accrual is the commission owed to one party at a point in time.
// BalanceExpected is never clamped; a negative value means the party was
// paid more than the theoretical accrual.
type Accrual struct {
	Mode             CommissionMode `json:"mode"`
	BaseCollected    int64          `json:"base_collected"`
	BaseExpected     int64          `json:"base_expected"`
	AccruedCollected int64          `json:"accrued_collected"`
	AccruedExpected  int64          `json:"accrued_expected"`
	Paid             int64          `json:"paid"`
	BalanceExpected  int64          `json:"balance_expected"`
	BalanceCollected int64          `json:"balance_collected"`
}

// DisplayBalance is BalanceExpected floored at zero, for presentation only
func (a Accrual) DisplayBalance() int64 {
	return max(a.BalanceExpected, 0)
}

// ComputeCommission dispatches to CollectedCommission or ListBasedCommission
func ComputeCommission(b CommissionBasis, pct decimal.Decimal, mode CommissionMode) (Accrual, error) {
	switch mode {
	case CommissionModeCollected:
		return CollectedCommission(b, pct), nil
	case CommissionModeListBased:
		return ListBasedCommission(b, pct), nil
	default:
		return Accrual{}, ErrUnknownCommissionMode.WithMessage("Unknown commission mode: " + string(mode))
	}
}

// CollectedCommission accrues commission on principal collected so far.
// Each collected unit is split between principal and interest in the ratio
// TotalToFinance/TotalFinal (1 when TotalFinal is zero); only the principal
// share plus the down payment counts toward the base.
func CollectedCommission(b CommissionBasis, pct decimal.Decimal) Accrual {
	b = b.clamped()
	pct = clampPercent(pct)

	adjustedPaid := b.PaymentsReceived
	if b.TotalFinal > 0 {
		adjustedPaid = roundMinor(decimal.NewFromInt(b.PaymentsReceived).
			Mul(decimal.NewFromInt(b.TotalToFinance)).
			Div(decimal.NewFromInt(b.TotalFinal)))
	}

	baseExpected := b.DownPayment + b.Coinpay + b.TotalToFinance
	baseCollected := min(b.DownPayment+adjustedPaid, b.DownPayment+b.TotalToFinance)

	return newAccrual(CommissionModeCollected, baseCollected, baseExpected, b.CommissionPaid, pct)
}

// ListBasedCommission accrues commission on max(TotalList - Discount, 0),
// ignoring collection progress and including the down payment.
func ListBasedCommission(b CommissionBasis, pct decimal.Decimal) Accrual {
	b = b.clamped()
	pct = clampPercent(pct)

	base := max(b.TotalList-b.Discount, 0)
	return newAccrual(CommissionModeListBased, base, base, b.CommissionPaid, pct)
}

func newAccrual(mode CommissionMode, baseCollected, baseExpected, paid int64, pct decimal.Decimal) Accrual {
	a := Accrual{
		Mode:             mode,
		BaseCollected:    baseCollected,
		BaseExpected:     baseExpected,
		AccruedCollected: ApplyPercent(baseCollected, pct),
		AccruedExpected:  ApplyPercent(baseExpected, pct),
		Paid:             paid,
	}
	a.BalanceExpected = a.AccruedExpected - a.Paid
	a.BalanceCollected = a.AccruedCollected - a.Paid
	return a
}

func (b CommissionBasis) clamped() CommissionBasis {
	b.TotalList = max(b.TotalList, 0)
	b.Discount = max(b.Discount, 0)
	b.DownPayment = max(b.DownPayment, 0)
	b.Coinpay = max(b.Coinpay, 0)
	b.TotalToFinance = max(b.TotalToFinance, 0)
	b.TotalFinal = max(b.TotalFinal, 0)
	b.PaymentsReceived = max(b.PaymentsReceived, 0)
	b.CommissionPaid = max(b.CommissionPaid, 0)
	return b
}

func clampPercent(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}
