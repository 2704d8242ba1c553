package financing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ClampingPolicy decides how the engine treats negative amounts and
// payments larger than the outstanding schedule.
type ClampingPolicy int

const (
	// ClampSilently treats negative inputs as zero and drops unconsumed payment.
	ClampSilently ClampingPolicy = iota
	// RejectInvalid returns ErrNegativeAmount / ErrOverpayment instead.
	RejectInvalid
)

// String returns the configuration name of the policy
func (p ClampingPolicy) String() string {
	switch p {
	case RejectInvalid:
		return "strict"
	default:
		return "clamp"
	}
}

// ParseClampingPolicy parses "clamp" or "strict". Empty means clamp.
func ParseClampingPolicy(s string) (ClampingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return ClampSilently, nil
	case "strict":
		return RejectInvalid, nil
	default:
		return ClampSilently, fmt.Errorf("unknown clamping policy %q", s)
	}
}

// Amount normalizes a minor-unit amount under the policy.
func (p ClampingPolicy) Amount(field string, v int64) (int64, error) {
	if v >= 0 {
		return v, nil
	}
	if p == RejectInvalid {
		return 0, ErrNegativeAmount.WithMessage(fmt.Sprintf("%s must not be negative", field))
	}
	return 0, nil
}

// Percent normalizes a percentage under the policy.
func (p ClampingPolicy) Percent(field string, v decimal.Decimal) (decimal.Decimal, error) {
	if !v.IsNegative() {
		return v, nil
	}
	if p == RejectInvalid {
		return decimal.Zero, ErrNegativeAmount.WithMessage(fmt.Sprintf("%s must not be negative", field))
	}
	return decimal.Zero, nil
}

// ApplyPercent returns round(amount × pct / 100) in minor units, half-up.
func ApplyPercent(amount int64, pct decimal.Decimal) int64 {
	return roundMinor(decimal.NewFromInt(amount).Mul(pct).Shift(-2))
}

// roundMinor rounds half away from zero, which is half-up for the
// non-negative values the engine works with.
func roundMinor(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
