package financing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampingPolicy(t *testing.T) {
	t.Run("ParseClampingPolicy accepts known names", func(t *testing.T) {
		p, err := ParseClampingPolicy("")
		require.NoError(t, err)
		assert.Equal(t, ClampSilently, p)

		p, err = ParseClampingPolicy("Strict")
		require.NoError(t, err)
		assert.Equal(t, RejectInvalid, p)
		assert.Equal(t, "strict", p.String())
	})

	t.Run("ParseClampingPolicy rejects unknown names", func(t *testing.T) {
		_, err := ParseClampingPolicy("lenient")
		assert.Error(t, err)
	})

	t.Run("clamp turns negative amounts into zero", func(t *testing.T) {
		v, err := ClampSilently.Amount("discount", -500)
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)
	})

	t.Run("strict rejects negative amounts", func(t *testing.T) {
		_, err := RejectInvalid.Amount("discount", -500)
		assert.ErrorIs(t, err, ErrNegativeAmount)
		assert.Contains(t, err.Error(), "discount")
	})

	t.Run("strict rejects negative percentages", func(t *testing.T) {
		_, err := RejectInvalid.Percent("interest_pct", decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestApplyPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		pct    string
		want   int64
	}{
		{"whole percent", 80000, "20", 16000},
		{"rounds half up", 5, "10", 1},
		{"rounds down below half", 4, "10", 0},
		{"fractional percent", 12345, "12.5", 1543},
		{"zero percent", 99999, "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyPercent(tt.amount, decimal.RequireFromString(tt.pct)))
		})
	}
}
