package types

import (
	"math"
	"testing"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already rounded", "110.00", "110.00"},
		{"half cent rounds up", "19.995", "20.00"},
		{"smallest half cent", "0.005", "0.01"},
		{"just below half cent", "0.0049", "0.00"},
		{"three decimals down", "12.344", "12.34"},
		{"negative", "-5.555", "-5.55"},
		{"zero", "0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundAmount(decimal.RequireFromString(tt.input))
			assert.Equal(t, tt.expected, FormatAmount(got))
		})
	}
}

func TestRoundAmount_FromFloat(t *testing.T) {
	// 19.995 cannot be represented exactly as a float64
	got := RoundAmount(decimal.NewFromFloat(19.995))
	assert.Equal(t, "20.00", FormatAmount(got))
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"half cent", 19.995, 20.00},
		{"smallest half cent", 0.005, 0.01},
		{"product", 2 * 50.0, 100.00},
		{"truncate", 1.234, 1.23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Round2(tt.input), 1e-12)
		})
	}

	t.Run("non finite values propagate", func(t *testing.T) {
		assert.True(t, math.IsNaN(Round2(math.NaN())))
		assert.True(t, math.IsInf(Round2(math.Inf(1)), 1))
		assert.True(t, math.IsInf(Round2(math.Inf(-1)), -1))
	})
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(100), decimal.NewFromInt(10))
	assert.True(t, decimal.NewFromInt(10).Equal(got), "got %s", got)
}

func TestParseDecimalFloat(t *testing.T) {
	d, err := ParseDecimalFloat("quantity", 2.5)
	require.NoError(t, err)
	assert.Equal(t, "2.5", d.String())

	_, err = ParseDecimalFloat("quantity", math.NaN())
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = ParseDecimalFloat("rate", math.Inf(1))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestParseAmountFloat(t *testing.T) {
	d, err := ParseAmountFloat("amount", 19.995)
	require.NoError(t, err)
	assert.Equal(t, "20.00", FormatAmount(d))

	_, err = ParseAmountFloat("amount", math.Inf(-1))
	assert.Error(t, err)
}
