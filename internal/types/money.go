package types

import (
	"math"
	"strconv"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/shopspring/decimal"
)

const (
	// MoneyPrecision is the number of fractional digits every amount is rounded to
	MoneyPrecision int32 = 2

	// roundingEpsilon biases values sitting just below a half-cent boundary
	// (19.995 stored as 19.99499999...) so they round up
	roundingEpsilon = 1e-9
)

var (
	epsilon = decimal.NewFromFloat(roundingEpsilon)

	// PaymentTolerance absorbs rounding when comparing paid amounts to totals
	PaymentTolerance = decimal.NewFromFloat(0.005)

	hundred = decimal.NewFromInt(100)
)

// RoundAmount rounds a money amount to two decimals, half up, after adding
// the rounding epsilon. All money math goes through it.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Add(epsilon).Round(MoneyPrecision)
}

// Round2 is RoundAmount for float64 inputs. NaN and ±Inf propagate unchanged.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.Round((x+roundingEpsilon)*100) / 100
}

// Percent returns d * pct / 100
func Percent(d, pct decimal.Decimal) decimal.Decimal {
	return d.Mul(pct).Div(hundred)
}

// ParseDecimalFloat converts a float from an untyped boundary (CLI flags,
// YAML) into a decimal, rejecting NaN and ±Inf.
func ParseDecimalFloat(field string, x float64) (decimal.Decimal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero, ierr.NewError("value is not a finite number").
			WithHintf("%s must be a finite number", field).
			WithReportableDetails(map[string]any{
				field: strconv.FormatFloat(x, 'f', -1, 64),
			}).
			Mark(ierr.ErrValidation)
	}
	return decimal.NewFromFloat(x), nil
}

// ParseAmountFloat is ParseDecimalFloat for money amounts: the value is
// rounded to cents before it enters decimal arithmetic.
func ParseAmountFloat(field string, x float64) (decimal.Decimal, error) {
	if _, err := ParseDecimalFloat(field, x); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(Round2(x)), nil
}

// FormatAmount renders an amount with exactly two decimals
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(MoneyPrecision)
}
