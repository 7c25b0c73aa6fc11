package invoice

import (
	"testing"

	"github.com/guardpost/console/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, expected, types.FormatAmount(actual), msgAndArgs...)
}

func TestCalculateLine(t *testing.T) {
	tests := []struct {
		name       string
		quantity   string
		rate       string
		tax        string
		lineAmount string
		taxAmount  string
		lineTotal  string
	}{
		{
			name:       "taxed line",
			quantity:   "2",
			rate:       "50.00",
			tax:        "10",
			lineAmount: "100.00",
			taxAmount:  "10.00",
			lineTotal:  "110.00",
		},
		{
			name:       "half cent rate rounds up",
			quantity:   "1",
			rate:       "19.995",
			tax:        "0",
			lineAmount: "20.00",
			taxAmount:  "0.00",
			lineTotal:  "20.00",
		},
		{
			name:       "tax taken on rounded amount",
			quantity:   "3",
			rate:       "3.335",
			tax:        "7.5",
			lineAmount: "10.01",
			taxAmount:  "0.75",
			lineTotal:  "10.76",
		},
		{
			name:       "fractional quantity",
			quantity:   "1.5",
			rate:       "33.33",
			tax:        "5",
			lineAmount: "50.00",
			taxAmount:  "2.50",
			lineTotal:  "52.50",
		},
		{
			name:       "zero quantity",
			quantity:   "0",
			rate:       "100",
			tax:        "10",
			lineAmount: "0.00",
			taxAmount:  "0.00",
			lineTotal:  "0.00",
		},
		{
			name:       "negative tax is ignored",
			quantity:   "1",
			rate:       "10",
			tax:        "-5",
			lineAmount: "10.00",
			taxAmount:  "0.00",
			lineTotal:  "10.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateLine(d(tt.quantity), d(tt.rate), d(tt.tax))
			assertAmount(t, tt.lineAmount, got.LineAmount, "line amount")
			assertAmount(t, tt.taxAmount, got.TaxAmount, "tax amount")
			assertAmount(t, tt.lineTotal, got.LineTotal, "line total")
			assert.True(t, got.LineTotal.Equal(got.LineAmount.Add(got.TaxAmount)))
		})
	}
}
