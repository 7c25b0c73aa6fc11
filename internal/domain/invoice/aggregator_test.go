package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	t.Run("single taxed item", func(t *testing.T) {
		totals := Aggregate([]LineAmounts{
			CalculateLine(d("2"), d("50.00"), d("10")),
		})

		assertAmount(t, "100.00", totals.Subtotal)
		assertAmount(t, "10.00", totals.TaxTotal)
		assertAmount(t, "110.00", totals.GrandTotal)
	})

	t.Run("half cent items round individually", func(t *testing.T) {
		lines := []LineAmounts{
			CalculateLine(d("1"), d("19.995"), decimal.Zero),
			CalculateLine(d("1"), d("0.005"), decimal.Zero),
		}

		assertAmount(t, "20.00", lines[0].LineAmount)
		assertAmount(t, "0.01", lines[1].LineAmount)

		totals := Aggregate(lines)
		assertAmount(t, "20.01", totals.Subtotal)
		assertAmount(t, "0.00", totals.TaxTotal)
		assertAmount(t, "20.01", totals.GrandTotal)
	})

	t.Run("no lines", func(t *testing.T) {
		totals := Aggregate(nil)
		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.TaxTotal.IsZero())
		assert.True(t, totals.GrandTotal.IsZero())
	})

	t.Run("subtotal plus tax equals total", func(t *testing.T) {
		lines := []LineAmounts{
			CalculateLine(d("3"), d("3.335"), d("7.5")),
			CalculateLine(d("7"), d("12.49"), d("13")),
			CalculateLine(d("0.25"), d("80.10"), d("21")),
			CalculateLine(d("1"), d("0.01"), d("50")),
		}

		totals := Aggregate(lines)
		assert.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.TaxTotal)),
			"subtotal %s + tax %s != total %s", totals.Subtotal, totals.TaxTotal, totals.GrandTotal)

		var taxSum decimal.Decimal
		for _, l := range lines {
			taxSum = taxSum.Add(l.TaxAmount)
		}
		assert.True(t, taxSum.Equal(totals.TaxTotal))
	})
}
