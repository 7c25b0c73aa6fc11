package invoice

import (
	"github.com/guardpost/console/internal/types"
	"github.com/shopspring/decimal"
)

// LineAmounts is the calculated money breakdown of a single line item
type LineAmounts struct {
	LineAmount decimal.Decimal `json:"line_amount"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// CalculateLine prices one line. Tax is taken on the rounded line amount so a
// row's tax always equals line_amount * rate% to the cent. Inputs are not
// validated: zero or negative quantities and rates yield zero or negative lines.
func CalculateLine(quantity, rate, taxRatePercent decimal.Decimal) LineAmounts {
	lineAmount := types.RoundAmount(quantity.Mul(rate))

	taxAmount := decimal.Zero
	if taxRatePercent.IsPositive() {
		taxAmount = types.RoundAmount(types.Percent(lineAmount, taxRatePercent))
	}

	return LineAmounts{
		LineAmount: lineAmount,
		TaxAmount:  taxAmount,
		LineTotal:  lineAmount.Add(taxAmount),
	}
}
