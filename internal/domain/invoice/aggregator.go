package invoice

import (
	"github.com/guardpost/console/internal/types"
	"github.com/shopspring/decimal"
)

// Totals are the document level amounts of an invoice
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	GrandTotal decimal.Decimal `json:"total"`
}

// Aggregate folds already rounded line amounts into document totals.
//
// The grand total is the sum of rounded line totals and the subtotal the sum
// of rounded line amounts. Tax is derived by subtraction so that
// subtotal + tax_total == total holds to the cent for every invoice.
func Aggregate(lines []LineAmounts) Totals {
	subtotal := decimal.Zero
	grandTotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineAmount)
		grandTotal = grandTotal.Add(l.LineTotal)
	}

	return Totals{
		Subtotal:   subtotal,
		TaxTotal:   types.RoundAmount(grandTotal.Sub(subtotal)),
		GrandTotal: grandTotal,
	}
}
