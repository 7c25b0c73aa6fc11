package invoice

import (
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	"github.com/shopspring/decimal"
)

var maxTaxRatePercent = decimal.NewFromInt(100)

// LineItem is a single row of an invoice. It is owned by its invoice.
type LineItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity" swaggertype:"string"`
	Rate           decimal.Decimal `json:"rate" swaggertype:"string"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent" swaggertype:"string"`
	CatalogEntryID *string         `json:"catalog_entry_id,omitempty"`
}

// NewLineItem creates a line item with a fresh ID
func NewLineItem(name string, quantity, rate, taxRatePercent decimal.Decimal) *LineItem {
	return &LineItem{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		Name:           name,
		Quantity:       quantity,
		Rate:           rate,
		TaxRatePercent: taxRatePercent,
	}
}

// NewBlankLineItem is the zeroed row an editor starts with
func NewBlankLineItem() *LineItem {
	return NewLineItem("", decimal.NewFromInt(1), decimal.Zero, decimal.Zero)
}

// Amounts calculates the row's money breakdown
func (li *LineItem) Amounts() LineAmounts {
	return CalculateLine(li.Quantity, li.Rate, li.TaxRatePercent)
}

// Validate validates the line item
func (li *LineItem) Validate() error {
	if li.Quantity.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Quantity must be non negative").
			WithReportableDetails(map[string]any{
				"line_item_id": li.ID,
				"quantity":     li.Quantity.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if li.Rate.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Rate must be non negative").
			WithReportableDetails(map[string]any{
				"line_item_id": li.ID,
				"rate":         li.Rate.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if li.TaxRatePercent.IsNegative() || li.TaxRatePercent.GreaterThan(maxTaxRatePercent) {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Tax rate must be between 0 and 100 percent").
			WithReportableDetails(map[string]any{
				"line_item_id":     li.ID,
				"tax_rate_percent": li.TaxRatePercent.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// LineItemUpdate holds the fields of a row edit. Nil fields are left alone.
type LineItemUpdate struct {
	Name           *string          `json:"name,omitempty"`
	Quantity       *decimal.Decimal `json:"quantity,omitempty" swaggertype:"string"`
	Rate           *decimal.Decimal `json:"rate,omitempty" swaggertype:"string"`
	TaxRatePercent *decimal.Decimal `json:"tax_rate_percent,omitempty" swaggertype:"string"`
	CatalogEntryID *string          `json:"catalog_entry_id,omitempty"`
}

func (u LineItemUpdate) apply(li *LineItem) {
	if u.Name != nil {
		li.Name = *u.Name
	}
	if u.Quantity != nil {
		li.Quantity = *u.Quantity
	}
	if u.Rate != nil {
		li.Rate = *u.Rate
	}
	if u.TaxRatePercent != nil {
		li.TaxRatePercent = *u.TaxRatePercent
	}
	if u.CatalogEntryID != nil {
		if *u.CatalogEntryID == "" {
			li.CatalogEntryID = nil
		} else {
			li.CatalogEntryID = u.CatalogEntryID
		}
	}
}
