package catalog

import (
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/shopspring/decimal"
)

// Entry is a reusable named, priced and taxed item a line item can reference
// instead of free text
type Entry struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price" swaggertype:"string"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent" swaggertype:"string"`
	TaxRateID      *string         `json:"tax_rate_id,omitempty"`
}

// TaxRate is a named percentage a catalog entry or line item can carry
type TaxRate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	RatePercent decimal.Decimal `json:"rate_percent" swaggertype:"string"`
}

// CreateEntryParams are the fields the backend needs to create an entry on the fly
type CreateEntryParams struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	TaxID *string         `json:"tax_id,omitempty"`
}

// Validate validates the create params
func (p *CreateEntryParams) Validate() error {
	if p.Name == "" {
		return ierr.NewError("catalog entry name is required").
			WithHint("Please provide a name for the catalog entry").
			Mark(ierr.ErrValidation)
	}

	if p.Price.IsNegative() {
		return ierr.NewError("catalog entry price must be non negative").
			WithHint("Price cannot be negative").
			WithReportableDetails(map[string]any{
				"price": p.Price.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
