package dto

import (
	"time"

	"github.com/guardpost/console/internal/domain/catalog"
	"github.com/guardpost/console/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateCatalogEntryRequest creates a catalog entry from the invoice editor
type CreateCatalogEntryRequest struct {
	Name  string          `json:"name" validate:"required,max=255"`
	Price decimal.Decimal `json:"price" swaggertype:"string"`
	TaxID *string         `json:"tax_id,omitempty"`
}

func (r *CreateCatalogEntryRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.ToParams().Validate()
}

func (r *CreateCatalogEntryRequest) ToParams() *catalog.CreateEntryParams {
	return &catalog.CreateEntryParams{
		Name:  r.Name,
		Price: r.Price,
		TaxID: r.TaxID,
	}
}

// CatalogResponse is the catalog snapshot of an editing session
type CatalogResponse struct {
	Entries   []*catalog.Entry   `json:"entries"`
	TaxRates  []*catalog.TaxRate `json:"tax_rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

func NewCatalogResponse(s *catalog.Snapshot) *CatalogResponse {
	return &CatalogResponse{
		Entries:   s.Entries(),
		TaxRates:  s.TaxRates(),
		FetchedAt: s.FetchedAt,
	}
}
