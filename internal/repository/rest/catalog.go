package rest

import (
	"context"
	"net/http"

	"github.com/guardpost/console/internal/domain/catalog"
)

type catalogRepository struct {
	client *Client
}

func NewCatalogRepository(client *Client) catalog.Repository {
	return &catalogRepository{client: client}
}

func (r *catalogRepository) ListTaxRates(ctx context.Context) ([]*catalog.TaxRate, error) {
	var out listResponse[*catalog.TaxRate]
	err := r.client.doJSON(ctx, call{
		op:     "catalog.list_tax_rates",
		method: http.MethodGet,
		path:   "/tax-rates",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (r *catalogRepository) ListEntries(ctx context.Context) ([]*catalog.Entry, error) {
	var out listResponse[*catalog.Entry]
	err := r.client.doJSON(ctx, call{
		op:     "catalog.list_entries",
		method: http.MethodGet,
		path:   "/catalog/entries",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (r *catalogRepository) CreateEntry(ctx context.Context, params *catalog.CreateEntryParams) (*catalog.Entry, error) {
	var out catalog.Entry
	err := r.client.doJSON(ctx, call{
		op:     "catalog.create_entry",
		method: http.MethodPost,
		path:   "/catalog/entries",
		body:   params,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
