package catalog

import "context"

// Repository is the catalog collaborator, scoped to the tenant in ctx
type Repository interface {
	// ListTaxRates lists the tax rates of the tenant
	ListTaxRates(ctx context.Context) ([]*TaxRate, error)

	// ListEntries lists the catalog entries of the tenant
	ListEntries(ctx context.Context) ([]*Entry, error)

	// CreateEntry creates a catalog entry
	CreateEntry(ctx context.Context, params *CreateEntryParams) (*Entry, error)
}
