package testutil

import (
	"context"
	"sync/atomic"

	"github.com/guardpost/console/internal/domain/catalog"
	"github.com/guardpost/console/internal/types"
)

var _ catalog.Repository = (*InMemoryCatalogStore)(nil)

// InMemoryCatalogStore implements catalog.Repository and counts list calls
// so cache behaviour can be asserted
type InMemoryCatalogStore struct {
	entries   *InMemoryStore[*catalog.Entry]
	taxRates  *InMemoryStore[*catalog.TaxRate]
	listCalls atomic.Int64
}

// NewInMemoryCatalogStore creates a new in-memory catalog store
func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		entries:  NewInMemoryStore[*catalog.Entry](),
		taxRates: NewInMemoryStore[*catalog.TaxRate](),
	}
}

// AddEntry seeds a catalog entry
func (s *InMemoryCatalogStore) AddEntry(ctx context.Context, e *catalog.Entry) error {
	return s.entries.Create(ctx, e.ID, e)
}

// AddTaxRate seeds a tax rate
func (s *InMemoryCatalogStore) AddTaxRate(ctx context.Context, r *catalog.TaxRate) error {
	return s.taxRates.Create(ctx, r.ID, r)
}

func (s *InMemoryCatalogStore) ListTaxRates(ctx context.Context) ([]*catalog.TaxRate, error) {
	s.listCalls.Add(1)
	return s.taxRates.List(ctx, nil, func(a, b *catalog.TaxRate) bool {
		return a.ID < b.ID
	}), nil
}

func (s *InMemoryCatalogStore) ListEntries(ctx context.Context) ([]*catalog.Entry, error) {
	s.listCalls.Add(1)
	return s.entries.List(ctx, nil, func(a, b *catalog.Entry) bool {
		return a.ID < b.ID
	}), nil
}

func (s *InMemoryCatalogStore) CreateEntry(ctx context.Context, params *catalog.CreateEntryParams) (*catalog.Entry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e := &catalog.Entry{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CATALOG_ENTRY),
		Name:      params.Name,
		Price:     params.Price,
		TaxRateID: params.TaxID,
	}
	if params.TaxID != nil {
		rate, err := s.taxRates.Get(ctx, *params.TaxID)
		if err != nil {
			return nil, err
		}
		e.TaxRatePercent = rate.RatePercent
	}

	if err := s.entries.Create(ctx, e.ID, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListCalls is the number of list requests served
func (s *InMemoryCatalogStore) ListCalls() int64 {
	return s.listCalls.Load()
}

// Clear resets all stored data
func (s *InMemoryCatalogStore) Clear() {
	s.entries.Clear()
	s.taxRates.Clear()
	s.listCalls.Store(0)
}
