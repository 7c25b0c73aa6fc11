package catalog

import (
	"sort"
	"time"

	"github.com/guardpost/console/internal/domain/invoice"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Snapshot is a read-only view of a tenant's catalog entries and tax rates,
// loaded once per editing session and passed explicitly to whatever needs to
// resolve line items.
type Snapshot struct {
	entries   map[string]*Entry
	taxRates  map[string]*TaxRate
	order     []string
	FetchedAt time.Time
}

// NewSnapshot indexes the given entries and tax rates
func NewSnapshot(entries []*Entry, taxRates []*TaxRate, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{
		entries:   make(map[string]*Entry, len(entries)),
		taxRates:  make(map[string]*TaxRate, len(taxRates)),
		order:     make([]string, 0, len(entries)),
		FetchedAt: fetchedAt,
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		if _, seen := s.entries[e.ID]; !seen {
			s.order = append(s.order, e.ID)
		}
		s.entries[e.ID] = e
	}
	for _, t := range taxRates {
		if t == nil {
			continue
		}
		s.taxRates[t.ID] = t
	}
	return s
}

// Entry looks up an entry by ID
func (s *Snapshot) Entry(id string) (*Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, ierr.NewError("catalog entry not found").
			WithHintf("Catalog entry %s does not exist", id).
			WithReportableDetails(map[string]any{
				"catalog_entry_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return e, nil
}

// TaxRate looks up a tax rate by ID
func (s *Snapshot) TaxRate(id string) (*TaxRate, error) {
	t, ok := s.taxRates[id]
	if !ok {
		return nil, ierr.NewError("tax rate not found").
			WithHintf("Tax rate %s does not exist", id).
			WithReportableDetails(map[string]any{
				"tax_rate_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return t, nil
}

// Entries returns the entries in the order the backend listed them
func (s *Snapshot) Entries() []*Entry {
	return lo.Map(s.order, func(id string, _ int) *Entry {
		return s.entries[id]
	})
}

// TaxRates returns the tax rates sorted by name
func (s *Snapshot) TaxRates() []*TaxRate {
	rates := lo.Values(s.taxRates)
	sortTaxRates(rates)
	return rates
}

// EffectiveTaxPercent is the tax percentage an entry applies: the linked tax
// rate when the snapshot knows it, the entry's own default otherwise
func (s *Snapshot) EffectiveTaxPercent(e *Entry) decimal.Decimal {
	if e.TaxRateID != nil {
		if t, ok := s.taxRates[*e.TaxRateID]; ok {
			return t.RatePercent
		}
	}
	return e.TaxRatePercent
}

// ApplyEntry points a line item at a catalog entry and copies the entry's
// name, price and tax onto it. Later edits to the row win over these values.
func (s *Snapshot) ApplyEntry(item *invoice.LineItem, entryID string) error {
	e, err := s.Entry(entryID)
	if err != nil {
		return err
	}

	item.CatalogEntryID = lo.ToPtr(e.ID)
	item.Name = e.Name
	item.Rate = e.Price
	item.TaxRatePercent = s.EffectiveTaxPercent(e)
	return nil
}

// Verify checks that every catalog reference on the given items exists
func (s *Snapshot) Verify(items []*invoice.LineItem) error {
	for _, item := range items {
		if item.CatalogEntryID == nil {
			continue
		}
		if _, err := s.Entry(*item.CatalogEntryID); err != nil {
			return err
		}
	}
	return nil
}

func sortTaxRates(rates []*TaxRate) {
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].Name == rates[j].Name {
			return rates[i].ID < rates[j].ID
		}
		return rates[i].Name < rates[j].Name
	})
}
