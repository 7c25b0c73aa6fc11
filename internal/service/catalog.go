package service

import (
	"context"

	"github.com/guardpost/console/internal/api/dto"
	"github.com/guardpost/console/internal/cache"
	"github.com/guardpost/console/internal/domain/catalog"
	"github.com/guardpost/console/internal/domain/invoice"
	"github.com/guardpost/console/internal/types"
	"github.com/sourcegraph/conc/pool"
)

// CatalogService resolves line items against the tenant's catalog
type CatalogService interface {
	// GetSnapshot returns the catalog of the tenant in ctx, cached per tenant
	GetSnapshot(ctx context.Context) (*catalog.Snapshot, error)
	GetCatalog(ctx context.Context) (*dto.CatalogResponse, error)
	CreateEntry(ctx context.Context, req dto.CreateCatalogEntryRequest) (*catalog.Entry, error)
	// ResolveLineItems checks the catalog references of items and fills rows
	// that reference an entry but carry no name of their own
	ResolveLineItems(ctx context.Context, items []*invoice.LineItem) error
	// ApplyEntry points an existing row at an entry and copies the entry's
	// name, price and tax onto it
	ApplyEntry(ctx context.Context, item *invoice.LineItem, entryID string) error
}

type catalogService struct {
	ServiceParams
}

func NewCatalogService(params ServiceParams) CatalogService {
	return &catalogService{ServiceParams: params}
}

func (s *catalogService) GetSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}

	key := cache.GenerateKey(cache.PrefixCatalogSnapshot, types.GetTenantID(ctx))
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, key); ok {
			if snapshot, ok := cached.(*catalog.Snapshot); ok {
				return snapshot, nil
			}
		}
	}

	var (
		entries  []*catalog.Entry
		taxRates []*catalog.TaxRate
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		entries, err = s.CatalogRepo.ListEntries(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		taxRates, err = s.CatalogRepo.ListTaxRates(ctx)
		return err
	})
	if err := p.Wait(); err != nil {
		s.Logger.Errorw("failed to load catalog",
			"tenant_id", types.GetTenantID(ctx),
			"error", err,
		)
		return nil, err
	}

	snapshot := catalog.NewSnapshot(entries, taxRates, s.now())
	if s.Cache != nil {
		s.Cache.Set(ctx, key, snapshot, s.Config.Catalog.CacheTTL)
	}

	s.Logger.Debugw("loaded catalog snapshot",
		"tenant_id", types.GetTenantID(ctx),
		"entries", len(entries),
		"tax_rates", len(taxRates),
	)
	return snapshot, nil
}

func (s *catalogService) GetCatalog(ctx context.Context) (*dto.CatalogResponse, error) {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCatalogResponse(snapshot), nil
}

// CreateEntry creates an entry on the fly and drops the tenant's cached
// snapshot so the next editor load sees it
func (s *catalogService) CreateEntry(ctx context.Context, req dto.CreateCatalogEntryRequest) (*catalog.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.CatalogRepo.CreateEntry(ctx, req.ToParams())
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixCatalogSnapshot, types.GetTenantID(ctx)))
	}

	s.Logger.Infow("created catalog entry",
		"tenant_id", types.GetTenantID(ctx),
		"catalog_entry_id", entry.ID,
		"name", entry.Name,
	)
	return entry, nil
}

func (s *catalogService) ResolveLineItems(ctx context.Context, items []*invoice.LineItem) error {
	needsCatalog := false
	for _, item := range items {
		if item != nil && item.CatalogEntryID != nil {
			needsCatalog = true
			break
		}
	}
	if !needsCatalog {
		return nil
	}

	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := snapshot.Verify(items); err != nil {
		return err
	}

	for _, item := range items {
		if item == nil || item.CatalogEntryID == nil || item.Name != "" {
			continue
		}
		if err := snapshot.ApplyEntry(item, *item.CatalogEntryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *catalogService) ApplyEntry(ctx context.Context, item *invoice.LineItem, entryID string) error {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return err
	}
	return snapshot.ApplyEntry(item, entryID)
}
