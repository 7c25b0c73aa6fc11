package service

import (
	"testing"

	"github.com/guardpost/console/internal/api/dto"
	"github.com/guardpost/console/internal/domain/catalog"
	"github.com/guardpost/console/internal/domain/invoice"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/testutil"
	"github.com/guardpost/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CatalogServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CatalogService
}

func TestCatalogService(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCatalogService(newTestParams(&s.BaseServiceTestSuite))
	s.setupTestData()
}

func (s *CatalogServiceSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *CatalogServiceSuite) setupTestData() {
	ctx := s.GetContext()
	store := s.GetStores().CatalogRepo

	s.NoError(store.AddTaxRate(ctx, &catalog.TaxRate{ID: "tax_std", Name: "Standard", RatePercent: decimal.NewFromInt(10)}))
	s.NoError(store.AddTaxRate(ctx, &catalog.TaxRate{ID: "tax_red", Name: "Reduced", RatePercent: decimal.NewFromInt(5)}))
	s.NoError(store.AddEntry(ctx, &catalog.Entry{
		ID:             "cat_patrol",
		Name:           "Night patrol",
		Price:          decimal.NewFromInt(50),
		TaxRatePercent: decimal.NewFromInt(8),
		TaxRateID:      lo.ToPtr("tax_std"),
	}))
	s.NoError(store.AddEntry(ctx, &catalog.Entry{
		ID:             "cat_alarm",
		Name:           "Alarm response",
		Price:          decimal.RequireFromString("35.50"),
		TaxRatePercent: decimal.NewFromInt(0),
	}))
}

func (s *CatalogServiceSuite) TestGetSnapshot_IsCached() {
	ctx := s.GetContext()
	store := s.GetStores().CatalogRepo

	first, err := s.service.GetSnapshot(ctx)
	s.NoError(err)
	s.Len(first.Entries(), 2)
	s.Equal(int64(2), store.ListCalls())
	s.Equal(s.GetNow(), first.FetchedAt)

	second, err := s.service.GetSnapshot(ctx)
	s.NoError(err)
	s.Same(first, second)
	s.Equal(int64(2), store.ListCalls())
}

func (s *CatalogServiceSuite) TestGetSnapshot_CacheDisabled() {
	cfg := *s.GetConfig()
	cfg.Catalog.CacheEnabled = false

	params := newTestParams(&s.BaseServiceTestSuite)
	params.Config = &cfg
	params.Cache = nil
	svc := NewCatalogService(params)

	_, err := svc.GetSnapshot(s.GetContext())
	s.NoError(err)
	_, err = svc.GetSnapshot(s.GetContext())
	s.NoError(err)
	s.Equal(int64(4), s.GetStores().CatalogRepo.ListCalls())
}

func (s *CatalogServiceSuite) TestGetSnapshot_RequiresTenant() {
	_, err := s.service.GetSnapshot(types.SetTenantID(s.GetContext(), ""))
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Zero(s.GetStores().CatalogRepo.ListCalls())
}

func (s *CatalogServiceSuite) TestGetCatalog() {
	resp, err := s.service.GetCatalog(s.GetContext())
	s.NoError(err)
	s.Require().Len(resp.Entries, 2)
	s.Require().Len(resp.TaxRates, 2)
	s.Equal("Reduced", resp.TaxRates[0].Name)
	s.Equal("Standard", resp.TaxRates[1].Name)
}

func (s *CatalogServiceSuite) TestCreateEntry_InvalidatesSnapshot() {
	ctx := s.GetContext()
	store := s.GetStores().CatalogRepo

	_, err := s.service.GetSnapshot(ctx)
	s.NoError(err)

	entry, err := s.service.CreateEntry(ctx, dto.CreateCatalogEntryRequest{
		Name:  "Event staffing",
		Price: decimal.NewFromInt(40),
		TaxID: lo.ToPtr("tax_red"),
	})
	s.NoError(err)
	s.NotEmpty(entry.ID)
	s.Equal("5", entry.TaxRatePercent.String())

	snapshot, err := s.service.GetSnapshot(ctx)
	s.NoError(err)
	s.Equal(int64(4), store.ListCalls())
	_, err = snapshot.Entry(entry.ID)
	s.NoError(err)
}

func (s *CatalogServiceSuite) TestCreateEntry_Validation() {
	tests := []struct {
		name string
		req  dto.CreateCatalogEntryRequest
	}{
		{name: "missing name", req: dto.CreateCatalogEntryRequest{Price: decimal.NewFromInt(1)}},
		{name: "negative price", req: dto.CreateCatalogEntryRequest{Name: "x", Price: decimal.NewFromInt(-1)}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateEntry(s.GetContext(), tt.req)
			s.Error(err)
			s.True(ierr.IsValidation(err))
		})
	}
}

func (s *CatalogServiceSuite) TestResolveLineItems() {
	named := invoice.NewLineItem("Custom patrol", decimal.NewFromInt(1), decimal.NewFromInt(70), decimal.Zero)
	named.CatalogEntryID = lo.ToPtr("cat_patrol")

	unnamed := invoice.NewLineItem("", decimal.NewFromInt(2), decimal.Zero, decimal.Zero)
	unnamed.CatalogEntryID = lo.ToPtr("cat_patrol")

	free := invoice.NewLineItem("Mileage", decimal.NewFromInt(12), decimal.RequireFromString("0.50"), decimal.Zero)

	err := s.service.ResolveLineItems(s.GetContext(), []*invoice.LineItem{named, unnamed, free})
	s.NoError(err)

	s.Equal("Custom patrol", named.Name)
	s.Equal("70", named.Rate.String())

	s.Equal("Night patrol", unnamed.Name)
	s.Equal("50", unnamed.Rate.String())
	s.Equal("10", unnamed.TaxRatePercent.String())

	s.Equal("Mileage", free.Name)
}

func (s *CatalogServiceSuite) TestResolveLineItems_WithoutReferencesSkipsCatalog() {
	free := invoice.NewLineItem("Mileage", decimal.NewFromInt(12), decimal.RequireFromString("0.50"), decimal.Zero)

	s.NoError(s.service.ResolveLineItems(s.GetContext(), []*invoice.LineItem{free}))
	s.Zero(s.GetStores().CatalogRepo.ListCalls())
}

func (s *CatalogServiceSuite) TestResolveLineItems_UnknownEntry() {
	item := invoice.NewLineItem("", decimal.NewFromInt(1), decimal.Zero, decimal.Zero)
	item.CatalogEntryID = lo.ToPtr("cat_missing")

	err := s.service.ResolveLineItems(s.GetContext(), []*invoice.LineItem{item})
	s.True(ierr.IsNotFound(err))
}
