package catalog

import (
	"testing"
	"time"

	"github.com/guardpost/console/internal/domain/invoice"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *Snapshot {
	return NewSnapshot(
		[]*Entry{
			{ID: "cat_patrol", Name: "Night patrol", Price: decimal.RequireFromString("50.00"), TaxRatePercent: decimal.NewFromInt(5), TaxRateID: lo.ToPtr("tax_std")},
			{ID: "cat_alarm", Name: "Alarm response", Price: decimal.RequireFromString("75.00"), TaxRatePercent: decimal.NewFromInt(7)},
			{ID: "cat_orphan", Name: "Key holding", Price: decimal.RequireFromString("12.50"), TaxRatePercent: decimal.NewFromInt(3), TaxRateID: lo.ToPtr("tax_gone")},
			nil,
		},
		[]*TaxRate{
			{ID: "tax_std", Name: "Standard", RatePercent: decimal.NewFromInt(10)},
			{ID: "tax_red", Name: "Reduced", RatePercent: decimal.NewFromInt(5)},
		},
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	)
}

func TestSnapshot_Lookup(t *testing.T) {
	s := testSnapshot()

	e, err := s.Entry("cat_alarm")
	require.NoError(t, err)
	assert.Equal(t, "Alarm response", e.Name)

	_, err = s.Entry("cat_missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))

	_, err = s.TaxRate("tax_missing")
	assert.True(t, ierr.IsNotFound(err))

	ids := lo.Map(s.Entries(), func(e *Entry, _ int) string { return e.ID })
	assert.Equal(t, []string{"cat_patrol", "cat_alarm", "cat_orphan"}, ids)

	names := lo.Map(s.TaxRates(), func(r *TaxRate, _ int) string { return r.Name })
	assert.Equal(t, []string{"Reduced", "Standard"}, names)
}

func TestSnapshot_EffectiveTaxPercent(t *testing.T) {
	s := testSnapshot()

	tests := []struct {
		entryID  string
		expected string
	}{
		{"cat_patrol", "10"},
		{"cat_alarm", "7"},
		{"cat_orphan", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.entryID, func(t *testing.T) {
			e, err := s.Entry(tt.entryID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.EffectiveTaxPercent(e).String())
		})
	}
}

func TestSnapshot_ApplyEntry(t *testing.T) {
	s := testSnapshot()
	item := invoice.NewLineItem("", decimal.NewFromInt(2), decimal.Zero, decimal.Zero)

	require.NoError(t, s.ApplyEntry(item, "cat_patrol"))
	assert.Equal(t, "Night patrol", item.Name)
	require.NotNil(t, item.CatalogEntryID)
	assert.Equal(t, "cat_patrol", *item.CatalogEntryID)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(2)))

	amounts := item.Amounts()
	assert.Equal(t, "100.00", amounts.LineAmount.StringFixed(2))
	assert.Equal(t, "10.00", amounts.TaxAmount.StringFixed(2))

	before := *item
	err := s.ApplyEntry(item, "cat_missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.Equal(t, before, *item)
}

func TestSnapshot_Verify(t *testing.T) {
	s := testSnapshot()

	free := invoice.NewLineItem("Free text", decimal.NewFromInt(1), decimal.NewFromInt(10), decimal.Zero)
	linked := invoice.NewLineItem("Night patrol", decimal.NewFromInt(1), decimal.NewFromInt(50), decimal.Zero)
	linked.CatalogEntryID = lo.ToPtr("cat_patrol")
	assert.NoError(t, s.Verify([]*invoice.LineItem{free, linked}))

	stale := invoice.NewLineItem("Old service", decimal.NewFromInt(1), decimal.NewFromInt(50), decimal.Zero)
	stale.CatalogEntryID = lo.ToPtr("cat_deleted")
	err := s.Verify([]*invoice.LineItem{free, stale})
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestCreateEntryParams_Validate(t *testing.T) {
	assert.NoError(t, (&CreateEntryParams{Name: "Patrol", Price: decimal.NewFromInt(10)}).Validate())
	assert.True(t, ierr.IsValidation((&CreateEntryParams{Price: decimal.NewFromInt(10)}).Validate()))
	assert.True(t, ierr.IsValidation((&CreateEntryParams{Name: "Patrol", Price: decimal.NewFromInt(-1)}).Validate()))
}
