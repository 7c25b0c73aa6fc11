package pdfgen

import (
	"context"
	"testing"
	"time"

	"github.com/guardpost/console/internal/domain/customer"
	"github.com/guardpost/console/internal/domain/invoice"
	"github.com/guardpost/console/internal/domain/payment"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/types"
	"github.com/h2non/filetype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInvoice(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	ctx := types.SetTenantID(context.Background(), types.DefaultTenantID)

	inv := invoice.New(ctx, now)
	inv.ID = "inv_1"
	inv.Title = "March guarding"
	inv.Notes = "Thank you for your business"
	require.NoError(t, inv.ReplaceLineItems([]*invoice.LineItem{
		invoice.NewLineItem("Guard hours", decimal.NewFromInt(2), decimal.NewFromInt(50), decimal.NewFromInt(10)),
		invoice.NewLineItem("Café visit", decimal.NewFromInt(1), decimal.RequireFromString("4.50"), decimal.Zero),
	}))

	ledger := payment.NewLedger(inv.ID, inv.Totals().GrandTotal, []*payment.Payment{{
		ID:        "pay_1",
		InvoiceID: inv.ID,
		Date:      now,
		Amount:    decimal.NewFromInt(50),
		Method:    types.PaymentMethodCash,
	}})

	tests := []struct {
		name string
		data *InvoiceData
	}{
		{
			name: "with billing target and ledger",
			data: &InvoiceData{
				Invoice:    inv,
				Client:     &customer.Client{ID: "cli_1", Name: "Acme Security"},
				PostSite:   &customer.PostSite{ID: "site_1", ClientID: "cli_1", Name: "North Gate", Address: "1 Harbour Rd"},
				Ledger:     ledger.Summary(),
				RenderedAt: now,
			},
		},
		{
			name: "draft without billing target",
			data: &InvoiceData{Invoice: inv, RenderedAt: now},
		},
	}

	r := NewPDFRenderer(logger.NewNopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := r.RenderInvoice(tt.data)
			require.NoError(t, err)
			assert.True(t, filetype.Is(content, "pdf"))
		})
	}
}

func TestRenderInvoice_NoInvoice(t *testing.T) {
	r := NewPDFRenderer(logger.NewNopLogger())

	for _, data := range []*InvoiceData{nil, {}} {
		_, err := r.RenderInvoice(data)
		assert.True(t, ierr.IsValidation(err))
	}
}
