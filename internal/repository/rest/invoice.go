package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/guardpost/console/internal/domain/invoice"
	"github.com/guardpost/console/internal/idempotency"
	"github.com/guardpost/console/internal/types"
)

type invoiceRepository struct {
	client *Client
	idem   *idempotency.Generator
}

func NewInvoiceRepository(client *Client) invoice.Repository {
	return &invoiceRepository{
		client: client,
		idem:   idempotency.NewGenerator(),
	}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	var out invoice.Invoice
	err := r.client.doJSON(ctx, call{
		op:     "invoice.create",
		method: http.MethodPost,
		path:   "/invoices",
		body:   inv,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var out invoice.Invoice
	err := r.client.doJSON(ctx, call{
		op:     "invoice.get",
		method: http.MethodGet,
		path:   "/invoices/" + escape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	var out invoice.Invoice
	err := r.client.doJSON(ctx, call{
		op:     "invoice.update",
		method: http.MethodPut,
		path:   "/invoices/" + escape(inv.ID),
		body:   inv,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Send is keyed by invoice so a retried request does not deliver twice
func (r *invoiceRepository) Send(ctx context.Context, id string) error {
	key := r.idem.GenerateKey(idempotency.ScopeInvoiceSend, map[string]interface{}{
		"tenant_id":  types.GetTenantID(ctx),
		"invoice_id": id,
	})
	return r.client.doJSON(ctx, call{
		op:      "invoice.send",
		method:  http.MethodPost,
		path:    "/invoices/" + escape(id) + "/send",
		headers: map[string]string{types.HeaderIdempotencyKey: key},
	}, nil)
}

func (r *invoiceRepository) DownloadDocument(ctx context.Context, id string, format types.DocumentFormat) ([]byte, error) {
	return r.client.do(ctx, call{
		op:     "invoice.download_document",
		method: http.MethodGet,
		path:   "/invoices/" + escape(id) + "/document",
		query:  url.Values{"format": []string{string(format)}},
		headers: map[string]string{
			"Accept": format.ContentType(),
		},
	})
}
