package rest

import (
	"context"
	"net/http"

	"github.com/guardpost/console/internal/domain/payment"
	"github.com/guardpost/console/internal/types"
)

type paymentRepository struct {
	client *Client
}

func NewPaymentRepository(client *Client) payment.Repository {
	return &paymentRepository{client: client}
}

// Create sends the payment's idempotency key so the transport may retry it
func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	var headers map[string]string
	if p.IdempotencyKey != "" {
		headers = map[string]string{types.HeaderIdempotencyKey: p.IdempotencyKey}
	}

	var out payment.Payment
	err := r.client.doJSON(ctx, call{
		op:      "payment.create",
		method:  http.MethodPost,
		path:    "/payments",
		body:    p,
		headers: headers,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	var out listResponse[*payment.Payment]
	err := r.client.doJSON(ctx, call{
		op:     "payment.list_by_invoice",
		method: http.MethodGet,
		path:   "/invoices/" + escape(invoiceID) + "/payments",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}
