package payment

import "context"

// Repository is the payment collaborator, scoped to the tenant in ctx
type Repository interface {
	// Create registers a payment. The backend re-validates the amount against
	// the invoice balance and rejects with an exceeds balance error when
	// concurrent submissions would overpay.
	Create(ctx context.Context, payment *Payment) (*Payment, error)

	// ListByInvoice lists the payments of an invoice
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)
}
