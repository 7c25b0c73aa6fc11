package invoice

import (
	"context"

	"github.com/guardpost/console/internal/types"
)

// Repository is the invoice collaborator. Every call is scoped to the tenant
// in ctx; the backend is the system of record.
type Repository interface {
	// Create persists a new invoice and returns the stored copy
	Create(ctx context.Context, invoice *Invoice) (*Invoice, error)

	// Get fetches an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update replaces an invoice and returns the stored copy
	Update(ctx context.Context, invoice *Invoice) (*Invoice, error)

	// Send asks the backend to deliver the invoice. The backend re-checks
	// payment independently and may reject with a payment incomplete error.
	Send(ctx context.Context, id string) error

	// DownloadDocument fetches a rendered copy of the invoice
	DownloadDocument(ctx context.Context, id string, format types.DocumentFormat) ([]byte, error)
}
