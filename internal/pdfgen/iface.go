package pdfgen

import (
	"time"

	"github.com/guardpost/console/internal/domain/customer"
	"github.com/guardpost/console/internal/domain/invoice"
	"github.com/guardpost/console/internal/domain/payment"
)

// InvoiceData is everything a rendered invoice shows
type InvoiceData struct {
	Invoice  *invoice.Invoice
	Client   *customer.Client
	PostSite *customer.PostSite
	Ledger   *payment.Summary
	// RenderedAt is printed in the footer
	RenderedAt time.Time
}

// InvoiceRenderer renders a local preview of an invoice. The backend's
// rendering stays authoritative for delivered documents.
type InvoiceRenderer interface {
	RenderInvoice(data *InvoiceData) ([]byte, error)
}
