package types

import (
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus is the position of an invoice in its editing lifecycle.
// Transitions only move forward: DRAFT -> PREVIEWED -> SENT.
type InvoiceStatus string

const (
	// InvoiceStatusDraft indicates the invoice header and line items can still be edited
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	// InvoiceStatusPreviewed indicates the invoice has a resolved billing target and is read-only
	InvoiceStatusPreviewed InvoiceStatus = "PREVIEWED"
	// InvoiceStatusSent indicates the invoice was delivered to the client
	InvoiceStatusSent InvoiceStatus = "SENT"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusPreviewed,
		InvoiceStatusSent,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceDisplayStatus is derived from the payment ledger and never stored
type InvoiceDisplayStatus string

const (
	InvoiceDisplayStatusPaid    InvoiceDisplayStatus = "PAID"
	InvoiceDisplayStatusPending InvoiceDisplayStatus = "PENDING"
)

func (s InvoiceDisplayStatus) String() string {
	return string(s)
}

// DocumentFormat is a rendering of an invoice the backend can produce
type DocumentFormat string

const (
	DocumentFormatPDF  DocumentFormat = "pdf"
	DocumentFormatHTML DocumentFormat = "html"
)

func (f DocumentFormat) String() string {
	return string(f)
}

func (f DocumentFormat) Validate() error {
	allowed := []DocumentFormat{
		DocumentFormatPDF,
		DocumentFormatHTML,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid document format").
			WithHint("Please provide a valid document format").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

const (
	// InvoiceDefaultDueDays is the default number of days after the issue date when payment is due
	InvoiceDefaultDueDays = 30
)

// ContentType is the MIME type a document of this format is served with
func (f DocumentFormat) ContentType() string {
	switch f {
	case DocumentFormatPDF:
		return "application/pdf"
	case DocumentFormatHTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}
