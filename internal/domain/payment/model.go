package payment

import (
	"time"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is a single payment registered against an invoice. Payments are
// immutable once the backend has accepted them.
type Payment struct {
	// Unique identifier of the payment, assigned by the backend
	ID string `json:"id"`
	// The invoice this payment settles
	InvoiceID string `json:"invoice_id"`
	// The date the payment was received
	Date time.Time `json:"date"`
	// The amount received, always positive and rounded to cents
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`
	// How the payment was made
	Method types.PaymentMethod `json:"method"`
	// Free text reference such as a cheque or transfer number (optional)
	Reference *string `json:"reference,omitempty"`
	// Free text note (optional)
	Note *string `json:"note,omitempty"`
	// Key the console sent with the create request so a retried submission is
	// not recorded twice
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	types.BaseModel
}

// Validate checks the fields a payment must carry. The amount is checked
// against the invoice balance by the ledger, not here.
func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			WithHint("Please select the invoice this payment is for").
			Mark(ierr.ErrValidation)
	}

	if err := p.Method.Validate(); err != nil {
		return err
	}

	if p.Date.IsZero() {
		return ierr.NewError("date is required").
			WithHint("Please provide the payment date").
			Mark(ierr.ErrValidation)
	}

	if !p.Amount.IsPositive() {
		return errInvalidAmount(p.Amount)
	}

	return nil
}

func errInvalidAmount(amount decimal.Decimal) error {
	return ierr.NewError("payment amount must be greater than zero").
		WithHint("Enter a payment amount greater than zero").
		WithReportableDetails(map[string]any{
			"amount": amount.String(),
		}).
		Mark(ierr.ErrInvalidAmount)
}
