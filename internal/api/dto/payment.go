package dto

import (
	"time"

	"github.com/guardpost/console/internal/domain/payment"
	"github.com/guardpost/console/internal/types"
	"github.com/guardpost/console/internal/validator"
	"github.com/shopspring/decimal"
)

// RegisterPaymentRequest is the "register payment" form
type RegisterPaymentRequest struct {
	Date      *time.Time          `json:"date,omitempty"`
	Amount    decimal.Decimal     `json:"amount" swaggertype:"string"`
	Method    types.PaymentMethod `json:"method" validate:"required"`
	Reference *string             `json:"reference,omitempty" validate:"omitempty,max=255"`
	Note      *string             `json:"note,omitempty" validate:"omitempty,max=1000"`
	// SubmissionID identifies one press of the submit button. A resubmitted
	// form with the same ID is not recorded twice. When empty the request id
	// is used, which only dedupes clients that resend their X-Request-ID.
	SubmissionID string `json:"submission_id,omitempty" validate:"omitempty,max=64"`
}

func (r *RegisterPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Method.Validate()
}

// ToPayment builds the payment to register. The amount is rounded to cents;
// a missing date defaults to now.
func (r *RegisterPaymentRequest) ToPayment(invoiceID string, now time.Time) *payment.Payment {
	date := now
	if r.Date != nil {
		date = *r.Date
	}
	return &payment.Payment{
		InvoiceID: invoiceID,
		Date:      date,
		Amount:    types.RoundAmount(r.Amount),
		Method:    r.Method,
		Reference: r.Reference,
		Note:      r.Note,
	}
}

// PaymentResponse represents a payment response
type PaymentResponse struct {
	*payment.Payment
}

func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{Payment: p}
}

// LedgerResponse is the payment summary of an invoice, newest payment first
type LedgerResponse struct {
	*payment.Summary
}

func NewLedgerResponse(l *payment.Ledger) *LedgerResponse {
	return &LedgerResponse{Summary: l.Summary()}
}
