package payment

import (
	"sort"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Paid is the cumulative amount of the given payments
func Paid(payments []*Payment) decimal.Decimal {
	return lo.Reduce(payments, func(sum decimal.Decimal, p *Payment, _ int) decimal.Decimal {
		if p == nil {
			return sum
		}
		return sum.Add(p.Amount)
	}, decimal.Zero)
}

// RemainingBalance is what is still owed on an invoice. It goes negative when
// the invoice is overpaid within tolerance.
func RemainingBalance(invoiceTotal decimal.Decimal, payments []*Payment) decimal.Decimal {
	return types.RoundAmount(invoiceTotal.Sub(Paid(payments)))
}

// IsFullyPaid reports whether the payments cover the invoice within
// types.PaymentTolerance
func IsFullyPaid(invoiceTotal decimal.Decimal, payments []*Payment) bool {
	return RemainingBalance(invoiceTotal, payments).LessThanOrEqual(types.PaymentTolerance)
}

// ValidateNewPayment checks a payment amount against the remaining balance
// before it is registered
func ValidateNewPayment(amount, invoiceTotal decimal.Decimal, payments []*Payment) error {
	if !amount.IsPositive() {
		return errInvalidAmount(amount)
	}

	remaining := RemainingBalance(invoiceTotal, payments)
	if amount.GreaterThan(remaining.Add(types.PaymentTolerance)) {
		return ierr.NewError("payment amount exceeds remaining balance").
			WithHintf("The remaining balance is %s", types.FormatAmount(remaining)).
			WithReportableDetails(map[string]any{
				"amount":    types.FormatAmount(amount),
				"remaining": types.FormatAmount(remaining),
			}).
			Mark(ierr.ErrExceedsBalance)
	}

	return nil
}

// Ledger is the append-only list of payments of one invoice, newest first
type Ledger struct {
	invoiceID    string
	invoiceTotal decimal.Decimal
	payments     []*Payment
}

// NewLedger builds a ledger from the payments the backend returned. Payments
// are ordered newest first by creation time, then by payment date, the same
// order Record produces.
func NewLedger(invoiceID string, invoiceTotal decimal.Decimal, payments []*Payment) *Ledger {
	entries := lo.Filter(payments, func(p *Payment, _ int) bool {
		return p != nil
	})
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Date.After(entries[j].Date)
	})

	return &Ledger{
		invoiceID:    invoiceID,
		invoiceTotal: invoiceTotal,
		payments:     entries,
	}
}

func (l *Ledger) InvoiceID() string {
	return l.invoiceID
}

func (l *Ledger) InvoiceTotal() decimal.Decimal {
	return l.invoiceTotal
}

func (l *Ledger) Paid() decimal.Decimal {
	return Paid(l.payments)
}

func (l *Ledger) RemainingBalance() decimal.Decimal {
	return RemainingBalance(l.invoiceTotal, l.payments)
}

func (l *Ledger) IsFullyPaid() bool {
	return IsFullyPaid(l.invoiceTotal, l.payments)
}

func (l *Ledger) ValidateNewPayment(amount decimal.Decimal) error {
	return ValidateNewPayment(amount, l.invoiceTotal, l.payments)
}

// Record appends an accepted payment. Prior entries are never changed; a
// payment that fails validation leaves the ledger untouched.
func (l *Ledger) Record(p *Payment) error {
	if p == nil {
		return ierr.NewError("payment is nil").
			Mark(ierr.ErrValidation)
	}

	if p.InvoiceID != l.invoiceID {
		return ierr.NewError("payment belongs to another invoice").
			WithHint("The payment does not belong to this invoice").
			WithReportableDetails(map[string]any{
				"invoice_id":         l.invoiceID,
				"payment_invoice_id": p.InvoiceID,
			}).
			Mark(ierr.ErrValidation)
	}

	if err := l.ValidateNewPayment(p.Amount); err != nil {
		return err
	}

	l.payments = append([]*Payment{p}, l.payments...)
	return nil
}

// Payments returns a copy of the entries, newest first
func (l *Ledger) Payments() []*Payment {
	out := make([]*Payment, len(l.payments))
	copy(out, l.payments)
	return out
}

func (l *Ledger) Len() int {
	return len(l.payments)
}

// Summary is the read model of a ledger the console shows next to an invoice
type Summary struct {
	InvoiceID     string                     `json:"invoice_id"`
	Total         decimal.Decimal            `json:"total" swaggertype:"string"`
	Paid          decimal.Decimal            `json:"paid" swaggertype:"string"`
	Remaining     decimal.Decimal            `json:"remaining" swaggertype:"string"`
	FullyPaid     bool                       `json:"fully_paid"`
	DisplayStatus types.InvoiceDisplayStatus `json:"display_status"`
	Payments      []*Payment                 `json:"payments"`
}

func (l *Ledger) Summary() *Summary {
	status := types.InvoiceDisplayStatusPending
	if l.IsFullyPaid() {
		status = types.InvoiceDisplayStatusPaid
	}

	return &Summary{
		InvoiceID:     l.invoiceID,
		Total:         l.invoiceTotal,
		Paid:          l.Paid(),
		Remaining:     l.RemainingBalance(),
		FullyPaid:     l.IsFullyPaid(),
		DisplayStatus: status,
		Payments:      l.Payments(),
	}
}
