package invoice

import (
	"github.com/guardpost/console/internal/domain/customer"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	"github.com/shopspring/decimal"
)

// BillingTarget is the resolved client and post site an invoice bills
type BillingTarget struct {
	Client   *customer.Client
	PostSite *customer.PostSite
}

// FullyPaidChecker is what the lifecycle needs to know about an invoice's payments
type FullyPaidChecker interface {
	IsFullyPaid() bool
	RemainingBalance() decimal.Decimal
}

// Preview moves a draft to PREVIEWED. It requires the invoice's client and
// post site to be resolved, and the site to belong to the client.
func (i *Invoice) Preview(target BillingTarget) error {
	if i.Status != types.InvoiceStatusDraft {
		return errInvalidTransition(i, types.InvoiceStatusPreviewed)
	}

	if err := i.checkBillingTarget(target); err != nil {
		return err
	}

	if err := i.Validate(); err != nil {
		return err
	}

	i.Recalculate()
	i.Status = types.InvoiceStatusPreviewed
	return nil
}

func (i *Invoice) checkBillingTarget(target BillingTarget) error {
	if i.ClientID == "" || target.Client == nil || target.Client.ID != i.ClientID {
		return ierr.NewError("client is not resolved").
			WithHint("Select a client before previewing the invoice").
			WithReportableDetails(map[string]any{
				"client_id": i.ClientID,
			}).
			Mark(ierr.ErrMissingBillingTarget)
	}

	if i.PostSiteID == "" || target.PostSite == nil || target.PostSite.ID != i.PostSiteID {
		return ierr.NewError("post site is not resolved").
			WithHint("Select a post site before previewing the invoice").
			WithReportableDetails(map[string]any{
				"post_site_id": i.PostSiteID,
			}).
			Mark(ierr.ErrMissingBillingTarget)
	}

	if !target.PostSite.BelongsTo(target.Client.ID) {
		return ierr.NewError("post site belongs to another client").
			WithHintf("Post site %s is not a location of client %s", target.PostSite.Name, target.Client.Name).
			WithReportableDetails(map[string]any{
				"client_id":    i.ClientID,
				"post_site_id": i.PostSiteID,
			}).
			Mark(ierr.ErrMissingBillingTarget)
	}

	return nil
}

// CanSend is the gate for the send action. The console disables sending
// rather than letting the attempt fail.
func (i *Invoice) CanSend(payments FullyPaidChecker) bool {
	return i.Status == types.InvoiceStatusPreviewed && payments != nil && payments.IsFullyPaid()
}

// MarkSent moves a previewed invoice to SENT. A blocked transition leaves the
// invoice untouched.
func (i *Invoice) MarkSent(payments FullyPaidChecker) error {
	if i.Status != types.InvoiceStatusPreviewed {
		return errInvalidTransition(i, types.InvoiceStatusSent)
	}

	if payments == nil || !payments.IsFullyPaid() {
		remaining := decimal.Zero
		if payments != nil {
			remaining = payments.RemainingBalance()
		}
		return ierr.NewError("invoice is not fully paid").
			WithHintf("Register the remaining %s before sending the invoice", types.FormatAmount(remaining)).
			WithReportableDetails(map[string]any{
				"invoice_id": i.ID,
				"remaining":  types.FormatAmount(remaining),
			}).
			Mark(ierr.ErrPaymentIncomplete)
	}

	i.Status = types.InvoiceStatusSent
	return nil
}

// DisplayStatus is PAID when the payments cover the invoice, PENDING
// otherwise. It is independent of the lifecycle status.
func (i *Invoice) DisplayStatus(payments FullyPaidChecker) types.InvoiceDisplayStatus {
	if payments != nil && payments.IsFullyPaid() {
		return types.InvoiceDisplayStatusPaid
	}
	return types.InvoiceDisplayStatusPending
}
