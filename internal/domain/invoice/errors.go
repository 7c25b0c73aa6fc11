package invoice

import (
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
)

func errNotEditable(inv *Invoice) error {
	return ierr.NewError("invoice is not editable").
		WithHintf("Invoice %s is %s and can no longer be edited", inv.InvoiceNumber, inv.Status).
		WithReportableDetails(map[string]any{
			"invoice_id": inv.ID,
			"status":     inv.Status,
		}).
		Mark(ierr.ErrInvalidOperation)
}

func errInvalidTransition(inv *Invoice, to types.InvoiceStatus) error {
	return ierr.NewError("invalid invoice status transition").
		WithHintf("Invoice %s cannot move from %s to %s", inv.InvoiceNumber, inv.Status, to).
		WithReportableDetails(map[string]any{
			"invoice_id": inv.ID,
			"from":       inv.Status,
			"to":         to,
		}).
		Mark(ierr.ErrInvalidOperation)
}

func errLineItemNotFound(id string) error {
	return ierr.NewError("line item not found").
		WithHintf("Line item %s does not exist on this invoice", id).
		WithReportableDetails(map[string]any{
			"line_item_id": id,
		}).
		Mark(ierr.ErrNotFound)
}
