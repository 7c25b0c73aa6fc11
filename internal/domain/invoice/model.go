package invoice

import (
	"context"
	"time"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Invoice is the aggregation root of the invoice editor. It owns its line
// items; payments reference it but live in the payment ledger.
type Invoice struct {
	ID            string              `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	PoSoNumber    *string             `json:"po_so_number,omitempty"`
	Title         string              `json:"title,omitempty"`
	Summary       string              `json:"summary,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	ClientID      string              `json:"client_id,omitempty"`
	PostSiteID    string              `json:"post_site_id,omitempty"`
	Date          time.Time           `json:"date"`
	DueDate       time.Time           `json:"due_date"`
	LineItems     []*LineItem         `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal" swaggertype:"string"`
	TaxTotal      decimal.Decimal     `json:"tax_total" swaggertype:"string"`
	Total         decimal.Decimal     `json:"total" swaggertype:"string"`
	Status        types.InvoiceStatus `json:"status"`
	types.BaseModel
}

// New creates a draft invoice with a generated number and one blank row
func New(ctx context.Context, issuedAt time.Time) *Invoice {
	date := issuedAt.UTC().Truncate(24 * time.Hour)
	inv := &Invoice{
		InvoiceNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		Date:          date,
		DueDate:       date.AddDate(0, 0, types.InvoiceDefaultDueDays),
		LineItems:     []*LineItem{NewBlankLineItem()},
		Status:        types.InvoiceStatusDraft,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	inv.Recalculate()
	return inv
}

// Recalculate refreshes the stored totals from the line items. It is the only
// place document totals are derived.
func (i *Invoice) Recalculate() Totals {
	totals := Aggregate(i.LineAmounts())
	i.Subtotal = totals.Subtotal
	i.TaxTotal = totals.TaxTotal
	i.Total = totals.GrandTotal
	return totals
}

// LineAmounts calculates every row in display order
func (i *Invoice) LineAmounts() []LineAmounts {
	return lo.Map(i.LineItems, func(li *LineItem, _ int) LineAmounts {
		return li.Amounts()
	})
}

// Totals returns the totals without mutating the invoice
func (i *Invoice) Totals() Totals {
	return Aggregate(i.LineAmounts())
}

// IsEditable reports whether header fields and line items can still change
func (i *Invoice) IsEditable() bool {
	return i.Status == types.InvoiceStatusDraft
}

// Validate validates the invoice as the editor would before saving it
func (i *Invoice) Validate() error {
	if err := i.Status.Validate(); err != nil {
		return err
	}

	if len(i.LineItems) == 0 {
		return ierr.NewError("invoice has no line items").
			WithHint("An invoice needs at least one line item").
			Mark(ierr.ErrValidation)
	}

	seen := make(map[string]struct{}, len(i.LineItems))
	for _, li := range i.LineItems {
		if li == nil {
			return ierr.NewError("invoice line item is nil").
				WithHint("Invalid line item").
				Mark(ierr.ErrValidation)
		}
		if err := li.Validate(); err != nil {
			return err
		}
		if li.ID == "" {
			continue
		}
		if _, dup := seen[li.ID]; dup {
			return ierr.NewError("duplicate line item id").
				WithHintf("Line item %s appears more than once", li.ID).
				Mark(ierr.ErrValidation)
		}
		seen[li.ID] = struct{}{}
	}

	if !i.Date.IsZero() && !i.DueDate.IsZero() && i.DueDate.Before(i.Date) {
		return ierr.NewError("due_date must not be before date").
			WithHint("Due date must be on or after the invoice date").
			WithReportableDetails(map[string]any{
				"date":     i.Date,
				"due_date": i.DueDate,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// AddLineItem appends a row. A nil item appends a blank row.
func (i *Invoice) AddLineItem(item *LineItem) (*LineItem, error) {
	if !i.IsEditable() {
		return nil, errNotEditable(i)
	}
	if item == nil {
		item = NewBlankLineItem()
	}
	if item.ID == "" {
		item.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM)
	}
	if _, ok := i.findLineItem(item.ID); ok {
		return nil, ierr.NewError("duplicate line item id").
			WithHintf("Line item %s already exists", item.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	i.LineItems = append(i.LineItems, item)
	i.Recalculate()
	return item, nil
}

// UpdateLineItem applies a row edit; the last write to a field wins
func (i *Invoice) UpdateLineItem(id string, update LineItemUpdate) (*LineItem, error) {
	if !i.IsEditable() {
		return nil, errNotEditable(i)
	}
	idx, ok := i.findLineItem(id)
	if !ok {
		return nil, errLineItemNotFound(id)
	}

	item := i.LineItems[idx]
	update.apply(item)
	i.Recalculate()
	return item, nil
}

// RemoveLineItem removes a row. Removing the last row leaves a blank one
// behind so a draft always has at least one line item.
func (i *Invoice) RemoveLineItem(id string) error {
	if !i.IsEditable() {
		return errNotEditable(i)
	}
	idx, ok := i.findLineItem(id)
	if !ok {
		return errLineItemNotFound(id)
	}

	i.LineItems = append(i.LineItems[:idx], i.LineItems[idx+1:]...)
	if len(i.LineItems) == 0 {
		i.LineItems = []*LineItem{NewBlankLineItem()}
	}
	i.Recalculate()
	return nil
}

// ReplaceLineItems swaps the whole row set, as a full editor save does
func (i *Invoice) ReplaceLineItems(items []*LineItem) error {
	if !i.IsEditable() {
		return errNotEditable(i)
	}
	if len(items) == 0 {
		items = []*LineItem{NewBlankLineItem()}
	}
	for _, item := range items {
		if item != nil && item.ID == "" {
			item.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM)
		}
	}
	i.LineItems = items
	i.Recalculate()
	return nil
}

func (i *Invoice) findLineItem(id string) (int, bool) {
	_, idx, ok := lo.FindIndexOf(i.LineItems, func(li *LineItem) bool {
		return li.ID == id
	})
	return idx, ok
}
