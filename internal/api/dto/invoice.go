package dto

import (
	"context"
	"time"

	"github.com/guardpost/console/internal/domain/customer"
	"github.com/guardpost/console/internal/domain/invoice"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	"github.com/guardpost/console/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one row of the invoice editor
type LineItemRequest struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name" validate:"max=255"`
	Quantity       decimal.Decimal `json:"quantity" swaggertype:"string"`
	Rate           decimal.Decimal `json:"rate" swaggertype:"string"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent" swaggertype:"string"`
	CatalogEntryID *string         `json:"catalog_entry_id,omitempty"`
}

func (r *LineItemRequest) ToLineItem() *invoice.LineItem {
	item := invoice.NewLineItem(r.Name, r.Quantity, r.Rate, r.TaxRatePercent)
	if r.ID != "" {
		item.ID = r.ID
	}
	if r.CatalogEntryID != nil && *r.CatalogEntryID != "" {
		item.CatalogEntryID = r.CatalogEntryID
	}
	return item
}

func toLineItems(reqs []LineItemRequest) []*invoice.LineItem {
	return lo.Map(reqs, func(r LineItemRequest, _ int) *invoice.LineItem {
		return r.ToLineItem()
	})
}

// CalculateInvoiceRequest prices a set of rows without saving anything
type CalculateInvoiceRequest struct {
	Items []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r *CalculateInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// LineItemResponse is a row with its calculated amounts
type LineItemResponse struct {
	*invoice.LineItem
	LineAmount decimal.Decimal `json:"line_amount" swaggertype:"string"`
	TaxAmount  decimal.Decimal `json:"tax_amount" swaggertype:"string"`
	LineTotal  decimal.Decimal `json:"line_total" swaggertype:"string"`
}

func NewLineItemResponse(li *invoice.LineItem) *LineItemResponse {
	amounts := li.Amounts()
	return &LineItemResponse{
		LineItem:   li,
		LineAmount: amounts.LineAmount,
		TaxAmount:  amounts.TaxAmount,
		LineTotal:  amounts.LineTotal,
	}
}

// CalculateInvoiceResponse is the priced rows and document totals
type CalculateInvoiceResponse struct {
	Items    []*LineItemResponse `json:"items"`
	Subtotal decimal.Decimal     `json:"subtotal" swaggertype:"string"`
	TaxTotal decimal.Decimal     `json:"tax_total" swaggertype:"string"`
	Total    decimal.Decimal     `json:"total" swaggertype:"string"`
}

func NewCalculateInvoiceResponse(items []*invoice.LineItem) *CalculateInvoiceResponse {
	rows := lo.Map(items, func(li *invoice.LineItem, _ int) *LineItemResponse {
		return NewLineItemResponse(li)
	})
	totals := invoice.Aggregate(lo.Map(items, func(li *invoice.LineItem, _ int) invoice.LineAmounts {
		return li.Amounts()
	}))
	return &CalculateInvoiceResponse{
		Items:    rows,
		Subtotal: totals.Subtotal,
		TaxTotal: totals.TaxTotal,
		Total:    totals.GrandTotal,
	}
}

// CreateInvoiceRequest is the editor's first save of a new invoice
type CreateInvoiceRequest struct {
	InvoiceNumber *string           `json:"invoice_number,omitempty" validate:"omitempty,max=64"`
	PoSoNumber    *string           `json:"po_so_number,omitempty" validate:"omitempty,max=64"`
	Title         string            `json:"title,omitempty" validate:"max=255"`
	Summary       string            `json:"summary,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	ClientID      string            `json:"client_id,omitempty"`
	PostSiteID    string            `json:"post_site_id,omitempty"`
	Date          *time.Time        `json:"date,omitempty"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	Items         []LineItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validateDates(r.Date, r.DueDate)
}

// ToInvoice builds a draft. Missing dates default to now and now plus the
// default payment term; a request without items gets one blank row.
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context, now time.Time) (*invoice.Invoice, error) {
	issued := now
	if r.Date != nil {
		issued = *r.Date
	}

	inv := invoice.New(ctx, issued)
	inv.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	if r.InvoiceNumber != nil && *r.InvoiceNumber != "" {
		inv.InvoiceNumber = *r.InvoiceNumber
	}
	inv.PoSoNumber = r.PoSoNumber
	inv.Title = r.Title
	inv.Summary = r.Summary
	inv.Notes = r.Notes
	inv.ClientID = r.ClientID
	inv.PostSiteID = r.PostSiteID
	if r.DueDate != nil {
		inv.DueDate = *r.DueDate
	}

	if len(r.Items) > 0 {
		if err := inv.ReplaceLineItems(toLineItems(r.Items)); err != nil {
			return nil, err
		}
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateInvoiceRequest edits a draft. Nil fields are left alone; Items
// replaces every row when present.
type UpdateInvoiceRequest struct {
	PoSoNumber *string            `json:"po_so_number,omitempty" validate:"omitempty,max=64"`
	Title      *string            `json:"title,omitempty" validate:"omitempty,max=255"`
	Summary    *string            `json:"summary,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	ClientID   *string            `json:"client_id,omitempty"`
	PostSiteID *string            `json:"post_site_id,omitempty"`
	Date       *time.Time         `json:"date,omitempty"`
	DueDate    *time.Time         `json:"due_date,omitempty"`
	Items      *[]LineItemRequest `json:"items,omitempty"`
}

func (r *UpdateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return validateDates(r.Date, r.DueDate)
}

// Apply writes the request onto a draft invoice
func (r *UpdateInvoiceRequest) Apply(inv *invoice.Invoice) error {
	if !inv.IsEditable() {
		return ierr.NewError("invoice is not editable").
			WithHintf("Invoice %s is %s and can no longer be edited", inv.InvoiceNumber, inv.Status).
			Mark(ierr.ErrInvalidOperation)
	}

	if r.PoSoNumber != nil {
		inv.PoSoNumber = r.PoSoNumber
	}
	if r.Title != nil {
		inv.Title = *r.Title
	}
	if r.Summary != nil {
		inv.Summary = *r.Summary
	}
	if r.Notes != nil {
		inv.Notes = *r.Notes
	}
	if r.ClientID != nil {
		inv.ClientID = *r.ClientID
	}
	if r.PostSiteID != nil {
		inv.PostSiteID = *r.PostSiteID
	}
	if r.Date != nil {
		inv.Date = *r.Date
	}
	if r.DueDate != nil {
		inv.DueDate = *r.DueDate
	}
	if r.Items != nil {
		if err := inv.ReplaceLineItems(toLineItems(*r.Items)); err != nil {
			return err
		}
	}

	inv.Recalculate()
	return inv.Validate()
}

// AddLineItemRequest appends a row, either free text or copied from a
// catalog entry
type AddLineItemRequest struct {
	LineItemRequest
}

// UpdateLineItemRequest edits one row; nil fields are left alone
type UpdateLineItemRequest struct {
	Name           *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Quantity       *decimal.Decimal `json:"quantity,omitempty" swaggertype:"string"`
	Rate           *decimal.Decimal `json:"rate,omitempty" swaggertype:"string"`
	TaxRatePercent *decimal.Decimal `json:"tax_rate_percent,omitempty" swaggertype:"string"`
	CatalogEntryID *string          `json:"catalog_entry_id,omitempty"`
}

func (r *UpdateLineItemRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpdateLineItemRequest) ToUpdate() invoice.LineItemUpdate {
	return invoice.LineItemUpdate{
		Name:           r.Name,
		Quantity:       r.Quantity,
		Rate:           r.Rate,
		TaxRatePercent: r.TaxRatePercent,
		CatalogEntryID: r.CatalogEntryID,
	}
}

// InvoiceResponse is an invoice with per row amounts
type InvoiceResponse struct {
	*invoice.Invoice
	Items []*LineItemResponse `json:"items"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice: inv,
		Items: lo.Map(inv.LineItems, func(li *invoice.LineItem, _ int) *LineItemResponse {
			return NewLineItemResponse(li)
		}),
	}
}

// PreviewInvoiceResponse is the read-only summary shown after preview
type PreviewInvoiceResponse struct {
	Invoice  *InvoiceResponse   `json:"invoice"`
	Client   *customer.Client   `json:"client"`
	PostSite *customer.PostSite `json:"post_site"`
}

// InvoiceStatusResponse combines the lifecycle status with the payment
// derived display status and the send gate
type InvoiceStatusResponse struct {
	InvoiceID     string                     `json:"invoice_id"`
	Status        types.InvoiceStatus        `json:"status"`
	DisplayStatus types.InvoiceDisplayStatus `json:"display_status"`
	CanSend       bool                       `json:"can_send"`
	Total         decimal.Decimal            `json:"total" swaggertype:"string"`
	Paid          decimal.Decimal            `json:"paid" swaggertype:"string"`
	Remaining     decimal.Decimal            `json:"remaining" swaggertype:"string"`
}

// DocumentResponse is a rendered invoice
type DocumentResponse struct {
	Content     []byte
	ContentType string
	Filename    string
}

// DocumentURLResponse is a presigned link to an archived invoice PDF
type DocumentURLResponse struct {
	InvoiceID string    `json:"invoice_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func validateDates(date, dueDate *time.Time) error {
	if date != nil && dueDate != nil && dueDate.Before(*date) {
		return ierr.NewError("due_date must not be before date").
			WithHint("Due date must be on or after the invoice date").
			WithReportableDetails(map[string]any{
				"date":     date,
				"due_date": dueDate,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
