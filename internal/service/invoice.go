package service

import (
	"context"
	"fmt"

	"github.com/guardpost/console/internal/api/dto"
	"github.com/guardpost/console/internal/domain/invoice"
	"github.com/guardpost/console/internal/domain/payment"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/pdfgen"
	"github.com/guardpost/console/internal/s3"
	"github.com/guardpost/console/internal/types"
	webhookDto "github.com/guardpost/console/internal/webhook/dto"
	"github.com/h2non/filetype"
	"github.com/sourcegraph/conc/pool"
)

type InvoiceService interface {
	// Calculate prices rows without persisting anything
	Calculate(ctx context.Context, req dto.CalculateInvoiceRequest) (*dto.CalculateInvoiceResponse, error)
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)

	AddLineItem(ctx context.Context, id string, req dto.AddLineItemRequest) (*dto.InvoiceResponse, error)
	UpdateLineItem(ctx context.Context, id, lineItemID string, req dto.UpdateLineItemRequest) (*dto.InvoiceResponse, error)
	RemoveLineItem(ctx context.Context, id, lineItemID string) (*dto.InvoiceResponse, error)

	PreviewInvoice(ctx context.Context, id string) (*dto.PreviewInvoiceResponse, error)
	SendInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	GetInvoiceStatus(ctx context.Context, id string) (*dto.InvoiceStatusResponse, error)

	DownloadDocument(ctx context.Context, id string, format types.DocumentFormat) (*dto.DocumentResponse, error)
	RenderPreview(ctx context.Context, id string) (*dto.DocumentResponse, error)

	// GetDocumentURL archives a sent invoice's PDF on first use and returns
	// a presigned link to it
	GetDocumentURL(ctx context.Context, id string) (*dto.DocumentURLResponse, error)
}

type invoiceService struct {
	ServiceParams
	catalog CatalogService
}

func NewInvoiceService(params ServiceParams, catalog CatalogService) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		catalog:       catalog,
	}
}

func (s *invoiceService) Calculate(ctx context.Context, req dto.CalculateInvoiceRequest) (*dto.CalculateInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	items := make([]*invoice.LineItem, 0, len(req.Items))
	for i := range req.Items {
		items = append(items, req.Items[i].ToLineItem())
	}
	if err := s.catalog.ResolveLineItems(ctx, items); err != nil {
		return nil, err
	}

	return dto.NewCalculateInvoiceResponse(items), nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := req.ToInvoice(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.catalog.ResolveLineItems(ctx, inv.LineItems); err != nil {
		return nil, err
	}
	inv.Recalculate()

	created, err := s.InvoiceRepo.Create(ctx, inv)
	if err != nil {
		s.Logger.Errorw("failed to create invoice",
			"invoice_number", inv.InvoiceNumber,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", created.ID,
		"invoice_number", created.InvoiceNumber,
		"total", created.Total,
	)
	s.publishInvoiceEvent(ctx, types.WebhookEventInvoiceCreated, created.ID)
	return s.refetch(ctx, created.ID)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.edit(ctx, id, func(inv *invoice.Invoice) error {
		if err := req.Apply(inv); err != nil {
			return err
		}
		return s.catalog.ResolveLineItems(ctx, inv.LineItems)
	})
}

func (s *invoiceService) AddLineItem(ctx context.Context, id string, req dto.AddLineItemRequest) (*dto.InvoiceResponse, error) {
	return s.edit(ctx, id, func(inv *invoice.Invoice) error {
		item := req.ToLineItem()
		if err := s.catalog.ResolveLineItems(ctx, []*invoice.LineItem{item}); err != nil {
			return err
		}
		if err := item.Validate(); err != nil {
			return err
		}
		_, err := inv.AddLineItem(item)
		return err
	})
}

func (s *invoiceService) UpdateLineItem(ctx context.Context, id, lineItemID string, req dto.UpdateLineItemRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.edit(ctx, id, func(inv *invoice.Invoice) error {
		update := req.ToUpdate()

		// a newly selected entry replaces the row's name, price and tax;
		// fields set in the same request are applied on top of it
		if req.CatalogEntryID != nil && *req.CatalogEntryID != "" {
			item, err := inv.UpdateLineItem(lineItemID, invoice.LineItemUpdate{})
			if err != nil {
				return err
			}
			if err := s.catalog.ApplyEntry(ctx, item, *req.CatalogEntryID); err != nil {
				return err
			}
			update.CatalogEntryID = nil
		}

		item, err := inv.UpdateLineItem(lineItemID, update)
		if err != nil {
			return err
		}
		return item.Validate()
	})
}

func (s *invoiceService) RemoveLineItem(ctx context.Context, id, lineItemID string) (*dto.InvoiceResponse, error) {
	return s.edit(ctx, id, func(inv *invoice.Invoice) error {
		return inv.RemoveLineItem(lineItemID)
	})
}

// edit loads a draft, applies fn to it and saves it. Nothing is written when
// fn fails.
func (s *invoiceService) edit(ctx context.Context, id string, fn func(inv *invoice.Invoice) error) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.IsEditable() {
		return nil, ierr.NewError("invoice is not editable").
			WithHintf("Invoice %s is %s and can no longer be edited", inv.InvoiceNumber, inv.Status).
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"status":     inv.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := fn(inv); err != nil {
		return nil, err
	}

	inv.Recalculate()
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		s.Logger.Errorw("failed to update invoice",
			"invoice_id", id,
			"error", err,
		)
		return nil, err
	}
	return s.refetch(ctx, id)
}

// PreviewInvoice resolves the billing target and moves the draft to PREVIEWED
func (s *invoiceService) PreviewInvoice(ctx context.Context, id string) (*dto.PreviewInvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveBillingTarget(ctx, inv)
	if err != nil {
		return nil, err
	}

	if err := inv.Preview(target); err != nil {
		s.Logger.Infow("invoice preview blocked",
			"invoice_id", id,
			"status", inv.Status,
			"error", err,
		)
		return nil, err
	}

	if _, err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.publishInvoiceEvent(ctx, types.WebhookEventInvoicePreviewed, id)

	resp, err := s.refetch(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PreviewInvoiceResponse{
		Invoice:  resp,
		Client:   target.Client,
		PostSite: target.PostSite,
	}, nil
}

// resolveBillingTarget loads the client and post site concurrently. An
// unset or unknown reference leaves that side of the target nil so the
// lifecycle reports a missing billing target.
func (s *invoiceService) resolveBillingTarget(ctx context.Context, inv *invoice.Invoice) (invoice.BillingTarget, error) {
	var target invoice.BillingTarget

	p := pool.New().WithContext(ctx).WithFirstError()
	if inv.ClientID != "" {
		p.Go(func(ctx context.Context) error {
			c, err := s.CustomerRepo.GetClient(ctx, inv.ClientID)
			if err != nil && !ierr.IsNotFound(err) {
				return err
			}
			target.Client = c
			return nil
		})
	}
	if inv.PostSiteID != "" {
		p.Go(func(ctx context.Context) error {
			site, err := s.CustomerRepo.GetPostSite(ctx, inv.PostSiteID)
			if err != nil && !ierr.IsNotFound(err) {
				return err
			}
			target.PostSite = site
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return invoice.BillingTarget{}, err
	}
	return target, nil
}

// SendInvoice checks the payment gate locally, asks the backend to deliver
// and returns the invoice as the backend now has it. A blocked send leaves
// the invoice PREVIEWED.
func (s *invoiceService) SendInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, ledger, err := s.loadWithLedger(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := inv.MarkSent(ledger); err != nil {
		s.Logger.Infow("invoice send blocked",
			"invoice_id", id,
			"status", inv.Status,
			"remaining", ledger.RemainingBalance(),
		)
		return nil, err
	}

	if err := s.InvoiceRepo.Send(ctx, id); err != nil {
		s.Logger.Errorw("backend rejected invoice send",
			"invoice_id", id,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("sent invoice",
		"invoice_id", id,
		"invoice_number", inv.InvoiceNumber,
	)
	s.publishInvoiceEvent(ctx, types.WebhookEventInvoiceSent, id)
	return s.refetch(ctx, id)
}

func (s *invoiceService) GetInvoiceStatus(ctx context.Context, id string) (*dto.InvoiceStatusResponse, error) {
	inv, ledger, err := s.loadWithLedger(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.InvoiceStatusResponse{
		InvoiceID:     inv.ID,
		Status:        inv.Status,
		DisplayStatus: inv.DisplayStatus(ledger),
		CanSend:       inv.CanSend(ledger),
		Total:         ledger.InvoiceTotal(),
		Paid:          ledger.Paid(),
		Remaining:     ledger.RemainingBalance(),
	}, nil
}

// DownloadDocument fetches the backend's rendering and checks it is what
// was asked for
func (s *invoiceService) DownloadDocument(ctx context.Context, id string, format types.DocumentFormat) (*dto.DocumentResponse, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.InvoiceRepo.DownloadDocument(ctx, id, format)
	if err != nil {
		return nil, err
	}

	contentType := format.ContentType()
	kind, _ := filetype.Match(content)
	switch {
	case format == types.DocumentFormatPDF && kind.Extension != "pdf":
		return nil, ierr.NewError("backend returned a document that is not a pdf").
			WithHint("The invoice document could not be downloaded").
			WithReportableDetails(map[string]any{
				"invoice_id": id,
				"detected":   kind.MIME.Value,
			}).
			Mark(ierr.ErrHTTPClient)
	case kind != filetype.Unknown:
		contentType = kind.MIME.Value
	}

	return &dto.DocumentResponse{
		Content:     content,
		ContentType: contentType,
		Filename:    fmt.Sprintf("%s.%s", inv.InvoiceNumber, format),
	}, nil
}

// RenderPreview renders a local PDF of the invoice as it is now, with its
// billing target and ledger when they resolve
func (s *invoiceService) RenderPreview(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	inv, ledger, err := s.loadWithLedger(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveBillingTarget(ctx, inv)
	if err != nil {
		return nil, err
	}

	content, err := s.PDFRenderer.RenderInvoice(&pdfgen.InvoiceData{
		Invoice:    inv,
		Client:     target.Client,
		PostSite:   target.PostSite,
		Ledger:     ledger.Summary(),
		RenderedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	return &dto.DocumentResponse{
		Content:     content,
		ContentType: types.DocumentFormatPDF.ContentType(),
		Filename:    fmt.Sprintf("%s-preview.pdf", inv.InvoiceNumber),
	}, nil
}

func (s *invoiceService) GetDocumentURL(ctx context.Context, id string) (*dto.DocumentURLResponse, error) {
	if s.DocumentStore == nil {
		return nil, ierr.NewError("invoice archive is not configured").
			WithHint("Invoice documents are not archived on this deployment").
			Mark(ierr.ErrInvalidOperation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.Status != types.InvoiceStatusSent {
		return nil, ierr.NewError("only sent invoices are archived").
			WithHint("Send the invoice before requesting its document link").
			WithReportableDetails(map[string]any{
				"invoice_id": id,
				"status":     inv.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	tenantID := types.GetTenantID(ctx)
	exists, err := s.DocumentStore.Exists(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if !exists {
		doc, err := s.DownloadDocument(ctx, id, types.DocumentFormatPDF)
		if err != nil {
			return nil, err
		}

		if err := s.DocumentStore.UploadDocument(ctx, s3.NewPdfDocument(tenantID, id, doc.Content)); err != nil {
			return nil, err
		}

		s.Logger.Infow("archived invoice document",
			"invoice_id", id,
			"invoice_number", inv.InvoiceNumber,
			"size", len(doc.Content),
		)
	}

	url, err := s.DocumentStore.GetPresignedUrl(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	return &dto.DocumentURLResponse{
		InvoiceID: id,
		URL:       url.URL,
		ExpiresAt: url.ExpiresAt,
	}, nil
}

func (s *invoiceService) loadWithLedger(ctx context.Context, id string) (*invoice.Invoice, *payment.Ledger, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.PaymentRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return inv, payment.NewLedger(inv.ID, inv.Totals().GrandTotal, payments), nil
}

// refetch reads an invoice back after a write so callers see the backend's copy
func (s *invoiceService) refetch(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) publishInvoiceEvent(ctx context.Context, eventName, invoiceID string) {
	s.publishWebhookEvent(ctx, eventName, webhookDto.InternalInvoiceEvent{
		InvoiceID: invoiceID,
		TenantID:  types.GetTenantID(ctx),
	})
}
