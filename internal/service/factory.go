package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/guardpost/console/internal/cache"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/domain/catalog"
	"github.com/guardpost/console/internal/domain/customer"
	"github.com/guardpost/console/internal/domain/invoice"
	"github.com/guardpost/console/internal/domain/payment"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/pdfgen"
	"github.com/guardpost/console/internal/s3"
	"github.com/guardpost/console/internal/sentry"
	"github.com/guardpost/console/internal/types"
	"github.com/guardpost/console/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger        *logger.Logger
	Config        *config.Configuration
	Cache         cache.Cache
	PDFRenderer   pdfgen.InvoiceRenderer
	SentryService *sentry.Service

	// WebhookPublisher queues invoice and payment events; nil disables them
	WebhookPublisher publisher.WebhookPublisher

	// DocumentStore archives sent invoice PDFs; nil when the archive is off
	DocumentStore s3.Service

	// Collaborators
	InvoiceRepo  invoice.Repository
	PaymentRepo  payment.Repository
	CatalogRepo  catalog.Repository
	CustomerRepo customer.Repository

	// Clock returns the current time; tests pin it
	Clock func() time.Time
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	pdfRenderer pdfgen.InvoiceRenderer,
	sentryService *sentry.Service,
	webhookPublisher publisher.WebhookPublisher,
	documentStore s3.Service,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	catalogRepo catalog.Repository,
	customerRepo customer.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		Cache:            cache,
		PDFRenderer:      pdfRenderer,
		SentryService:    sentryService,
		WebhookPublisher: webhookPublisher,
		DocumentStore:    documentStore,
		InvoiceRepo:      invoiceRepo,
		PaymentRepo:      paymentRepo,
		CatalogRepo:      catalogRepo,
		CustomerRepo:     customerRepo,
		Clock:            func() time.Time { return time.Now().UTC() },
	}
}

func (p ServiceParams) now() time.Time {
	if p.Clock == nil {
		return time.Now().UTC()
	}
	return p.Clock()
}

// publishWebhookEvent queues an event for delivery. Delivery is best effort
// and never fails the operation that raised it.
func (p ServiceParams) publishWebhookEvent(ctx context.Context, eventName string, data any) {
	if p.WebhookPublisher == nil {
		return
	}

	webhookPayload, err := json.Marshal(data)
	if err != nil {
		p.Logger.Errorw("failed to marshal webhook payload", "error", err)
		return
	}

	webhookEvent := &types.WebhookEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		EventName: eventName,
		TenantID:  types.GetTenantID(ctx),
		UserID:    types.GetUserID(ctx),
		Timestamp: p.now(),
		Payload:   json.RawMessage(webhookPayload),
	}
	if err := p.WebhookPublisher.PublishWebhook(ctx, webhookEvent); err != nil {
		p.Logger.Errorf("failed to publish %s event: %v", webhookEvent.EventName, err)
	}
}
