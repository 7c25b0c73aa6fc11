package payload

import (
	"context"
	"encoding/json"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	webhookDto "github.com/guardpost/console/internal/webhook/dto"
)

type InvoicePayloadBuilder struct {
	services *Services
}

func NewInvoicePayloadBuilder(services *Services) PayloadBuilder {
	return &InvoicePayloadBuilder{
		services: services,
	}
}

// BuildPayload builds the webhook payload for invoice events
func (b *InvoicePayloadBuilder) BuildPayload(ctx context.Context, eventType string, data json.RawMessage) (json.RawMessage, error) {
	var parsedPayload webhookDto.InternalInvoiceEvent
	if err := json.Unmarshal(data, &parsedPayload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unable to unmarshal invoice event payload").
			Mark(ierr.ErrInvalidOperation)
	}

	invoiceID, tenantID := parsedPayload.InvoiceID, parsedPayload.TenantID
	if invoiceID == "" || tenantID == "" {
		return nil, ierr.NewError("invalid data for invoice event").
			WithHint("Please provide a valid invoice ID and tenant ID").
			WithReportableDetails(map[string]any{
				"event_type": eventType,
				"invoice_id": invoiceID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	ctx = types.SetTenantID(ctx, tenantID)

	invoice, err := b.services.InvoiceService.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	status, err := b.services.InvoiceService.GetInvoiceStatus(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(webhookDto.NewInvoiceWebhookPayload(eventType, invoice, status))
}
