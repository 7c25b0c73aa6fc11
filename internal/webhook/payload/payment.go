package payload

import (
	"context"
	"encoding/json"

	"github.com/guardpost/console/internal/api/dto"
	"github.com/guardpost/console/internal/domain/payment"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	webhookDto "github.com/guardpost/console/internal/webhook/dto"
	"github.com/samber/lo"
)

type PaymentPayloadBuilder struct {
	services *Services
}

func NewPaymentPayloadBuilder(services *Services) PayloadBuilder {
	return &PaymentPayloadBuilder{
		services: services,
	}
}

// BuildPayload builds the webhook payload for payment events
func (b *PaymentPayloadBuilder) BuildPayload(ctx context.Context, eventType string, data json.RawMessage) (json.RawMessage, error) {
	var parsedPayload webhookDto.InternalPaymentEvent
	if err := json.Unmarshal(data, &parsedPayload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unable to unmarshal payment event payload").
			Mark(ierr.ErrInvalidOperation)
	}

	if parsedPayload.PaymentID == "" || parsedPayload.InvoiceID == "" || parsedPayload.TenantID == "" {
		return nil, ierr.NewError("invalid data for payment event").
			WithHint("Please provide a valid payment ID, invoice ID and tenant ID").
			WithReportableDetails(map[string]any{
				"event_type": eventType,
				"payment_id": parsedPayload.PaymentID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	ctx = types.SetTenantID(ctx, parsedPayload.TenantID)

	ledger, err := b.services.PaymentService.GetLedger(ctx, parsedPayload.InvoiceID)
	if err != nil {
		return nil, err
	}

	p, ok := lo.Find(ledger.Payments, func(p *payment.Payment) bool {
		return p.ID == parsedPayload.PaymentID
	})
	if !ok {
		return nil, ierr.NewError("payment not found in ledger").
			WithHintf("Payment %s was not found", parsedPayload.PaymentID).
			WithReportableDetails(map[string]any{
				"invoice_id": parsedPayload.InvoiceID,
				"payment_id": parsedPayload.PaymentID,
			}).
			Mark(ierr.ErrNotFound)
	}

	return json.Marshal(webhookDto.NewPaymentWebhookPayload(eventType, dto.NewPaymentResponse(p), ledger))
}
