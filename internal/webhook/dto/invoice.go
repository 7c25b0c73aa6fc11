package webhookDto

import "github.com/guardpost/console/internal/api/dto"

// InternalInvoiceEvent is what services publish; the payload is built at
// delivery time so receivers see the invoice as it is then
type InternalInvoiceEvent struct {
	InvoiceID string `json:"invoice_id"`
	TenantID  string `json:"tenant_id"`
}

type InvoiceWebhookPayload struct {
	EventType string                     `json:"event_type"`
	Invoice   *dto.InvoiceResponse       `json:"invoice"`
	Status    *dto.InvoiceStatusResponse `json:"status"`
}

func NewInvoiceWebhookPayload(eventType string, invoice *dto.InvoiceResponse, status *dto.InvoiceStatusResponse) *InvoiceWebhookPayload {
	return &InvoiceWebhookPayload{EventType: eventType, Invoice: invoice, Status: status}
}
