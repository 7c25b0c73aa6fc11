package webhookDto

import "github.com/guardpost/console/internal/api/dto"

type InternalPaymentEvent struct {
	PaymentID string `json:"payment_id"`
	InvoiceID string `json:"invoice_id"`
	TenantID  string `json:"tenant_id"`
}

// PaymentWebhookPayload carries the registered payment and the ledger of its
// invoice after it was applied
type PaymentWebhookPayload struct {
	EventType string               `json:"event_type"`
	Payment   *dto.PaymentResponse `json:"payment"`
	Ledger    *dto.LedgerResponse  `json:"ledger"`
}

func NewPaymentWebhookPayload(eventType string, payment *dto.PaymentResponse, ledger *dto.LedgerResponse) *PaymentWebhookPayload {
	return &PaymentWebhookPayload{EventType: eventType, Payment: payment, Ledger: ledger}
}
