package types

import (
	"encoding/json"
	"time"
)

// WebhookEvent is an invoice or payment change queued for delivery to the
// tenant's webhook endpoint
type WebhookEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	TenantID  string          `json:"tenant_id"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// invoice event names
const (
	WebhookEventInvoiceCreated   = "invoice.created"
	WebhookEventInvoicePreviewed = "invoice.previewed"
	WebhookEventInvoiceSent      = "invoice.sent"
)

// payment event names
const (
	WebhookEventPaymentRegistered = "payment.registered"
)
