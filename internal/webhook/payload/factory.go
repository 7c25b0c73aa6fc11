package payload

import (
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
)

// PayloadBuilderFactory interface for getting event-specific payload builders
type PayloadBuilderFactory interface {
	GetBuilder(eventType string) (PayloadBuilder, error)
}

type payloadBuilderFactory struct {
	builders map[string]func() PayloadBuilder
	services *Services
}

// NewPayloadBuilderFactory creates a new factory with registered builders
func NewPayloadBuilderFactory(services *Services) PayloadBuilderFactory {
	f := &payloadBuilderFactory{
		builders: make(map[string]func() PayloadBuilder),
		services: services,
	}

	for _, event := range []string{
		types.WebhookEventInvoiceCreated,
		types.WebhookEventInvoicePreviewed,
		types.WebhookEventInvoiceSent,
	} {
		f.builders[event] = func() PayloadBuilder {
			return NewInvoicePayloadBuilder(f.services)
		}
	}

	f.builders[types.WebhookEventPaymentRegistered] = func() PayloadBuilder {
		return NewPaymentPayloadBuilder(f.services)
	}

	return f
}

// GetBuilder returns a payload builder for the given event type
func (f *payloadBuilderFactory) GetBuilder(eventType string) (PayloadBuilder, error) {
	builderFn, ok := f.builders[eventType]
	if !ok {
		return nil, ierr.NewError("no payload builder for event").
			WithHintf("Unknown webhook event %q", eventType).
			Mark(ierr.ErrInvalidOperation)
	}

	return builderFn(), nil
}
