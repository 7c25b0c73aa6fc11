package payload

import (
	"context"
	"encoding/json"
)

// PayloadBuilder turns the internal event data into the body delivered to
// the tenant's endpoint
type PayloadBuilder interface {
	BuildPayload(ctx context.Context, eventType string, data json.RawMessage) (json.RawMessage, error)
}
