package svix

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/guardpost/console/internal/config"
	ierr "github.com/guardpost/console/internal/errors"
	svix "github.com/svix/svix-webhooks/go"
	"github.com/svix/svix-webhooks/go/models"
)

// Client wraps the Svix SDK client. Each tenant gets its own Svix
// application, keyed by the tenant ID.
type Client struct {
	client  *svix.Svix
	enabled bool
}

// NewClient creates a new Svix client. A disabled client is valid and
// every call on it is a no-op.
func NewClient(cfg *config.Configuration) (*Client, error) {
	if !cfg.Webhook.Svix.Enabled {
		return &Client{enabled: false}, nil
	}

	serverURL, err := url.Parse(cfg.Webhook.Svix.BaseURL)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("webhook.svix.base_url must be a valid URL").
			Mark(ierr.ErrValidation)
	}

	svixClient, err := svix.New(cfg.Webhook.Svix.AuthToken, &svix.SvixOptions{
		ServerUrl: serverURL,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not create the Svix client").
			Mark(ierr.ErrSystem)
	}

	return &Client{
		client:  svixClient,
		enabled: true,
	}, nil
}

// Enabled reports whether deliveries go through Svix
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// GetOrCreateApplication returns the Svix application of the tenant,
// creating it on first use
func (c *Client) GetOrCreateApplication(ctx context.Context, tenantID string) (string, error) {
	if !c.Enabled() {
		return "", nil
	}

	appID := tenantID
	if _, err := c.client.Application.Get(ctx, appID); err == nil {
		return appID, nil
	}

	app, err := c.client.Application.Create(ctx, models.ApplicationIn{
		Name: "guardpost-" + tenantID,
		Uid:  &appID,
	}, &svix.ApplicationCreateOptions{})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Could not create the Svix application for the tenant").
			WithReportableDetails(map[string]any{"tenant_id": tenantID}).
			Mark(ierr.ErrHTTPClient)
	}

	return app.Id, nil
}

// SendMessage queues an event for the application's endpoints. The event ID
// doubles as the idempotency key so a redelivered event is sent once.
func (c *Client) SendMessage(ctx context.Context, applicationID, eventID, eventType string, payload json.RawMessage) error {
	if !c.Enabled() {
		return nil
	}

	var payloadMap map[string]interface{}
	if err := json.Unmarshal(payload, &payloadMap); err != nil {
		return ierr.WithError(err).
			WithHint("Webhook payload must be a JSON object").
			Mark(ierr.ErrValidation)
	}

	_, err := c.client.Message.Create(ctx, applicationID, models.MessageIn{
		EventType: eventType,
		EventId:   &eventID,
		Payload:   payloadMap,
	}, &svix.MessageCreateOptions{
		IdempotencyKey: &eventID,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not send the webhook through Svix").
			WithReportableDetails(map[string]any{
				"application_id": applicationID,
				"event_type":     eventType,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return nil
}
