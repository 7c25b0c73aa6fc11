package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/httpclient"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/pubsub"
	pubsubRouter "github.com/guardpost/console/internal/pubsub/router"
	"github.com/guardpost/console/internal/svix"
	"github.com/guardpost/console/internal/types"
	"github.com/guardpost/console/internal/webhook/payload"
	"github.com/samber/lo"
)

const (
	HeaderWebhookEvent   = "X-Webhook-Event"
	HeaderWebhookEventID = "X-Webhook-Event-ID"
)

// Handler delivers queued webhook events
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type handler struct {
	pubSub     pubsub.PubSub
	config     *config.Webhook
	factory    payload.PayloadBuilderFactory
	client     httpclient.Client
	logger     *logger.Logger
	svixClient *svix.Client
}

// NewHandler creates a handler that delivers through Svix when it is
// enabled and straight to the tenant's configured endpoint otherwise
func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	factory payload.PayloadBuilderFactory,
	client httpclient.Client,
	logger *logger.Logger,
	svixClient *svix.Client,
) Handler {
	return &handler{
		pubSub:     pubSub,
		config:     &cfg.Webhook,
		factory:    factory,
		client:     client,
		logger:     logger,
		svixClient: svixClient,
	}
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"webhook_handler",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

func (h *handler) processMessage(msg *message.Message) error {
	var event types.WebhookEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal webhook event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		// a malformed event never gets better
		return nil
	}

	ctx := types.SetTenantID(msg.Context(), event.TenantID)
	ctx = types.SetUserID(ctx, event.UserID)

	if h.svixClient.Enabled() {
		return h.processMessageSvix(ctx, &event, msg.UUID)
	}

	return h.processMessageNative(ctx, &event, msg.UUID)
}

func (h *handler) buildPayload(ctx context.Context, event *types.WebhookEvent) (json.RawMessage, error) {
	builder, err := h.factory.GetBuilder(event.EventName)
	if err != nil {
		return nil, err
	}
	return builder.BuildPayload(ctx, event.EventName, event.Payload)
}

func (h *handler) processMessageSvix(ctx context.Context, event *types.WebhookEvent, messageUUID string) error {
	appID, err := h.svixClient.GetOrCreateApplication(ctx, event.TenantID)
	if err != nil {
		return err
	}

	webhookPayload, err := h.buildPayload(ctx, event)
	if err != nil {
		return err
	}

	if err := h.svixClient.SendMessage(ctx, appID, event.ID, event.EventName, webhookPayload); err != nil {
		h.logger.Errorw("failed to send webhook via Svix",
			"error", err,
			"message_uuid", messageUUID,
			"tenant_id", event.TenantID,
			"event", event.EventName,
		)
		return err
	}

	h.logger.Infow("webhook sent via Svix",
		"message_uuid", messageUUID,
		"tenant_id", event.TenantID,
		"event", event.EventName,
	)
	return nil
}

func (h *handler) processMessageNative(ctx context.Context, event *types.WebhookEvent, messageUUID string) error {
	// viper lowercases map keys
	tenantCfg, ok := h.config.Tenants[strings.ToLower(event.TenantID)]
	if !ok {
		h.logger.Warnw("tenant webhook config not found",
			"tenant_id", event.TenantID,
			"message_uuid", messageUUID,
		)
		return nil
	}

	if !tenantCfg.Enabled {
		h.logger.Debugw("webhooks disabled for tenant",
			"tenant_id", event.TenantID,
			"message_uuid", messageUUID,
		)
		return nil
	}

	if lo.Contains(tenantCfg.ExcludedEvents, event.EventName) {
		h.logger.Debugw("event excluded for tenant",
			"tenant_id", event.TenantID,
			"event", event.EventName,
		)
		return nil
	}

	webhookPayload, err := h.buildPayload(ctx, event)
	if err != nil {
		return err
	}

	// the event ID is stable across redeliveries so receivers can dedupe
	headers := lo.Assign(tenantCfg.Headers, map[string]string{
		HeaderWebhookEvent:         event.EventName,
		HeaderWebhookEventID:       event.ID,
		types.HeaderIdempotencyKey: event.ID,
	})

	resp, err := h.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     tenantCfg.Endpoint,
		Headers: headers,
		Body:    webhookPayload,
	})
	if err != nil {
		h.logger.Errorw("failed to send webhook",
			"error", err,
			"message_uuid", messageUUID,
			"tenant_id", event.TenantID,
			"event", event.EventName,
		)
		return err
	}

	h.logger.Infow("webhook sent",
		"message_uuid", messageUUID,
		"tenant_id", event.TenantID,
		"event", event.EventName,
		"status_code", resp.StatusCode,
	)
	return nil
}
