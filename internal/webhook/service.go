package webhook

import (
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/logger"
	pubsubRouter "github.com/guardpost/console/internal/pubsub/router"
	"github.com/guardpost/console/internal/webhook/handler"
	"github.com/guardpost/console/internal/webhook/publisher"
)

// WebhookService owns the delivery side of outbound webhooks
type WebhookService struct {
	config    *config.Configuration
	publisher publisher.WebhookPublisher
	handler   handler.Handler
	logger    *logger.Logger
}

func NewWebhookService(
	cfg *config.Configuration,
	publisher publisher.WebhookPublisher,
	h handler.Handler,
	l *logger.Logger,
) *WebhookService {
	return &WebhookService{
		config:    cfg,
		publisher: publisher,
		handler:   h,
		logger:    l,
	}
}

// RegisterHandler subscribes the delivery handler on the router. Nothing is
// registered while webhooks are disabled.
func (s *WebhookService) RegisterHandler(router *pubsubRouter.Router) {
	if !s.config.Webhook.Enabled {
		s.logger.Info("webhooks disabled, skipping handler registration")
		return
	}
	s.handler.RegisterHandler(router)
}

// Stop closes the publisher after the router stopped consuming
func (s *WebhookService) Stop() error {
	return s.publisher.Close()
}
