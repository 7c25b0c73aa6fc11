package webhook

import (
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/httpclient"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/pubsub"
	"github.com/guardpost/console/internal/pubsub/kafka"
	"github.com/guardpost/console/internal/pubsub/memory"
	"github.com/guardpost/console/internal/service"
	"github.com/guardpost/console/internal/svix"
	"github.com/guardpost/console/internal/types"
	"github.com/guardpost/console/internal/webhook/handler"
	"github.com/guardpost/console/internal/webhook/payload"
	"github.com/guardpost/console/internal/webhook/publisher"
	"go.uber.org/fx"
)

// Module provides all webhook-related dependencies
var Module = fx.Options(
	fx.Provide(
		providePubSub,
	),

	fx.Provide(
		publisher.NewPublisher,
		provideHandler,
		providePayloadBuilderFactory,
		NewWebhookService,
	),
)

func providePayloadBuilderFactory(
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
) payload.PayloadBuilderFactory {
	return payload.NewPayloadBuilderFactory(payload.NewServices(invoiceService, paymentService))
}

// provideHandler gives the handler its own HTTP client; redelivery belongs
// to the router's retry middleware, so the client itself never retries
func provideHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	factory payload.PayloadBuilderFactory,
	logger *logger.Logger,
	svixClient *svix.Client,
) handler.Handler {
	client := httpclient.NewDefaultClient(httpclient.ClientConfig{
		Timeout:  cfg.Webhook.Timeout,
		RetryMax: 0,
	}, logger)
	return handler.NewHandler(pubSub, cfg, factory, client, logger, svixClient)
}

func providePubSub(
	cfg *config.Configuration,
	logger *logger.Logger,
) (pubsub.PubSub, error) {
	switch cfg.Webhook.PubSub {
	case types.KafkaPubSub:
		return kafka.NewPubSub(cfg, logger)
	default:
		return memory.NewPubSub(cfg, logger), nil
	}
}
