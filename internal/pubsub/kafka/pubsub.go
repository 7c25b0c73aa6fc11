package kafka

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v4"
	"github.com/guardpost/console/internal/config"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/pubsub"
	"go.uber.org/multierr"
)

// PubSub publishes and consumes webhook events through a kafka topic, so
// undelivered events survive a restart and are shared across replicas
type PubSub struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *logger.Logger
}

// NewPubSub creates a new kafka-based pubsub. Brokers that are still coming
// up are retried with exponential backoff, cfg.Kafka.ConnectRetries times.
func NewPubSub(cfg *config.Configuration, logger *logger.Logger) (pubsub.PubSub, error) {
	var ps pubsub.PubSub
	attempt := func() error {
		var err error
		ps, err = dial(cfg, logger)
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.Kafka.ConnectRetries)
	notify := func(err error, wait time.Duration) {
		logger.Warnw("kafka connection failed, retrying",
			"brokers", cfg.Kafka.Brokers,
			"retry_in", wait,
			"error", err,
		)
	}
	if err := backoff.RetryNotify(attempt, policy, notify); err != nil {
		return nil, err
	}
	return ps, nil
}

func dial(cfg *config.Configuration, logger *logger.Logger) (pubsub.PubSub, error) {
	saramaConfig := GetSaramaConfig(cfg)
	wmLogger := watermill.NewStdLogger(false, false)

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               cfg.Kafka.Brokers,
			Marshaler:             kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
		},
		wmLogger,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not connect the webhook publisher to kafka").
			WithReportableDetails(map[string]any{"brokers": cfg.Kafka.Brokers}).
			Mark(ierr.ErrSystem)
	}

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               cfg.Kafka.Brokers,
			ConsumerGroup:         cfg.Kafka.ConsumerGroup,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		return nil, ierr.WithError(err).
			WithHint("Could not connect the webhook consumer to kafka").
			WithReportableDetails(map[string]any{
				"brokers":        cfg.Kafka.Brokers,
				"consumer_group": cfg.Kafka.ConsumerGroup,
			}).
			Mark(ierr.ErrSystem)
	}

	return &PubSub{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
	}, nil
}

func (p *PubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	return p.publisher.Publish(topic, msg)
}

func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.subscriber.Subscribe(ctx, topic)
}

func (p *PubSub) Close() error {
	return multierr.Combine(p.publisher.Close(), p.subscriber.Close())
}
