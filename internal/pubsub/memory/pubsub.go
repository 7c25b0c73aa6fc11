package memory

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/pubsub"
	"github.com/guardpost/console/internal/types"
)

// PubSub keeps webhook events on an in-process watermill gochannel. Events
// are lost on restart.
type PubSub struct {
	pubsub *gochannel.GoChannel
	config *config.Webhook
	logger *logger.Logger
}

// NewPubSub creates a new memory-based pubsub
func NewPubSub(cfg *config.Configuration, logger *logger.Logger) pubsub.PubSub {
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			// events published before the router subscribes are replayed to it
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: false,
			OutputChannelBuffer:            100,
		},
		watermill.NewStdLogger(cfg.Logging.Level == types.LogLevelDebug, false),
	)

	return &PubSub{
		pubsub: goChannel,
		config: &cfg.Webhook,
		logger: logger,
	}
}

func (p *PubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	return p.pubsub.Publish(topic, msg)
}

func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, topic)
}

// Close is a no-op; the channel is shared by the publisher and the router
// and goes away with the process
func (p *PubSub) Close() error {
	return nil
}
