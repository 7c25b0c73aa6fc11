package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/guardpost/console/internal/pubsub"
	"github.com/guardpost/console/internal/types"
)

var _ pubsub.PubSub = (*InMemoryPubSub)(nil)

// InMemoryPubSub records every published message and fans new ones out to
// subscribers
type InMemoryPubSub struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *message.Message
	messages    map[string][]*message.Message

	// PublishErr, when set, is returned by Publish instead of recording
	PublishErr error
}

func NewInMemoryPubSub() *InMemoryPubSub {
	return &InMemoryPubSub{
		subscribers: make(map[string][]chan *message.Message),
		messages:    make(map[string][]*message.Message),
	}
}

func (ps *InMemoryPubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	if ps.PublishErr != nil {
		return ps.PublishErr
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.messages[topic] = append(ps.messages[topic], msg)
	for _, ch := range ps.subscribers[topic] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (ps *InMemoryPubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan *message.Message, 100)
	ps.subscribers[topic] = append(ps.subscribers[topic], ch)
	return ch, nil
}

func (ps *InMemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for _, subscribers := range ps.subscribers {
		for _, ch := range subscribers {
			close(ch)
		}
	}
	ps.subscribers = make(map[string][]chan *message.Message)
	return nil
}

// GetMessages returns all messages published to a topic
func (ps *InMemoryPubSub) GetMessages(topic string) []*message.Message {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return append([]*message.Message(nil), ps.messages[topic]...)
}

// GetEvents decodes the webhook events published to a topic, oldest first
func (ps *InMemoryPubSub) GetEvents(topic string) []types.WebhookEvent {
	msgs := ps.GetMessages(topic)
	events := make([]types.WebhookEvent, 0, len(msgs))
	for _, msg := range msgs {
		var event types.WebhookEvent
		if err := json.Unmarshal(msg.Payload, &event); err == nil {
			events = append(events, event)
		}
	}
	return events
}

// EventNames lists the names of the events published to a topic
func (ps *InMemoryPubSub) EventNames(topic string) []string {
	events := ps.GetEvents(topic)
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.EventName)
	}
	return names
}

// ClearMessages clears all stored messages
func (ps *InMemoryPubSub) ClearMessages() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.messages = make(map[string][]*message.Message)
}
