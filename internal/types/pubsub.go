package types

import (
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/samber/lo"
)

// PubSubType defines the type of pubsub implementation
type PubSubType string

const (
	// MemoryPubSub uses in-memory implementation
	MemoryPubSub PubSubType = "memory"

	// KafkaPubSub uses Kafka implementation
	KafkaPubSub PubSubType = "kafka"
)

func (p PubSubType) Validate() error {
	allowed := []PubSubType{MemoryPubSub, KafkaPubSub}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid pubsub type").
			WithHint("Please provide a valid pubsub type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
