package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ProgressPublisher publishes job progress events to the in-process bus.
type ProgressPublisher struct {
	pubSub *gochannel.GoChannel
}

func NewProgressPublisher(pubSub *gochannel.GoChannel) *ProgressPublisher {
	return &ProgressPublisher{pubSub: pubSub}
}

// Publish emits one progress event. Callers are expected to log failures
// and continue; progress events are advisory, the job row stays the source
// of truth.
func (p *ProgressPublisher) Publish(event JobProgressEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal progress event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(TopicJobProgress, msg); err != nil {
		return fmt.Errorf("failed to publish progress event: %w", err)
	}
	return nil
}
