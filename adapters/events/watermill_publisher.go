package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// TopicActivity carries audit entries from the auth path to the recorder.
const TopicActivity = "gatekeeper.activity"

// WatermillPublisher implements the ActivityPublisher interface using
// Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.ActivityPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     TopicActivity,
	}
}

// PublishActivity publishes an activity entry to the audit topic.
func (p *WatermillPublisher) PublishActivity(ctx context.Context, entry *core.ActivityEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish activity entry: %w", err)
	}

	return nil
}
