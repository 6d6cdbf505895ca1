package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// NewActivityRecorder builds a Watermill router that drains the activity
// topic into the ActivityStore. Retries with backoff absorb transient store
// outages; the auth path itself never waits on this pipeline.
func NewActivityRecorder(subscriber message.Subscriber, store ports.ActivityStore, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}

	retry := middleware.Retry{
		MaxRetries:      10,
		InitialInterval: 100 * time.Millisecond,
		Multiplier:      2.0,
		MaxInterval:     30 * time.Second,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	router.AddNoPublisherHandler(
		"activity_recorder",
		TopicActivity,
		subscriber,
		func(msg *message.Message) error {
			var entry core.ActivityEntry
			if err := json.Unmarshal(msg.Payload, &entry); err != nil {
				// Undecodable payloads can never succeed; drop them.
				return nil
			}

			_, err := store.Append(msg.Context(), &entry)
			if errors.Is(err, core.ErrInvalidActivityType) {
				return nil
			}
			return err
		},
	)

	return router, nil
}
