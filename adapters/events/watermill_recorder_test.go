package events

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/require"
	"github.com/walletpulse/gatekeeper/adapters/store"
	"github.com/walletpulse/gatekeeper/core"
)

func TestActivityPipeline_PublishToStore(t *testing.T) {
	logger := watermill.NopLogger{}
	bus := gochannel.NewGoChannel(gochannel.Config{}, logger)
	activityStore := store.NewMemoryActivityStore()

	recorder, err := NewActivityRecorder(bus, activityStore, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = recorder.Run(ctx)
	}()
	<-recorder.Running()

	publisher := NewWatermillPublisher(bus)
	entry := &core.ActivityEntry{
		ID:            "e1",
		Type:          core.ActivityWalletConnect,
		Timestamp:     time.Now().UTC(),
		WalletAddress: "0xA",
		SessionID:     "s1",
	}
	require.NoError(t, publisher.PublishActivity(ctx, entry))

	require.Eventually(t, func() bool {
		entries, err := activityStore.Query(context.Background(), core.ActivityFilter{WalletAddress: "0xA"})
		return err == nil && len(entries) == 1 && entries[0].ID == "e1"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestActivityPipeline_DropsUndecodablePayload(t *testing.T) {
	logger := watermill.NopLogger{}
	bus := gochannel.NewGoChannel(gochannel.Config{}, logger)
	activityStore := store.NewMemoryActivityStore()

	recorder, err := NewActivityRecorder(bus, activityStore, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = recorder.Run(ctx)
	}()
	<-recorder.Running()

	publisher := NewWatermillPublisher(bus)

	// A poison message followed by a good one: the good one still lands.
	require.NoError(t, bus.Publish(TopicActivity, newRawMessage("not json")))
	require.NoError(t, publisher.PublishActivity(ctx, &core.ActivityEntry{
		ID:   "e2",
		Type: core.ActivityFeatureUse,
	}))

	require.Eventually(t, func() bool {
		entries, err := activityStore.Query(context.Background(), core.ActivityFilter{})
		return err == nil && len(entries) == 1 && entries[0].ID == "e2"
	}, 5*time.Second, 10*time.Millisecond)
}

func newRawMessage(payload string) *message.Message {
	return message.NewMessage(watermill.NewUUID(), []byte(payload))
}
