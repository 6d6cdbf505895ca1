package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/walletpulse/gatekeeper/core"
)

func TestMemoryActivityStore_AppendStampsAndValidates(t *testing.T) {
	s := NewMemoryActivityStore()
	ctx := context.Background()

	id, err := s.Append(ctx, &core.ActivityEntry{Type: core.ActivityPageView, WalletAddress: "0xA"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := s.Query(ctx, core.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].Timestamp.IsZero())

	_, err = s.Append(ctx, &core.ActivityEntry{Type: "made_up"})
	require.ErrorIs(t, err, core.ErrInvalidActivityType)
}

func TestMemoryActivityStore_EntriesAreImmutable(t *testing.T) {
	s := NewMemoryActivityStore()
	ctx := context.Background()

	details := map[string]any{"card": "mood"}
	id, err := s.Append(ctx, &core.ActivityEntry{Type: core.ActivityCardView, Details: details})
	require.NoError(t, err)

	// Mutating the caller's map after append must not affect the record.
	details["card"] = "tampered"

	entries, err := s.Query(ctx, core.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, id, entries[0].ID)
	require.Equal(t, "mood", entries[0].Details["card"])
}

func TestMemoryActivityStore_QueryFiltersAndOrder(t *testing.T) {
	s := NewMemoryActivityStore()
	ctx := context.Background()

	base := time.Now().UTC()
	seed := []core.ActivityEntry{
		{Type: core.ActivityWalletConnect, WalletAddress: "0xA", Timestamp: base.Add(-3 * time.Hour)},
		{Type: core.ActivityPageView, WalletAddress: "0xA", Timestamp: base.Add(-2 * time.Hour)},
		{Type: core.ActivityPageView, WalletAddress: "0xB", Timestamp: base.Add(-1 * time.Hour)},
		{Type: core.ActivityCardRefresh, WalletAddress: "0xA", Timestamp: base},
	}
	for i := range seed {
		_, err := s.Append(ctx, &seed[i])
		require.NoError(t, err)
	}

	entries, err := s.Query(ctx, core.ActivityFilter{WalletAddress: "0xA"})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp))
	}

	entries, err = s.Query(ctx, core.ActivityFilter{Type: core.ActivityPageView})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = s.Query(ctx, core.ActivityFilter{Since: base.Add(-90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = s.Query(ctx, core.ActivityFilter{WalletAddress: "0xA", Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, core.ActivityCardRefresh, entries[0].Type)
}
