package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/walletpulse/gatekeeper/core"
)

func TestMemorySessionStore_SaveAndGet(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	now := time.Now()
	session := &core.Session{
		ID:        "s1",
		Address:   "0xA",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, s.Save(ctx, session))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "0xA", got.Address)
	require.False(t, got.Revoked)

	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestMemorySessionStore_Revoke(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	session := &core.Session{ID: "s1", Address: "0xA", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.Save(ctx, session))

	require.NoError(t, s.Revoke(ctx, "s1"))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, got.Revoked)

	// A second revoke reports not-found; callers treat that as a no-op.
	require.ErrorIs(t, s.Revoke(ctx, "s1"), core.ErrSessionNotFound)
	require.ErrorIs(t, s.Revoke(ctx, "missing"), core.ErrSessionNotFound)
}

func TestMemorySessionStore_GetReturnsCopy(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &core.Session{ID: "s1", Address: "0xA", ExpiresAt: time.Now().Add(time.Hour)}))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	got.Revoked = true

	again, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	require.False(t, again.Revoked)
}
