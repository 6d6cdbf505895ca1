package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/walletpulse/gatekeeper/core"
)

func newChallenge(address, nonce string, ttl time.Duration) *core.Challenge {
	now := time.Now()
	return &core.Challenge{
		Address:   address,
		Nonce:     nonce,
		Message:   "sign me",
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryChallengeStore_ConsumeOnce(t *testing.T) {
	s := NewMemoryChallengeStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newChallenge("0xA", "n1", time.Minute)))

	consumed, err := s.Consume(ctx, "0xA", "n1")
	require.NoError(t, err)
	require.True(t, consumed.Consumed)

	_, err = s.Consume(ctx, "0xA", "n1")
	require.ErrorIs(t, err, core.ErrChallengeConsumed)
}

func TestMemoryChallengeStore_PutSupersedes(t *testing.T) {
	s := NewMemoryChallengeStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newChallenge("0xA", "old", time.Minute)))
	require.NoError(t, s.Put(ctx, newChallenge("0xA", "new", time.Minute)))

	// The superseded nonce is permanently unusable.
	_, err := s.Consume(ctx, "0xA", "old")
	require.ErrorIs(t, err, core.ErrNoChallenge)

	live, err := s.Live(ctx, "0xA")
	require.NoError(t, err)
	require.Equal(t, "new", live.Nonce)
}

func TestMemoryChallengeStore_Expiry(t *testing.T) {
	s := NewMemoryChallengeStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newChallenge("0xA", "n1", -time.Minute)))

	_, err := s.Live(ctx, "0xA")
	require.ErrorIs(t, err, core.ErrChallengeExpired)

	_, err = s.Consume(ctx, "0xA", "n1")
	require.ErrorIs(t, err, core.ErrChallengeExpired)
}

func TestMemoryChallengeStore_UnknownAddress(t *testing.T) {
	s := NewMemoryChallengeStore()
	ctx := context.Background()

	_, err := s.Live(ctx, "0xB")
	require.ErrorIs(t, err, core.ErrNoChallenge)

	_, err = s.Consume(ctx, "0xB", "n1")
	require.ErrorIs(t, err, core.ErrNoChallenge)
}

func TestMemoryChallengeStore_ConcurrentConsume(t *testing.T) {
	s := NewMemoryChallengeStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newChallenge("0xA", "n1", time.Minute)))

	const racers = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		replays   int
	)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Consume(ctx, "0xA", "n1")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case err == core.ErrChallengeConsumed:
				replays++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, racers-1, replays)
}

func TestMemoryChallengeStore_Sweep(t *testing.T) {
	s := NewMemoryChallengeStore().(*MemoryChallengeStore)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, newChallenge("0xA", "n1", -time.Minute)))
	require.NoError(t, s.Put(ctx, newChallenge("0xB", "n2", time.Minute)))

	s.Sweep(time.Now())

	_, err := s.Live(ctx, "0xA")
	require.ErrorIs(t, err, core.ErrNoChallenge)

	_, err = s.Live(ctx, "0xB")
	require.NoError(t, err)
}
