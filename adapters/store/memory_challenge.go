package store

import (
	"context"
	"sync"
	"time"

	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// MemoryChallengeStore is an in-memory implementation of the ChallengeStore
// interface. One record per address; Put replaces whatever was there, which
// permanently invalidates the previous challenge.
type MemoryChallengeStore struct {
	challenges map[string]*core.Challenge
	mu         sync.Mutex
}

// NewMemoryChallengeStore creates a new in-memory challenge store.
func NewMemoryChallengeStore() ports.ChallengeStore {
	return &MemoryChallengeStore{
		challenges: make(map[string]*core.Challenge),
	}
}

// Put stores the challenge, superseding any prior challenge for the address.
func (s *MemoryChallengeStore) Put(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *challenge
	s.challenges[challenge.Address] = &cp
	return nil
}

// Live returns the current unconsumed, unexpired challenge for the address.
func (s *MemoryChallengeStore) Live(ctx context.Context, address string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, exists := s.challenges[address]
	if !exists || challenge.Consumed {
		return nil, core.ErrNoChallenge
	}
	if challenge.Expired(time.Now()) {
		return nil, core.ErrChallengeExpired
	}

	cp := *challenge
	return &cp, nil
}

// Consume performs the check-and-flip under a single critical section, so
// concurrent callers racing on the same challenge serialize here.
func (s *MemoryChallengeStore) Consume(ctx context.Context, address, nonce string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, exists := s.challenges[address]
	if !exists || challenge.Nonce != nonce {
		return nil, core.ErrNoChallenge
	}
	if challenge.Consumed {
		return nil, core.ErrChallengeConsumed
	}
	if challenge.Expired(time.Now()) {
		return nil, core.ErrChallengeExpired
	}

	challenge.Consumed = true

	cp := *challenge
	return &cp, nil
}

// Sweep drops expired records to reclaim memory. Correctness never depends
// on it running; expiry is checked at use time.
func (s *MemoryChallengeStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for address, challenge := range s.challenges {
		if challenge.Expired(now) {
			delete(s.challenges, address)
		}
	}
}
