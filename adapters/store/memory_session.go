package store

import (
	"context"
	"sync"

	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// MemorySessionStore is an in-memory implementation of the SessionStore
// interface.
type MemorySessionStore struct {
	sessions map[string]*core.Session
	mu       sync.RWMutex
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() ports.SessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*core.Session),
	}
}

// Save stores the session record.
func (s *MemorySessionStore) Save(ctx context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

// Get returns the session record regardless of state.
func (s *MemorySessionStore) Get(ctx context.Context, id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, core.ErrSessionNotFound
	}

	cp := *session
	return &cp, nil
}

// Revoke marks the session revoked.
func (s *MemorySessionStore) Revoke(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists || session.Revoked {
		return core.ErrSessionNotFound
	}

	session.Revoked = true
	return nil
}
