package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// MemoryActivityStore is an in-memory implementation of the ActivityStore
// interface, used in dev mode and by tests.
type MemoryActivityStore struct {
	entries []core.ActivityEntry
	mu      sync.RWMutex
}

// NewMemoryActivityStore creates a new in-memory activity store.
func NewMemoryActivityStore() ports.ActivityStore {
	return &MemoryActivityStore{}
}

// Append persists the entry and returns its ID.
func (s *MemoryActivityStore) Append(ctx context.Context, entry *core.ActivityEntry) (string, error) {
	if !entry.Type.Valid() {
		return "", core.ErrInvalidActivityType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now().UTC()
	}
	if cp.Details != nil {
		details := make(map[string]any, len(cp.Details))
		for k, v := range cp.Details {
			details[k] = v
		}
		cp.Details = details
	}

	s.entries = append(s.entries, cp)
	return cp.ID, nil
}

// Query returns matching entries, newest first.
func (s *MemoryActivityStore) Query(ctx context.Context, filter core.ActivityFilter) ([]core.ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.ActivityEntry
	for _, entry := range s.entries {
		if filter.WalletAddress != "" && entry.WalletAddress != filter.WalletAddress {
			continue
		}
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && entry.Timestamp.After(filter.Until) {
			continue
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}
