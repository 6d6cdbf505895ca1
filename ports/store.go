package ports

import (
	"context"

	"github.com/walletpulse/gatekeeper/core"
)

// ChallengeStore owns challenge records, keyed by wallet address.
type ChallengeStore interface {
	// Put stores a freshly issued challenge, atomically superseding any
	// prior live challenge for the same address.
	Put(ctx context.Context, challenge *core.Challenge) error

	// Live returns the current unconsumed, unexpired challenge for the
	// address. Returns core.ErrNoChallenge if none exists and
	// core.ErrChallengeExpired if one exists but is past its expiry.
	Live(ctx context.Context, address string) (*core.Challenge, error)

	// Consume atomically checks existence, expiry and the consumed flag,
	// and flips the flag if all checks pass. When two callers race on the
	// same (address, nonce), exactly one succeeds and the others get
	// core.ErrChallengeConsumed. This is the single linearization point
	// of the login protocol.
	Consume(ctx context.Context, address, nonce string) (*core.Challenge, error)
}

// SessionStore owns session records, keyed by session ID.
type SessionStore interface {
	Save(ctx context.Context, session *core.Session) error

	// Get returns the session regardless of its state; callers decide
	// whether an expired or revoked record is acceptable.
	Get(ctx context.Context, id string) (*core.Session, error)

	// Revoke marks the session revoked. Returns core.ErrSessionNotFound
	// if no such session exists or it is already revoked.
	Revoke(ctx context.Context, id string) error
}

// ActivityStore owns the append-only audit log.
type ActivityStore interface {
	// Append persists the entry and returns its ID. Entries are never
	// mutated or deleted afterwards.
	Append(ctx context.Context, entry *core.ActivityEntry) (string, error)

	// Query returns entries matching the filter, newest first.
	Query(ctx context.Context, filter core.ActivityFilter) ([]core.ActivityEntry, error)
}
