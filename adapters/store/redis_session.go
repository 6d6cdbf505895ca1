package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// redisSession is the stored wire form of a session.
type redisSession struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
	Revoked   bool   `json:"revoked"`
}

// revokeScript flips the revoked flag exactly once. Returns 0 on success,
// -1 when the record is missing, -2 when it is already revoked.
var revokeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return -1
end
local s = cjson.decode(raw)
if s['revoked'] then
  return -2
end
s['revoked'] = true
redis.call('SET', KEYS[1], cjson.encode(s), 'KEEPTTL')
return 0
`)

// RedisSessionStore is a Redis implementation of the SessionStore interface.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore creates a new Redis session store.
func NewRedisSessionStore(client *redis.Client) ports.SessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: "gatekeeper:session:",
	}
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + id
}

// Save stores the session record with a TTL covering its lifetime plus a
// grace window, so recently expired sessions still resolve for validation.
func (s *RedisSessionStore) Save(ctx context.Context, session *core.Session) error {
	payload, err := json.Marshal(redisSession{
		ID:        session.ID,
		Address:   session.Address,
		CreatedAt: session.CreatedAt.Unix(),
		ExpiresAt: session.ExpiresAt.Unix(),
		Revoked:   session.Revoked,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt) + retentionGrace
	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", core.ErrStorageUnavailable)
	}

	return nil
}

// Get returns the session record regardless of state.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*core.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", core.ErrStorageUnavailable)
	}

	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &core.Session{
		ID:        rs.ID,
		Address:   rs.Address,
		CreatedAt: time.Unix(rs.CreatedAt, 0),
		ExpiresAt: time.Unix(rs.ExpiresAt, 0),
		Revoked:   rs.Revoked,
	}, nil
}

// Revoke marks the session revoked.
func (s *RedisSessionStore) Revoke(ctx context.Context, id string) error {
	code, err := revokeScript.Run(ctx, s.client, []string{s.key(id)}).Int()
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", core.ErrStorageUnavailable)
	}
	if code != 0 {
		return core.ErrSessionNotFound
	}

	return nil
}
