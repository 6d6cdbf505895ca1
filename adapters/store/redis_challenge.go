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

// retentionGrace keeps expired records around briefly so expiry can be
// reported as ErrChallengeExpired instead of a bare not-found.
const retentionGrace = time.Hour

// redisChallenge is the stored wire form of a challenge.
type redisChallenge struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
	Consumed  bool   `json:"consumed"`
}

// consumeScript performs the check-and-flip server-side so racing logins
// serialize inside Redis. A plain GET/SET pair would let two callers both
// observe consumed=false.
//
// Returns: 0 + record on success, -1 not found / nonce mismatch,
// -2 already consumed, -3 expired.
var consumeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return {-1, ''}
end
local ch = cjson.decode(raw)
if ch['nonce'] ~= ARGV[1] then
  return {-1, ''}
end
if ch['consumed'] then
  return {-2, ''}
end
if tonumber(ARGV[2]) > ch['expires_at'] then
  return {-3, ''}
end
ch['consumed'] = true
local updated = cjson.encode(ch)
redis.call('SET', KEYS[1], updated, 'KEEPTTL')
return {0, updated}
`)

// RedisChallengeStore is a Redis implementation of the ChallengeStore
// interface.
type RedisChallengeStore struct {
	client *redis.Client
	prefix string
}

// NewRedisChallengeStore creates a new Redis challenge store.
func NewRedisChallengeStore(client *redis.Client) ports.ChallengeStore {
	return &RedisChallengeStore{
		client: client,
		prefix: "gatekeeper:challenge:",
	}
}

func (s *RedisChallengeStore) key(address string) string {
	return s.prefix + address
}

// Put stores the challenge, superseding any prior challenge for the address.
func (s *RedisChallengeStore) Put(ctx context.Context, challenge *core.Challenge) error {
	payload, err := json.Marshal(redisChallenge{
		Address:   challenge.Address,
		Nonce:     challenge.Nonce,
		Message:   challenge.Message,
		IssuedAt:  challenge.IssuedAt.Unix(),
		ExpiresAt: challenge.ExpiresAt.Unix(),
		Consumed:  challenge.Consumed,
	})
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}

	ttl := time.Until(challenge.ExpiresAt) + retentionGrace
	if err := s.client.Set(ctx, s.key(challenge.Address), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", core.ErrStorageUnavailable)
	}

	return nil
}

// Live returns the current unconsumed, unexpired challenge for the address.
func (s *RedisChallengeStore) Live(ctx context.Context, address string) (*core.Challenge, error) {
	raw, err := s.client.Get(ctx, s.key(address)).Bytes()
	if err == redis.Nil {
		return nil, core.ErrNoChallenge
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge: %w", core.ErrStorageUnavailable)
	}

	challenge, err := decodeChallenge(raw)
	if err != nil {
		return nil, err
	}
	if challenge.Consumed {
		return nil, core.ErrNoChallenge
	}
	if challenge.Expired(time.Now()) {
		return nil, core.ErrChallengeExpired
	}

	return challenge, nil
}

// Consume atomically flips the consumed flag via the Lua script.
func (s *RedisChallengeStore) Consume(ctx context.Context, address, nonce string) (*core.Challenge, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.key(address)}, nonce, time.Now().Unix()).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to consume challenge: %w", core.ErrStorageUnavailable)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected consume script reply: %w", core.ErrStorageUnavailable)
	}

	code, _ := res[0].(int64)
	switch code {
	case 0:
		raw, _ := res[1].(string)
		return decodeChallenge([]byte(raw))
	case -2:
		return nil, core.ErrChallengeConsumed
	case -3:
		return nil, core.ErrChallengeExpired
	default:
		return nil, core.ErrNoChallenge
	}
}

func decodeChallenge(raw []byte) (*core.Challenge, error) {
	var rc redisChallenge
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}

	return &core.Challenge{
		Address:   rc.Address,
		Nonce:     rc.Nonce,
		Message:   rc.Message,
		IssuedAt:  time.Unix(rc.IssuedAt, 0),
		ExpiresAt: time.Unix(rc.ExpiresAt, 0),
		Consumed:  rc.Consumed,
	}, nil
}
