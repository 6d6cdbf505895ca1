package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
	"go.uber.org/zap"
)

// messageTemplate is the text the wallet signs. It names the address, the
// nonce and the expiry so the user can see exactly what they are approving.
const messageTemplate = "walletpulse.io wants you to sign in with your wallet:\n%s\n\nNonce: %s\nExpires: %s"

// AuthService handles the challenge-response login protocol and emits audit
// events as a side effect of authentication state changes.
type AuthService struct {
	challenges ports.ChallengeStore
	sessions   ports.SessionStore
	verifier   ports.SignatureVerifier
	tokenizer  ports.Tokenizer
	activity   ports.ActivityPublisher
	logger     *zap.Logger

	challengeTTL time.Duration
	sessionTTL   time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	challenges ports.ChallengeStore,
	sessions ports.SessionStore,
	verifier ports.SignatureVerifier,
	tokenizer ports.Tokenizer,
	activity ports.ActivityPublisher,
	logger *zap.Logger,
	challengeTTL, sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		challenges:   challenges,
		sessions:     sessions,
		verifier:     verifier,
		tokenizer:    tokenizer,
		activity:     activity,
		logger:       logger,
		challengeTTL: challengeTTL,
		sessionTTL:   sessionTTL,
	}
}

// canonicalAddress validates the address and normalizes it to its EIP-55
// checksummed form, so lookups, recovery comparison and session records
// agree on case.
func canonicalAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", core.ErrInvalidAddress
	}
	return common.HexToAddress(address).Hex(), nil
}

// RequestChallenge issues a fresh challenge for the address, superseding any
// prior live one. Issuance itself is not audited: it is spoofable
// pre-authentication and carries no security weight.
func (s *AuthService) RequestChallenge(ctx context.Context, address string) (*core.Challenge, error) {
	canonical, err := canonicalAddress(address)
	if err != nil {
		return nil, err
	}

	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)

	now := time.Now()
	challenge := &core.Challenge{
		Address:   canonical,
		Nonce:     nonce,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}
	challenge.Message = fmt.Sprintf(messageTemplate, canonical, nonce, challenge.ExpiresAt.UTC().Format(time.RFC3339))

	if err := s.challenges.Put(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return challenge, nil
}

// Login verifies a signature over the live challenge and mints a session.
// Consumption of the challenge is the authoritative replay defense: of two
// racing calls with the same signature, exactly one passes Consume.
func (s *AuthService) Login(ctx context.Context, address, signature string) (*core.Session, string, error) {
	canonical, err := canonicalAddress(address)
	if err != nil {
		return nil, "", err
	}

	challenge, err := s.challenges.Live(ctx, canonical)
	if err != nil {
		return nil, "", err
	}

	recovered, err := s.verifier.Recover(challenge.Message, signature)
	if err != nil {
		s.auditAuthFailure(ctx, canonical, "invalid_signature")
		return nil, "", err
	}
	if recovered != canonical {
		s.auditAuthFailure(ctx, canonical, "address_mismatch")
		return nil, "", core.ErrAddressMismatch
	}

	if _, err := s.challenges.Consume(ctx, canonical, challenge.Nonce); err != nil {
		return nil, "", err
	}

	now := time.Now()
	session := &core.Session{
		ID:        uuid.New().String(),
		Address:   canonical,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	// The challenge is burned at this point. If saving the session fails
	// the wallet simply requests a fresh challenge; no session must ever
	// exist without a consumed challenge behind it.
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to save session: %w", err)
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	s.record(ctx, &core.ActivityEntry{
		Type:          core.ActivityWalletConnect,
		WalletAddress: canonical,
		SessionID:     session.ID,
	})

	return session, token, nil
}

// Logout revokes the session. Revoking a missing or already-revoked session
// is not an error at this boundary, so retried logouts are safe.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, core.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	s.record(ctx, &core.ActivityEntry{
		Type:          core.ActivityWalletDisconnect,
		WalletAddress: session.Address,
		SessionID:     session.ID,
	})

	return nil
}

// Validate checks a session ID against the store.
func (s *AuthService) Validate(ctx context.Context, sessionID string) (*core.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Revoked {
		return nil, core.ErrSessionRevoked
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, core.ErrSessionExpired
	}

	return session, nil
}

// ValidateToken resolves a bearer token to its live session. The stored
// record stays authoritative: a valid token over a revoked or expired
// session does not authenticate.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*core.Session, error) {
	sessionID, address, err := s.tokenizer.TokenToSessionID(token)
	if err != nil {
		return nil, err
	}

	session, err := s.Validate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Address != address {
		return nil, core.ErrSessionNotFound
	}

	return session, nil
}

// RecordActivity appends a domain activity event correlated to a validated
// session. The append itself is fire-and-forget.
func (s *AuthService) RecordActivity(ctx context.Context, session *core.Session, activityType core.ActivityType, targetID string, details map[string]any) error {
	if !activityType.Valid() {
		return core.ErrInvalidActivityType
	}

	s.record(ctx, &core.ActivityEntry{
		Type:          activityType,
		WalletAddress: session.Address,
		SessionID:     session.ID,
		TargetID:      targetID,
		Details:       details,
	})

	return nil
}

// auditAuthFailure logs security-relevant login failures. The caller still
// returns only a generic failure to the client.
func (s *AuthService) auditAuthFailure(ctx context.Context, address, reason string) {
	s.record(ctx, &core.ActivityEntry{
		Type:          core.ActivityAuthFailure,
		WalletAddress: address,
		Details:       map[string]any{"reason": reason},
	})
}

// record stamps and publishes an audit entry. Failures are logged and
// swallowed: the audit trail must never block or roll back the caller's
// primary operation.
func (s *AuthService) record(ctx context.Context, entry *core.ActivityEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := s.activity.PublishActivity(ctx, entry); err != nil {
		s.logger.Warn("failed to publish activity entry",
			zap.String("activity_type", string(entry.Type)),
			zap.String("wallet_address", entry.WalletAddress),
			zap.Error(err),
		)
	}
}
