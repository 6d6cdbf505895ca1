package core

import "time"

// Challenge represents a single-use authentication challenge
type Challenge struct {
	Address   string    // Ethereum address the challenge was issued for
	Nonce     string    // Random nonce embedded in the message
	Message   string    // Human-readable text the wallet must sign
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
	Consumed  bool      // Set once by login, never cleared
}

// Expired reports whether the challenge is past its expiry at the given time.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Session represents an authenticated wallet session
type Session struct {
	ID        string    // Unique session identifier
	Address   string    // Ethereum address of the authenticated wallet
	CreatedAt time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
	Revoked   bool      // Set by logout, never cleared
}

// Active reports whether the session is usable at the given time.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
