package ports

import "github.com/walletpulse/gatekeeper/core"

// Tokenizer converts between sessions and bearer credentials.
type Tokenizer interface {
	// SessionToToken issues a signed token referencing the session.
	SessionToToken(session *core.Session) (string, error)

	// TokenToSessionID verifies the token signature and returns the
	// session ID and address it references. The stored session record
	// remains authoritative for expiry and revocation.
	TokenToSessionID(token string) (sessionID, address string, err error)
}
