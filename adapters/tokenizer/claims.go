package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the registered claims carried by a session token.
// The JWT ID is the session ID; the subject is the wallet address.
type SessionClaims struct {
	jwt.RegisteredClaims
}
