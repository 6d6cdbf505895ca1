package core

import "errors"

var (
	ErrInvalidAddress      = errors.New("invalid wallet address")
	ErrNoChallenge         = errors.New("no live challenge for address")
	ErrChallengeExpired    = errors.New("challenge has expired")
	ErrChallengeConsumed   = errors.New("challenge already consumed")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrAddressMismatch     = errors.New("recovered address does not match claimed address")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session has expired")
	ErrSessionRevoked      = errors.New("session has been revoked")
	ErrInvalidActivityType = errors.New("unrecognized activity type")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)
