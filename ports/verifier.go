package ports

// SignatureVerifier recovers the address that signed a message.
type SignatureVerifier interface {
	// Recover returns the checksummed address that produced signature
	// over message. Returns core.ErrInvalidSignature when the signature
	// is malformed or recovery fails. Pure computation, no I/O; comparing
	// the result against a claimed address is the caller's job.
	Recover(message, signature string) (string, error)
}
