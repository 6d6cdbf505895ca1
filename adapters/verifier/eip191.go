// Package verifier recovers signer addresses from EIP-191 personal_sign
// signatures using go-ethereum's secp256k1 primitives.
package verifier

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// EIP191Verifier implements the SignatureVerifier interface for the
// personal_sign scheme used by browser wallets.
type EIP191Verifier struct{}

// NewEIP191Verifier creates a new verifier.
func NewEIP191Verifier() ports.SignatureVerifier {
	return &EIP191Verifier{}
}

// Recover returns the checksummed address that signed message.
func (v *EIP191Verifier) Recover(message, signature string) (string, error) {
	decodedSig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", core.ErrInvalidSignature)
	}
	if len(decodedSig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be 65 bytes: %w", core.ErrInvalidSignature)
	}

	// Wallets return V as 27/28 per the Ethereum JSON-RPC convention;
	// SigToPub expects 0/1.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, decodedSig)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return "", fmt.Errorf("invalid recovery id: %w", core.ErrInvalidSignature)
	}

	hash := accounts.TextHash([]byte(message))
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", core.ErrInvalidSignature)
	}

	return crypto.PubkeyToAddress(*pubKey).Hex(), nil
}
