package verifier

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/walletpulse/gatekeeper/core"
)

func signPersonal(t *testing.T, message string) (address, signature string) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	// Present the signature the way wallets do, with V in {27, 28}.
	sig[crypto.RecoveryIDOffset] += 27

	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestRecover_RoundTrip(t *testing.T) {
	v := NewEIP191Verifier()

	address, signature := signPersonal(t, "sign in to walletpulse")

	recovered, err := v.Recover("sign in to walletpulse", signature)
	require.NoError(t, err)
	require.Equal(t, address, recovered)
}

func TestRecover_DifferentMessageRecoversDifferentAddress(t *testing.T) {
	v := NewEIP191Verifier()

	address, signature := signPersonal(t, "original message")

	recovered, err := v.Recover("tampered message", signature)
	require.NoError(t, err)
	require.NotEqual(t, address, recovered)
}

func TestRecover_MalformedSignature(t *testing.T) {
	v := NewEIP191Verifier()

	cases := []struct {
		name string
		sig  string
	}{
		{"not hex", "zzzz"},
		{"missing prefix", "deadbeef"},
		{"too short", "0xdeadbeef"},
		{"bad recovery id", "0x" + stringOfByte("11", 64) + "09"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Recover("message", tc.sig)
			require.ErrorIs(t, err, core.ErrInvalidSignature)
		})
	}
}

func stringOfByte(hexByte string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += hexByte
	}
	return out
}
