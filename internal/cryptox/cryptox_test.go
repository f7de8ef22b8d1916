package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair_ClampedAndAgreementSymmetric(t *testing.T) {
	a, err := GenerateKeyPair()
	require.NoError(t, err)
	b, err := GenerateKeyPair()
	require.NoError(t, err)

	require.Equal(t, byte(0), a.Private[0]&0x07)
	require.Equal(t, byte(64), a.Private[31]&0xC0)

	sharedA, err := Agree(a.Private, b.Public)
	require.NoError(t, err)
	sharedB, err := Agree(b.Private, a.Public)
	require.NoError(t, err)
	require.Equal(t, sharedA, sharedB)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("0123456789abcdef0123456789abcdef"))
	const nonce = uint64(42)

	ct, err := Seal(secret, nonce, []byte("disk-key-material"))
	require.NoError(t, err)

	pt, err := Open(secret, nonce, ct)
	require.NoError(t, err)
	require.Equal(t, []byte("disk-key-material"), pt)
}

func TestOpen_RejectsTamperedCiphertext(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("0123456789abcdef0123456789abcdef"))
	const nonce = uint64(7)

	ct, err := Seal(secret, nonce, []byte("payload"))
	require.NoError(t, err)
	ct[0] ^= 0xFF

	_, err = Open(secret, nonce, ct)
	require.Error(t, err)
}

func TestOpen_RejectsWrongNonce(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("0123456789abcdef0123456789abcdef"))

	ct, err := Seal(secret, 1, []byte("payload"))
	require.NoError(t, err)

	_, err = Open(secret, 2, ct)
	require.Error(t, err)
}

func TestDeriveKey_DifferentNoncesDifferentKeys(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("0123456789abcdef0123456789abcdef"))

	k1, err := deriveKey(secret, 1)
	require.NoError(t, err)
	k2, err := deriveKey(secret, 2)
	require.NoError(t, err)
	require.NotEqual(t, k1, k2)
}
