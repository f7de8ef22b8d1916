package verify

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtengine/snp-attest/internal/report"
)

// buildSignedReport assembles a full ReportSize buffer with an arbitrary
// signed prefix and a valid ECDSA-P384 signature over it, laid out the way
// report.AttestationReport.ECDSAComponents expects to read it back: each
// component little-endian, zero-padded to 72 bytes.
func buildSignedReport(t *testing.T, priv *ecdsa.PrivateKey, prefix []byte) []byte {
	t.Helper()
	require.Len(t, prefix, report.SignedPrefixSize)

	digest := sha512.Sum384(prefix)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	buf := make([]byte, report.ReportSize)
	copy(buf, prefix)

	writeLE := func(dst []byte, v []byte) {
		for i, j := 0, len(v)-1; j >= 0; i, j = i+1, j-1 {
			dst[i] = v[j]
		}
	}
	rBytes := r.Bytes()
	sBytes := s.Bytes()
	writeLE(buf[report.SignedPrefixSize:report.SignedPrefixSize+72], rBytes)
	writeLE(buf[report.SignedPrefixSize+72:report.SignedPrefixSize+144], sBytes)

	return buf
}

func TestVerifySignature_ValidSignatureAccepted(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	prefix := make([]byte, report.SignedPrefixSize)
	prefix[0] = 0x01

	buf := buildSignedReport(t, priv, prefix)
	rep, err := report.Unmarshal(buf)
	require.NoError(t, err)

	require.NoError(t, verifySignature(rep, &priv.PublicKey))
}

func TestVerifySignature_TamperedPrefixRejected(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	prefix := make([]byte, report.SignedPrefixSize)
	buf := buildSignedReport(t, priv, prefix)

	buf[0] ^= 0xFF // tamper after signing
	rep, err := report.Unmarshal(buf)
	require.NoError(t, err)

	require.Error(t, verifySignature(rep, &priv.PublicKey))
}
