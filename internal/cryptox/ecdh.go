// Package cryptox implements the key-agreement and AEAD wiring the
// attestation protocol uses to carry the disk key from verifier to
// attester: X25519 ephemeral key agreement grounded on
// virtengine-virtengine/app/netsecurity_noise.go's GenerateNoiseKeyPair, and
// an HKDF-SHA512-derived AES-256-GCM AEAD grounded on the nonce-handling
// idiom documented in original_source/attestation_server/src/req_resp_ds.rs.
package cryptox

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/virtengine/snp-attest/internal/errs"
)

// KeyPair is an X25519 key pair.
type KeyPair struct {
	Private [32]byte
	Public  [32]byte
}

// GenerateKeyPair generates a new ephemeral X25519 key pair, clamped per
// RFC 7748.
func GenerateKeyPair() (*KeyPair, error) {
	var priv [32]byte
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}

	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	var pub [32]byte
	curve25519.ScalarBaseMult(&pub, &priv)

	return &KeyPair{Private: priv, Public: pub}, nil
}

// Agree computes the shared X25519 secret with a peer's public key.
func Agree(priv [32]byte, peerPublic [32]byte) ([32]byte, error) {
	var shared [32]byte
	out, err := curve25519.X25519(priv[:], peerPublic[:])
	if err != nil {
		return shared, errs.ErrTransportFailure.Wrapf("ecdh agreement failed: %v", err)
	}
	copy(shared[:], out)
	return shared, nil
}
