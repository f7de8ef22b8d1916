package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha512"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/virtengine/snp-attest/internal/errs"
)

const (
	aesKeyLen   = 32
	gcmNonceLen = 12
)

// hkdfInfo is the fixed context string both sides of the exchange expand
// with; changing it would silently derive different key material for
// clients built against either side.
var hkdfInfo = []byte("aes_key")

// deriveKey runs HKDF-SHA512 over the ECDH shared secret to produce a
// 32-byte AES-256 key. The salt is the session nonce encoded
// little-endian, while the AEAD nonce below encodes the same uint64
// big-endian. The two encodings must not be unified: doing so would change
// the key material every implementation derives.
func deriveKey(sharedSecret [32]byte, nonce uint64) ([aesKeyLen]byte, error) {
	var salt [8]byte
	binary.LittleEndian.PutUint64(salt[:], nonce)

	r := hkdf.New(sha512.New, sharedSecret[:], salt[:], hkdfInfo)
	var key [aesKeyLen]byte
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, errs.ErrAeadEncrypt.Wrapf("derive AES key: %v", err)
	}
	return key, nil
}

// counterNonce builds the nonce for the Nth seal/open operation starting
// from the session's initial counter value: the big-endian counter in the
// first 8 bytes, zero-padded to the GCM nonce length, matching
// CounterNonceSequence in
// original_source/attestation_server/src/req_resp_ds.rs.
func counterNonce(counter uint64) [gcmNonceLen]byte {
	var n [gcmNonceLen]byte
	binary.BigEndian.PutUint64(n[:8], counter)
	return n
}

// Seal encrypts plaintext under a key derived from sharedSecret and nonce,
// returning ciphertext with the 16-byte GCM tag appended. Only the initial
// counter value, not the full sequence, is exposed: this protocol seals
// exactly one message per key agreement.
func Seal(sharedSecret [32]byte, nonce uint64, plaintext []byte) ([]byte, error) {
	key, err := deriveKey(sharedSecret, nonce)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errs.ErrAeadEncrypt.Wrapf("build AES cipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.ErrAeadEncrypt.Wrapf("build GCM mode: %v", err)
	}

	n := counterNonce(nonce)
	return gcm.Seal(nil, n[:], plaintext, nil), nil
}

// Open decrypts a ciphertext produced by Seal with the same sharedSecret
// and nonce.
func Open(sharedSecret [32]byte, nonce uint64, ciphertext []byte) ([]byte, error) {
	key, err := deriveKey(sharedSecret, nonce)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errs.ErrAeadDecrypt.Wrapf("build AES cipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.ErrAeadDecrypt.Wrapf("build GCM mode: %v", err)
	}

	n := counterNonce(nonce)
	plaintext, err := gcm.Open(nil, n[:], ciphertext, nil)
	if err != nil {
		return nil, errs.ErrAeadDecrypt.Wrapf("authentication failed: %v", err)
	}
	return plaintext, nil
}
