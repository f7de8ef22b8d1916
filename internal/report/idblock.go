package report

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"math/big"
)

// The ID block and ID auth block are owner-supplied structures fed to QEMU
// at VM launch time (AMD SEV-SNP Firmware ABI Specification, "ID_BLOCK" and
// "ID_AUTH_INFO" structures). Both are fixed-size (96 bytes for the ID
// block, one 4096-byte page for the ID auth block) and produced by a
// companion generator external to this package (cmd/idblock-generator
// implements that generator). This file decodes them to recompute the
// bindings an attestation report must carry, and also provides the
// encoders the generator uses.

const (
	ecdsaPubKeySize = 4 + 72 + 72 + 880 // curve id + Qx + Qy + reserved
	ecdsaSigSize    = 512               // R || S || reserved, same shape as the report signature

	// IDBlockSize is the fixed size of the ID_BLOCK structure.
	IDBlockSize = 48 + 16 + 16 + 4 + 4 + 8
	// IDAuthBlockSize is the fixed size of the ID_AUTH_INFO structure.
	IDAuthBlockSize = 4 + 4 + 56 + ecdsaSigSize + ecdsaPubKeySize + ecdsaSigSize + ecdsaPubKeySize + 952
)

// IDBlock is the decoded ID_BLOCK structure.
type IDBlock struct {
	LaunchDigest [48]byte
	FamilyID     [16]byte
	ImageID      [16]byte
	Version      uint32
	GuestSVN     uint32
	Policy       uint64
}

type wireIDBlock struct {
	LD       [48]byte
	FamilyID [16]byte
	ImageID  [16]byte
	Version  uint32
	GuestSVN uint32
	Policy   uint64
}

// ecdsaPubKey is the fixed-size SEV_ECDSA_PUBKEY structure.
type ecdsaPubKey struct {
	Curve uint32
	Qx    [72]byte
	Qy    [72]byte
	_     [880]byte
}

type wireIDAuth struct {
	IDKeyAlgo     uint32
	AuthorKeyAlgo uint32
	_             [56]byte
	IDBlockSig    [ecdsaSigSize]byte
	IDPubkey      ecdsaPubKey
	IDKeySig      [ecdsaSigSize]byte
	AuthorPubkey  ecdsaPubKey
	_             [952]byte
}

// IDAuthBlock is the decoded ID_AUTH_INFO structure.
type IDAuthBlock struct {
	IDPubkeyRaw     []byte
	AuthorPubkeyRaw []byte
}

// ParseIDBlock decodes the fixed-size ID_BLOCK bytes.
func ParseIDBlock(buf []byte) (IDBlock, error) {
	if len(buf) < IDBlockSize {
		return IDBlock{}, fmt.Errorf("id block too short: got %d bytes, want %d", len(buf), IDBlockSize)
	}
	var w wireIDBlock
	if err := binary.Read(bytes.NewReader(buf[:IDBlockSize]), binary.LittleEndian, &w); err != nil {
		return IDBlock{}, fmt.Errorf("decode id block: %w", err)
	}
	return IDBlock{
		LaunchDigest: w.LD,
		FamilyID:     w.FamilyID,
		ImageID:      w.ImageID,
		Version:      w.Version,
		GuestSVN:     w.GuestSVN,
		Policy:       w.Policy,
	}, nil
}

// ParseIDAuthBlock decodes the fixed-size ID_AUTH_INFO bytes.
func ParseIDAuthBlock(buf []byte) (IDAuthBlock, error) {
	if len(buf) < IDAuthBlockSize {
		return IDAuthBlock{}, fmt.Errorf("id auth block too short: got %d bytes, want %d", len(buf), IDAuthBlockSize)
	}
	var w wireIDAuth
	if err := binary.Read(bytes.NewReader(buf[:IDAuthBlockSize]), binary.LittleEndian, &w); err != nil {
		return IDAuthBlock{}, fmt.Errorf("decode id auth block: %w", err)
	}

	idRaw := make([]byte, 0, 4+72+72)
	idRaw = appendPubkey(idRaw, w.IDPubkey)
	authRaw := make([]byte, 0, 4+72+72)
	authRaw = appendPubkey(authRaw, w.AuthorPubkey)

	return IDAuthBlock{IDPubkeyRaw: idRaw, AuthorPubkeyRaw: authRaw}, nil
}

func appendPubkey(dst []byte, k ecdsaPubKey) []byte {
	var curve [4]byte
	binary.LittleEndian.PutUint32(curve[:], k.Curve)
	dst = append(dst, curve[:]...)
	dst = append(dst, k.Qx[:]...)
	dst = append(dst, k.Qy[:]...)
	return dst
}

// Binding holds the five fields reconstructed from an ID block / ID auth
// block pair, to be compared exactly against the corresponding attestation
// report fields.
type Binding struct {
	GuestSVN        uint32
	FamilyID        [16]byte
	ImageID         [16]byte
	IDKeyDigest     [48]byte
	AuthorKeyDigest [48]byte
}

// NewBinding computes the expected report bindings from a parsed ID block
// and ID auth block.
func NewBinding(id IDBlock, auth IDAuthBlock) Binding {
	return Binding{
		GuestSVN:        id.GuestSVN,
		FamilyID:        id.FamilyID,
		ImageID:         id.ImageID,
		IDKeyDigest:     sha512.Sum384(auth.IDPubkeyRaw),
		AuthorKeyDigest: sha512.Sum384(auth.AuthorPubkeyRaw),
	}
}

// ecdsaCurveP384 is the SEV_ECDSA_PUBKEY curve identifier for NIST P-384,
// per the AMD SEV-SNP Firmware ABI Specification's ECDSA curve ID table.
const ecdsaCurveP384 = 2

// ECDSAPubKeyMaterial holds a P-384 public key in the little-endian,
// fixed-width form the ID_AUTH_INFO structure embeds.
type ECDSAPubKeyMaterial struct {
	Curve uint32
	Qx    [72]byte
	Qy    [72]byte
}

// NewECDSAPubKeyMaterial encodes an ECDSA P-384 public key into its wire
// form: curve ID followed by X and Y, each little-endian and zero-padded to
// 72 bytes.
func NewECDSAPubKeyMaterial(pub *ecdsa.PublicKey) ECDSAPubKeyMaterial {
	var m ECDSAPubKeyMaterial
	m.Curve = ecdsaCurveP384
	copy(m.Qx[:], reverse(leftPad(pub.X.Bytes(), 72)))
	copy(m.Qy[:], reverse(leftPad(pub.Y.Bytes(), 72)))
	return m
}

// Raw returns the curve-ID-plus-coordinates bytes hashed to produce an
// IDKeyDigest or AuthorKeyDigest, in the same order ParseIDAuthBlock uses.
func (m ECDSAPubKeyMaterial) Raw() []byte {
	out := make([]byte, 0, 4+72+72)
	var curve [4]byte
	binary.LittleEndian.PutUint32(curve[:], m.Curve)
	out = append(out, curve[:]...)
	out = append(out, m.Qx[:]...)
	out = append(out, m.Qy[:]...)
	return out
}

func (m ECDSAPubKeyMaterial) wire() ecdsaPubKey {
	return ecdsaPubKey{Curve: m.Curve, Qx: m.Qx, Qy: m.Qy}
}

// EncodeECDSASignature packs an (r, s) signature pair into the wire form
// used by both the attestation report and the ID_AUTH_INFO structure:
// little-endian R, then little-endian S, each zero-padded to 72 bytes.
func EncodeECDSASignature(r, s *big.Int) [ecdsaSigSize]byte {
	var sig [ecdsaSigSize]byte
	copy(sig[:72], reverse(leftPad(r.Bytes(), 72)))
	copy(sig[72:144], reverse(leftPad(s.Bytes(), 72)))
	return sig
}

func leftPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b[len(b)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

// MarshalIDBlock serializes an IDBlock into its byte-exact ID_BLOCK wire
// form, the inverse of ParseIDBlock.
func MarshalIDBlock(b IDBlock) []byte {
	w := wireIDBlock{
		LD:       b.LaunchDigest,
		FamilyID: b.FamilyID,
		ImageID:  b.ImageID,
		Version:  b.Version,
		GuestSVN: b.GuestSVN,
		Policy:   b.Policy,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, &w)
	return buf.Bytes()
}

// MarshalIDAuthBlock serializes an ID_AUTH_INFO structure: the ID block's
// signature (by ID_KEY), the ID_KEY's public key, the author's endorsement
// of that key (idKeySig over the ID_KEY public key material, signed by
// AUTHOR_KEY), and the AUTHOR_KEY public key itself.
func MarshalIDAuthBlock(idKeyAlgo, authorKeyAlgo uint32, idBlockSig [ecdsaSigSize]byte, idPubkey ECDSAPubKeyMaterial, idKeySig [ecdsaSigSize]byte, authorPubkey ECDSAPubKeyMaterial) []byte {
	w := wireIDAuth{
		IDKeyAlgo:     idKeyAlgo,
		AuthorKeyAlgo: authorKeyAlgo,
		IDBlockSig:    idBlockSig,
		IDPubkey:      idPubkey.wire(),
		IDKeySig:      idKeySig,
		AuthorPubkey:  authorPubkey.wire(),
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, &w)
	return buf.Bytes()
}
