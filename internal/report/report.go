// Package report models the AMD SEV-SNP attestation report wire format.
//
// The layout mirrors the firmware ABI's ATTESTATION_REPORT structure (AMD
// SEV-SNP Firmware ABI Specification, "ATTESTATION_REPORT Structure"). The
// same table is modeled, for a different consumer (the in-guest GHCB
// request path), by usbarmory-tamago's kvm/svm/report.go; this package
// reuses that byte-exact struct shape for the owner-side verifier instead.
package report

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

const (
	// ReportSize is the total byte length of a serialized attestation report.
	ReportSize = 0x4A0
	// SignedPrefixSize is the number of leading bytes covered by the report signature.
	SignedPrefixSize = 0x2A0
	// SignatureSize is the byte length of the trailing ECDSA-P384 signature region.
	SignatureSize = ReportSize - SignedPrefixSize
)

// TcbVersion is the four-component Trusted Computing Base version tuple.
type TcbVersion struct {
	Bootloader uint8
	TEE        uint8
	_          [4]uint8
	SNP        uint8
	Microcode  uint8
}

// AtLeast reports whether every component of v is >= min. TCB checks are a
// floor, not an equality, because firmware updates can only monotonically
// advance.
func (v TcbVersion) AtLeast(min TcbVersion) bool {
	return v.Bootloader >= min.Bootloader &&
		v.TEE >= min.TEE &&
		v.SNP >= min.SNP &&
		v.Microcode >= min.Microcode
}

// wireReport is the byte-exact on-wire layout. Reserved fields are kept as
// explicit padding so binary.Read/Write round-trip without drift.
type wireReport struct {
	Version         uint32
	GuestSVN        uint32
	Policy          uint64
	FamilyID        [16]byte
	ImageID         [16]byte
	VMPL            uint32
	SignatureAlgo   uint32
	CurrentTCB      uint64
	PlatformInfo    uint64
	_               uint32 // author key en, signing key, mask gen
	_               uint32
	ReportData      [64]byte
	Measurement     [48]byte
	HostData        [32]byte
	IDKeyDigest     [48]byte
	AuthorKeyDigest [48]byte
	ReportID        [32]byte
	ReportIDMA      [32]byte
	ReportedTCB     uint64
	_               [24]byte
	ChipID          [64]byte
	CommittedTCB    uint64
	CurrentBuild    uint8
	CurrentMinor    uint8
	CurrentMajor    uint8
	_               uint8
	CommittedBuild  uint8
	CommittedMinor  uint8
	CommittedMajor  uint8
	_               uint8
	LaunchTCB       uint64
	_               [168]byte
	Signature       [SignatureSize]byte
}

// AttestationReport is the decoded, owner-facing view of a report.
type AttestationReport struct {
	Measurement     [48]byte
	ReportData      [64]byte
	ChipID          [64]byte
	CommittedTCB    TcbVersion
	LaunchedTCB     TcbVersion
	CurrentTCB      TcbVersion
	Policy          uint64
	PlatformInfo    uint64
	HostData        [32]byte
	GuestSVN        uint32
	FamilyID        [16]byte
	ImageID         [16]byte
	IDKeyDigest     [48]byte
	AuthorKeyDigest [48]byte

	// raw holds the exact bytes this report was decoded from, so SignedData
	// and Signature can be recovered without re-serializing (which could
	// drift from the original encoding in reserved/padding bytes).
	raw [ReportSize]byte
}

// Unmarshal decodes a report from its byte-exact wire representation.
func Unmarshal(buf []byte) (*AttestationReport, error) {
	if len(buf) < ReportSize {
		return nil, fmt.Errorf("attestation report too short: got %d bytes, want %d", len(buf), ReportSize)
	}

	var w wireReport
	if err := binary.Read(bytes.NewReader(buf[:ReportSize]), binary.LittleEndian, &w); err != nil {
		return nil, fmt.Errorf("decode attestation report: %w", err)
	}

	r := &AttestationReport{
		Measurement:     w.Measurement,
		ReportData:      w.ReportData,
		ChipID:          w.ChipID,
		Policy:          w.Policy,
		PlatformInfo:    w.PlatformInfo,
		HostData:        w.HostData,
		GuestSVN:        w.GuestSVN,
		FamilyID:        w.FamilyID,
		ImageID:         w.ImageID,
		IDKeyDigest:     w.IDKeyDigest,
		AuthorKeyDigest: w.AuthorKeyDigest,
		CommittedTCB: tcbFromPacked(w.CommittedTCB),
		LaunchedTCB:  tcbFromPacked(w.LaunchTCB),
		CurrentTCB:   tcbFromPacked(w.CurrentTCB),
	}
	copy(r.raw[:], buf[:ReportSize])
	return r, nil
}

// tcbFromPacked decodes the packed 8-byte TCB version field into its four
// named components, per the firmware ABI's TCB_VERSION structure.
func tcbFromPacked(packed uint64) TcbVersion {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, packed)
	return TcbVersion{
		Bootloader: b[0],
		TEE:        b[1],
		SNP:        b[6],
		Microcode:  b[7],
	}
}

// tcbToPacked is the inverse of tcbFromPacked.
func tcbToPacked(v TcbVersion) uint64 {
	b := make([]byte, 8)
	b[0] = v.Bootloader
	b[1] = v.TEE
	b[6] = v.SNP
	b[7] = v.Microcode
	return binary.LittleEndian.Uint64(b)
}

// Marshal serializes an AttestationReport's exported fields back into a
// byte-exact wire buffer, the inverse of Unmarshal. Fields the firmware ABI
// defines but this package doesn't expose (VMPL, signature algorithm,
// report IDs, build version triples) are left zero; this is used to
// fabricate reports for tests and mock oracles, never to reproduce a real
// signed report, so those fields carry no meaning here.
func Marshal(r *AttestationReport) []byte {
	w := wireReport{
		GuestSVN:        r.GuestSVN,
		Policy:          r.Policy,
		FamilyID:        r.FamilyID,
		ImageID:         r.ImageID,
		CurrentTCB:      tcbToPacked(r.CurrentTCB),
		PlatformInfo:    r.PlatformInfo,
		ReportData:      r.ReportData,
		Measurement:     r.Measurement,
		HostData:        r.HostData,
		IDKeyDigest:     r.IDKeyDigest,
		AuthorKeyDigest: r.AuthorKeyDigest,
		CommittedTCB:    tcbToPacked(r.CommittedTCB),
		LaunchTCB:       tcbToPacked(r.LaunchedTCB),
		ChipID:          r.ChipID,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, &w)
	return buf.Bytes()
}

// New builds an AttestationReport from its exported fields, round-tripping
// through Marshal/Unmarshal so the result carries a consistent raw buffer
// (and therefore serializes correctly over JSON). Use this instead of a
// bare struct literal whenever a report needs to survive a wire round trip,
// such as in a mock firmware oracle.
func New(fields AttestationReport) *AttestationReport {
	out, err := Unmarshal(Marshal(&fields))
	if err != nil {
		panic("report: Marshal produced an unparsable buffer: " + err.Error())
	}
	return out
}

// SignedData returns the leading SignedPrefixSize bytes covered by the
// report's ECDSA signature.
func (r *AttestationReport) SignedData() []byte {
	out := make([]byte, SignedPrefixSize)
	copy(out, r.raw[:SignedPrefixSize])
	return out
}

// Signature returns the raw 512-byte signature region (R || S || reserved).
func (r *AttestationReport) Signature() [SignatureSize]byte {
	var sig [SignatureSize]byte
	copy(sig[:], r.raw[SignedPrefixSize:ReportSize])
	return sig
}

// ECDSAComponents splits the signature region into its big-integer R and S
// components, each stored little-endian and zero-padded to 72 bytes per the
// firmware ABI's "ECDSA_SIG" structure.
func (r *AttestationReport) ECDSAComponents() (rBytes, sBytes []byte) {
	sig := r.Signature()
	const compLen = 72
	rLE := sig[:compLen]
	sLE := sig[compLen : 2*compLen]
	return reverse(rLE), reverse(sLE)
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// Raw returns the full byte-exact serialized report.
func (r *AttestationReport) Raw() []byte {
	out := make([]byte, ReportSize)
	copy(out, r.raw[:])
	return out
}

// jsonReport is the wire representation used for HTTP transport: the raw
// byte-exact report, base64-encoded by encoding/json's []byte handling.
type jsonReport struct {
	Raw []byte `json:"raw"`
}

// MarshalJSON encodes the report as its raw byte-exact form so a decoding
// peer reconstructs the identical signed bytes (encoding/json base64s a
// []byte field automatically).
func (r AttestationReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonReport{Raw: r.raw[:]})
}

// UnmarshalJSON decodes a report previously produced by MarshalJSON.
func (r *AttestationReport) UnmarshalJSON(data []byte) error {
	var jr jsonReport
	if err := json.Unmarshal(data, &jr); err != nil {
		return err
	}
	decoded, err := Unmarshal(jr.Raw)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}
