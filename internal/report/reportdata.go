package report

import "encoding/binary"

// ReportDataLen is the fixed length of the report-data field.
const ReportDataLen = 64

// PublicKeyLen is the length of an X25519 public key.
const PublicKeyLen = 32

// ReportData models the caller-controlled 64-byte report-data payload used
// by this protocol: an 8-byte little-endian nonce followed by a 32-byte
// X25519 public key, zero-padded to 64 bytes. Only the first 40 bytes are
// meaningful.
type ReportData struct {
	Nonce     uint64
	PublicKey [PublicKeyLen]byte
}

// NewReportData builds a ReportData for embedding in an attestation request.
func NewReportData(nonce uint64, publicKey [PublicKeyLen]byte) ReportData {
	return ReportData{Nonce: nonce, PublicKey: publicKey}
}

// Bytes serializes the report-data into its 64-byte wire form.
func (d ReportData) Bytes() [ReportDataLen]byte {
	var out [ReportDataLen]byte
	binary.LittleEndian.PutUint64(out[:8], d.Nonce)
	copy(out[8:8+PublicKeyLen], d.PublicKey[:])
	return out
}

// ParseReportData extracts the nonce and public key from a report's raw
// 64-byte report-data field, ignoring the trailing zero padding.
func ParseReportData(raw [ReportDataLen]byte) ReportData {
	var d ReportData
	d.Nonce = binary.LittleEndian.Uint64(raw[:8])
	copy(d.PublicKey[:], raw[8:8+PublicKeyLen])
	return d
}
