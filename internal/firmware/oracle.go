// Package firmware abstracts the SEV-SNP guest firmware device behind a
// single report-fetching operation, so the attester state machine can be
// exercised without hardware: a global firmware handle with ad hoc device
// access is replaced with an injected report oracle capability.
package firmware

import (
	"github.com/virtengine/snp-attest/internal/report"
)

// Oracle fetches an attestation report binding the given nonce and ephemeral
// public key into the report's report-data field.
type Oracle interface {
	GetReport(nonce uint64, publicKey [32]byte) (*report.AttestationReport, error)
}

// MockOracle returns a defaulted report with only the report-data field
// populated, for verifier-side tests that don't have an SNP device
// available.
type MockOracle struct{}

// GetReport implements Oracle.
func (MockOracle) GetReport(nonce uint64, publicKey [32]byte) (*report.AttestationReport, error) {
	rd := report.NewReportData(nonce, publicKey).Bytes()
	return report.New(report.AttestationReport{ReportData: rd}), nil
}

// DeviceOracle queries the real SEV-SNP guest firmware device
// (/dev/sev-guest on Linux) via the GHCB MSR protocol. Opening and ioctl'ing
// the device is platform-specific and lives outside this module; this type
// lets a caller supply that exchange as a function and hand the result to
// the protocol package like any other Oracle. cmd/attestd does not use it:
// it selects between ExecOracle and MockOracle.
type DeviceOracle struct {
	// RequestReport performs the actual MSGTYPE_REPORT_REQ GHCB exchange
	// and returns the raw ReportSize-byte response.
	RequestReport func(reportData [64]byte) ([]byte, error)
}

// GetReport implements Oracle.
func (d DeviceOracle) GetReport(nonce uint64, publicKey [32]byte) (*report.AttestationReport, error) {
	rd := report.NewReportData(nonce, publicKey).Bytes()
	raw, err := d.RequestReport(rd)
	if err != nil {
		return nil, err
	}
	return report.Unmarshal(raw)
}
