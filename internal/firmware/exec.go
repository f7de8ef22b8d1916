package firmware

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/virtengine/snp-attest/internal/report"
)

// DefaultTool is the external binary name attestd looks for on PATH when
// running against real SEV-SNP guest firmware instead of MockOracle.
const DefaultTool = "snp-get-report"

// ExecOracle shells out to an external guest-request helper, writing the
// 64-byte report-data on stdin and reading the raw ReportSize-byte report
// back on stdout. The actual /dev/sev-guest GHCB ioctl exchange is left to
// that external binary, consistent with the SNP firmware driver remaining
// an out-of-scope collaborator; this type only owns the calling convention.
type ExecOracle struct {
	Path string
}

// GetReport implements Oracle.
func (e ExecOracle) GetReport(nonce uint64, publicKey [32]byte) (*report.AttestationReport, error) {
	path := e.Path
	if path == "" {
		path = DefaultTool
	}

	rd := report.NewReportData(nonce, publicKey).Bytes()
	cmd := exec.CommandContext(context.Background(), path)
	cmd.Stdin = bytes.NewReader(rd[:])

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", path, err, stderr.String())
	}
	return report.Unmarshal(out)
}
