package firmware

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtengine/snp-attest/internal/report"
)

func TestExecOracle_ParsesReportFromStdout(t *testing.T) {
	script := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(script, []byte(
		"#!/bin/sh\ncat >/dev/null\nhead -c "+strconv.Itoa(report.ReportSize)+" /dev/zero\n",
	), 0o755))

	o := ExecOracle{Path: script}
	rep, err := o.GetReport(1, [32]byte{})
	require.NoError(t, err)
	require.NotNil(t, rep)
}

func TestExecOracle_PropagatesCommandFailure(t *testing.T) {
	script := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncat >/dev/null\nexit 3\n"), 0o755))

	o := ExecOracle{Path: script}
	_, err := o.GetReport(1, [32]byte{})
	require.Error(t, err)
}
