package launchdigest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecPrimitive_ParsesHexDigest(t *testing.T) {
	want := strings.Repeat("ab", 48)
	scriptPath := writeScript(t, "cat >/dev/null; printf '"+want+"'")

	prim := ExecPrimitive{Path: scriptPath}
	digest, err := prim.ComputeLaunchDigest(Args{VCPUs: 1, VCPUType: VCPUType})
	require.NoError(t, err)

	var expected [48]byte
	for i := range expected {
		expected[i] = 0xab
	}
	require.Equal(t, expected, digest)
}

func TestExecPrimitive_RejectsMalformedOutput(t *testing.T) {
	scriptPath := writeScript(t, "cat >/dev/null; printf 'not-hex'")
	prim := ExecPrimitive{Path: scriptPath}
	_, err := prim.ComputeLaunchDigest(Args{})
	require.Error(t, err)
}

func TestExecPrimitive_RejectsNonZeroExit(t *testing.T) {
	scriptPath := writeScript(t, "cat >/dev/null; exit 1")
	prim := ExecPrimitive{Path: scriptPath}
	_, err := prim.ComputeLaunchDigest(Args{})
	require.Error(t, err)
}
