package launchdigest

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/virtengine/snp-attest/internal/errs"
)

// DefaultTool is the external binary name CLI commands look for on PATH
// when no override is configured.
const DefaultTool = "snp-measure"

// ExecPrimitive shells out to an external launch-digest reduction tool: the
// marshaled Args are written to the process's stdin as JSON, and the tool is
// expected to print the 48-byte digest as a hex string on stdout. Grounded
// on the subprocess-invocation idiom in microsoft-hcsshim's
// computestorage/registry.go (exec.Command + captured output), adapted here
// since the measurement reduction itself has no Go implementation in this
// repository.
type ExecPrimitive struct {
	Path string
}

// ComputeLaunchDigest implements Primitive.
func (e ExecPrimitive) ComputeLaunchDigest(args Args) ([48]byte, error) {
	var digest [48]byte

	payload, err := json.Marshal(args)
	if err != nil {
		return digest, fmt.Errorf("marshal launch digest args: %w", err)
	}

	path := e.Path
	if path == "" {
		path = DefaultTool
	}

	cmd := exec.CommandContext(context.Background(), path)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return digest, errs.ErrLaunchDigestFailure.Wrapf("%s: %v: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	raw, err := hex.DecodeString(strings.TrimSpace(stdout.String()))
	if err != nil {
		return digest, errs.ErrLaunchDigestFailure.Wrapf("%s returned non-hex output: %v", path, err)
	}
	if len(raw) != len(digest) {
		return digest, errs.ErrLaunchDigestFailure.Wrapf("%s returned %d bytes, want %d", path, len(raw), len(digest))
	}
	copy(digest[:], raw)
	return digest, nil
}
