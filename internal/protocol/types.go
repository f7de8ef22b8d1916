// Package protocol implements the two-phase attestation-and-secret-injection
// exchange: nonce-in/report-out, then wrapped-key-in/decrypted-secret-out.
// The attester-side state machine and its HTTP surface are grounded on
// original_source/tools/attestation_server/src/bin/server/server_main.rs;
// the verifier client on .../bin/client/client_main.rs. HTTP wiring follows
// the gorilla/mux route-registration idiom used throughout
// virtengine-virtengine (e.g. pkg/ratelimit/integration.go).
package protocol

import (
	"github.com/virtengine/snp-attest/internal/report"
)

// AttestationRequest is the Phase-1 request body: a freshly generated
// CSPRNG nonce.
type AttestationRequest struct {
	Nonce uint64 `json:"nonce"`
}

// AttestationReportEnvelope wraps the serialized attestation report for
// Phase-1 responses.
type AttestationReportEnvelope struct {
	Report report.AttestationReport `json:"report"`
}

// WrappedDiskKey is the Phase-2 request body: the AEAD-sealed disk key and
// the verifier's ephemeral X25519 public key.
type WrappedDiskKey struct {
	WrappedDiskKey  []byte   `json:"wrapped_disk_key"`
	ClientPublicKey [32]byte `json:"client_public_key"`
}

// ResetResponse is the literal body returned by POST /reset.
const ResetResponse = "Ok"
