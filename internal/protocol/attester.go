package protocol

import (
	"encoding/json"
	"net/http"
	"os"

	"cosmossdk.io/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/virtengine/snp-attest/internal/cryptox"
	"github.com/virtengine/snp-attest/internal/firmware"
)

// state is the attester's place in the two-phase exchange.
type state int

const (
	stateReady state = iota
	stateAwaiting
)

// DefaultDiskKeyPath is where a successfully decrypted disk key is written.
const DefaultDiskKeyPath = "./disk_key.txt"

// pendingSession holds the material carried from Phase-1 into Phase-2. It
// lives only between a successful Phase-1 response and the matching Phase-2
// request (or a reset), never longer.
type pendingSession struct {
	nonce         uint64
	serverPrivate [32]byte
}

func (p *pendingSession) zero() {
	for i := range p.serverPrivate {
		p.serverPrivate[i] = 0
	}
}

// Attester runs the single-threaded, serial state machine described for the
// in-VM side of the exchange: exactly one in-flight provisioning at a time,
// no locking, Phase-1 always before Phase-2.
type Attester struct {
	oracle      firmware.Oracle
	log         log.Logger
	diskKeyPath string

	state   state
	pending *pendingSession

	// done is closed once a disk key has been successfully written, so a
	// caller running the HTTP server can shut it down. This package only
	// signals the event; whether that means a process exit or a test
	// assertion is for the caller to decide.
	done chan struct{}
}

// NewAttester builds an Attester backed by oracle, writing recovered disk
// keys to path (DefaultDiskKeyPath if empty).
func NewAttester(oracle firmware.Oracle, logger log.Logger, path string) *Attester {
	if path == "" {
		path = DefaultDiskKeyPath
	}
	return &Attester{
		oracle:      oracle,
		log:         logger.With("module", "attester"),
		diskKeyPath: path,
		state:       stateReady,
		done:        make(chan struct{}),
	}
}

// Done is closed once a disk key has been successfully written.
func (a *Attester) Done() <-chan struct{} {
	return a.done
}

// Router registers the attester's HTTP surface on a fresh gorilla/mux
// router: POST / for both protocol phases (distinguished by the attester's
// current state, not by path), and POST /reset for session recovery.
func (a *Attester) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", a.handleRoot).Methods(http.MethodPost)
	r.HandleFunc("/reset", a.handleReset).Methods(http.MethodPost)
	return r
}

func (a *Attester) handleRoot(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	log := a.log.With("session", sessionID)

	switch a.state {
	case stateReady:
		a.handlePhase1(w, r, log)
	case stateAwaiting:
		a.handlePhase2(w, r, log)
	}
}

func (a *Attester) handlePhase1(w http.ResponseWriter, r *http.Request, log log.Logger) {
	var req AttestationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode attestation request", "error", err)
		http.Error(w, "malformed attestation request", http.StatusBadRequest)
		return
	}

	kp, err := cryptox.GenerateKeyPair()
	if err != nil {
		log.Error("failed to generate ephemeral keypair", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	rep, err := a.oracle.GetReport(req.Nonce, kp.Public)
	if err != nil {
		log.Error("failed to obtain attestation report", "error", err)
		http.Error(w, "failed to obtain attestation report", http.StatusInternalServerError)
		return
	}

	a.pending = &pendingSession{nonce: req.Nonce, serverPrivate: kp.Private}
	a.state = stateAwaiting

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AttestationReportEnvelope{Report: *rep}); err != nil {
		log.Error("failed to encode attestation report response", "error", err)
	}
}

func (a *Attester) handlePhase2(w http.ResponseWriter, r *http.Request, log log.Logger) {
	var wdk WrappedDiskKey
	if err := json.NewDecoder(r.Body).Decode(&wdk); err != nil {
		log.Error("failed to decode wrapped disk key", "error", err)
		a.resetSession()
		http.Error(w, "malformed wrapped disk key", http.StatusBadRequest)
		return
	}

	pending := a.pending
	shared, err := cryptox.Agree(pending.serverPrivate, wdk.ClientPublicKey)
	if err != nil {
		log.Error("key agreement failed", "error", err)
		a.resetSession()
		http.Error(w, "key agreement failed", http.StatusBadRequest)
		return
	}

	plaintext, err := cryptox.Open(shared, pending.nonce, wdk.WrappedDiskKey)
	if err != nil {
		log.Error("aead decryption failed", "error", err)
		a.resetSession()
		http.Error(w, "aead decryption failed", http.StatusBadRequest)
		return
	}

	if err := os.WriteFile(a.diskKeyPath, plaintext, 0o600); err != nil {
		log.Error("failed to write disk key", "error", err)
		a.resetSession()
		http.Error(w, "failed to persist disk key", http.StatusInternalServerError)
		return
	}

	pending.zero()
	a.pending = nil
	w.WriteHeader(http.StatusOK)
	close(a.done)
}

func (a *Attester) handleReset(w http.ResponseWriter, r *http.Request) {
	a.resetSession()
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(ResetResponse))
}

// resetSession discards any pending ephemeral key material and returns the
// machine to Ready. Safe to call from any state.
func (a *Attester) resetSession() {
	if a.pending != nil {
		a.pending.zero()
		a.pending = nil
	}
	a.state = stateReady
}
