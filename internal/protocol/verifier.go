package protocol

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"cosmossdk.io/log"
	"github.com/cenkalti/backoff/v4"

	"github.com/virtengine/snp-attest/internal/cryptox"
	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/launchdigest"
	"github.com/virtengine/snp-attest/internal/report"
	"github.com/virtengine/snp-attest/internal/vcek"
	"github.com/virtengine/snp-attest/internal/verify"
	"github.com/virtengine/snp-attest/internal/vmdesc"
)

// maxPhase1Retries bounds how many times the client re-sends a nonce while
// waiting for the attester to come up. Only Phase-1 retries: once a report
// has been verified, a Phase-2 failure is never retried, since replaying a
// wrapped disk key onto a machine that may have already seen it (and moved
// on) risks handing the key to an impostor that answered a stale session.
const maxPhase1Retries = 5

// reportVerifier is the subset of *verify.Verifier the client depends on,
// so tests can substitute a fake without needing a real AMD certificate
// chain on hand.
type reportVerifier interface {
	Verify(ctx context.Context, product verify.ProductName, rep *report.AttestationReport, policy verify.Policy) error
}

// Client drives the verifier side of the exchange against one attester.
type Client struct {
	http    *http.Client
	baseURL string
	verify  reportVerifier
	desc    *vmdesc.VMDescription
	ld      launchdigest.Primitive
	binding *report.Binding
	log     log.Logger

	// DumpReportPath, if set, makes ProvisionDiskKey write the raw report
	// bytes here as soon as they're received, independent of whether the
	// report later passes verification.
	DumpReportPath string
}

// NewClient builds a Client targeting baseURL (the attester's HTTP address).
// binding may be nil if no ID block / ID auth block pair is configured.
func NewClient(baseURL string, verifier reportVerifier, desc *vmdesc.VMDescription, ld launchdigest.Primitive, binding *report.Binding, logger log.Logger) *Client {
	return &Client{
		http:    http.DefaultClient,
		baseURL: baseURL,
		verify:  verifier,
		desc:    desc,
		ld:      ld,
		binding: binding,
		log:     logger.With("module", "verifier"),
	}
}

// ProvisionDiskKey runs one full attestation exchange: it resets the
// attester, requests and verifies an attestation report bound to a fresh
// nonce, then wraps diskKey under a shared secret derived with the
// attester's ephemeral public key and delivers it.
func (c *Client) ProvisionDiskKey(ctx context.Context, diskKey []byte) error {
	if err := c.postReset(ctx); err != nil {
		c.log.Warn("reset before attestation failed, continuing anyway", "error", err)
	}

	nonce, err := randomNonce()
	if err != nil {
		return errs.ErrTransportFailure.Wrapf("generate nonce: %v", err)
	}

	rep, err := c.requestReportWithRetry(ctx, nonce)
	if err != nil {
		return err
	}

	if c.DumpReportPath != "" {
		if err := os.WriteFile(c.DumpReportPath, rep.Raw(), 0o600); err != nil {
			c.log.Warn("failed to dump attestation report", "path", c.DumpReportPath, "error", err)
		}
	}

	product, err := productFor(c.desc)
	if err != nil {
		return err
	}

	digest, err := launchdigest.Compute(c.ld, c.desc)
	if err != nil {
		return err
	}

	policy := verify.Policy{
		GuestPolicy:       c.desc.GuestPolicy,
		CheckGuestPolicy:  true,
		PlatformInfo:      c.desc.PlatformInfo,
		CheckPlatformInfo: true,
		LaunchDigest:      digest,
		CheckLaunchDigest: true,
		MinCommittedTCB:   c.desc.MinCommittedTCBVersion(),
		CheckCommittedTCB: true,
		Binding:           c.binding,
		ReportDataValidate: func(data [64]byte) error {
			got := report.ParseReportData(data)
			if got.Nonce != nonce {
				return fmt.Errorf("expected nonce %#x, got %#x", nonce, got.Nonce)
			}
			return nil
		},
	}

	if err := c.verify.Verify(ctx, product, rep, policy); err != nil {
		return err
	}

	attesterData := report.ParseReportData(rep.ReportData)

	kp, err := cryptox.GenerateKeyPair()
	if err != nil {
		return errs.ErrTransportFailure.Wrapf("generate ephemeral keypair: %v", err)
	}

	shared, err := cryptox.Agree(kp.Private, attesterData.PublicKey)
	if err != nil {
		return err
	}

	wrapped, err := cryptox.Seal(shared, nonce, diskKey)
	if err != nil {
		return err
	}

	return c.postWrappedKey(ctx, WrappedDiskKey{WrappedDiskKey: wrapped, ClientPublicKey: kp.Public})
}

func (c *Client) requestReportWithRetry(ctx context.Context, nonce uint64) (*report.AttestationReport, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxPhase1Retries), ctx)

	var rep *report.AttestationReport
	err := backoff.Retry(func() error {
		r, err := c.postNonce(ctx, nonce)
		if err != nil {
			c.log.Warn("phase-1 attempt failed, retrying", "error", err)
			return err
		}
		rep = r
		return nil
	}, policy)
	if err != nil {
		return nil, errs.ErrTransportFailure.Wrapf("phase-1 exhausted retries: %v", err)
	}
	return rep, nil
}

func (c *Client) postReset(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reset", nil)
	if err != nil {
		return errs.ErrTransportFailure.Wrapf("build reset request: %v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errs.ErrTransportFailure.Wrapf("reset request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errs.ErrTransportFailure.Wrapf("reset returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) postNonce(ctx context.Context, nonce uint64) (*report.AttestationReport, error) {
	body, err := json.Marshal(AttestationRequest{Nonce: nonce})
	if err != nil {
		return nil, errs.ErrTransportFailure.Wrapf("marshal attestation request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, errs.ErrTransportFailure.Wrapf("build attestation request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.ErrTransportFailure.Wrapf("attestation request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errs.ErrTransportFailure.Wrapf("attestation request returned status %d", resp.StatusCode)
	}

	var envelope AttestationReportEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errs.ErrTransportFailure.Wrapf("decode attestation report: %v", err)
	}
	return &envelope.Report, nil
}

func (c *Client) postWrappedKey(ctx context.Context, wdk WrappedDiskKey) error {
	body, err := json.Marshal(wdk)
	if err != nil {
		return errs.ErrTransportFailure.Wrapf("marshal wrapped disk key: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return errs.ErrTransportFailure.Wrapf("build phase-2 request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.ErrTransportFailure.Wrapf("phase-2 request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errs.ErrTransportFailure.Wrapf("phase-2 request returned status %d", resp.StatusCode)
	}
	return nil
}

func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func productFor(desc *vmdesc.VMDescription) (verify.ProductName, error) {
	switch desc.HostCPUFamily {
	case vmdesc.Milan:
		return vcek.Milan, nil
	case vmdesc.Genoa:
		return vcek.Genoa, nil
	default:
		return "", errs.ErrTransportFailure.Wrapf("unsupported host cpu family %q", desc.HostCPUFamily)
	}
}
