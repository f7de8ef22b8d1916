package verify

import (
	"context"
	"crypto/ecdsa"
	"time"

	"cosmossdk.io/log"

	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/report"
	"github.com/virtengine/snp-attest/internal/vcek"
)

// Verifier ties together VCEK resolution, certificate-chain verification,
// report-signature verification, and field policy checks into the single
// entry point a protocol session calls once per attestation report.
// Grounded on verify_and_check_report in
// original_source/tools/attestation_server/src/snp_validate_report.rs.
type Verifier struct {
	resolver *vcek.Resolver
	log      log.Logger
	now      func() time.Time
}

// NewVerifier builds a Verifier backed by the given VCEK resolver.
func NewVerifier(resolver *vcek.Resolver, logger log.Logger) *Verifier {
	return &Verifier{resolver: resolver, log: logger.With("module", "verify"), now: time.Now}
}

// Verify checks rep against policy and the AMD root of trust for product.
// Field checks run first: a mismatched field produces a more specific error
// than a raw signature failure would, and both are reported as distinct
// error kinds so callers can tell a policy violation from a tampered chain.
func (v *Verifier) Verify(ctx context.Context, product ProductName, rep *report.AttestationReport, policy Policy) error {
	if err := checkFields(rep, policy); err != nil {
		return err
	}

	der, err := v.resolver.Resolve(ctx, product, rep.ChipID, rep.CommittedTCB)
	if err != nil {
		return err
	}

	vcekCert, err := parseVCEK(der)
	if err != nil {
		return err
	}

	chain, err := chainFor(product)
	if err != nil {
		return err
	}
	if err := chain.verifyVCEK(vcekCert, v.now()); err != nil {
		return err
	}

	pub, ok := vcekCert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return errs.ErrInvalidSignature.Wrap("VCEK certificate does not carry an ECDSA public key")
	}

	return verifySignature(rep, pub)
}
