// Package verify implements the attestation-report verification pipeline:
// certificate-chain construction, VCEK signature verification, and the
// per-field policy checks (including optional ID-block binding).
//
// The certificate chain handling is grounded on
// virtengine-virtengine/pkg/enclave_runtime/crypto_common.go's
// CertificateChainVerifier and crypto_sev.go's compiled-in ARK/ASK PEM
// constants, adapted here for the SNP owner-verifier role: a root pool
// seeded per product family, the VCEK verified as the sole leaf.
package verify

import (
	"crypto/x509"
	"encoding/pem"
	"time"

	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/vcek"
)

// ProductName re-exports the chip family selector used to pick the right
// root-of-trust pair.
type ProductName = vcek.ProductName

const (
	Milan = vcek.Milan
	Genoa = vcek.Genoa
)

// Chain holds the AMD root-of-trust certificates for one product family.
type Chain struct {
	roots         *x509.CertPool
	intermediates *x509.CertPool
}

// chainFor builds the certificate pools for a product family from the
// compiled-in ARK/ASK pair. The ARK is the only root; the ASK is an
// intermediate, so x509.Verify accepts a VCEK only through a path
// VCEK -> ASK -> ARK in which the ASK is itself signed by the ARK.
func chainFor(product ProductName) (*Chain, error) {
	var arkPEM, askPEM string
	switch product {
	case Milan:
		arkPEM, askPEM = milanARKPEM, milanASKPEM
	case Genoa:
		arkPEM, askPEM = genoaARKPEM, genoaASKPEM
	default:
		return nil, errs.ErrInvalidSignature.Wrapf("unknown product family %q", product)
	}

	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM([]byte(arkPEM)) {
		return nil, errs.ErrInvalidSignature.Wrapf("failed to parse ARK certificate for %s", product)
	}
	intermediates := x509.NewCertPool()
	if !intermediates.AppendCertsFromPEM([]byte(askPEM)) {
		return nil, errs.ErrInvalidSignature.Wrapf("failed to parse ASK certificate for %s", product)
	}
	return &Chain{roots: roots, intermediates: intermediates}, nil
}

// verifyVCEK checks that vcekCert chains to the product family's compiled-in
// root of trust at the given time.
func (c *Chain) verifyVCEK(vcekCert *x509.Certificate, at time.Time) error {
	opts := x509.VerifyOptions{
		Roots:         c.roots,
		Intermediates: c.intermediates,
		CurrentTime:   at,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if _, err := vcekCert.Verify(opts); err != nil {
		return errs.ErrInvalidSignature.Wrapf("VCEK certificate chain verification failed: %v", err)
	}
	return nil
}

// parseVCEK parses a DER or PEM-encoded VCEK certificate.
func parseVCEK(der []byte) (*x509.Certificate, error) {
	if block, _ := pem.Decode(der); block != nil {
		der = block.Bytes
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errs.ErrCertificateParse.Wrapf("%v", err)
	}
	return cert, nil
}
