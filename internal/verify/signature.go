package verify

import (
	"crypto/ecdsa"
	"crypto/sha512"
	"math/big"

	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/report"
)

// verifySignature checks the report's ECDSA-P384 signature against the
// VCEK's public key, grounded on
// virtengine-virtengine/pkg/enclave_runtime/crypto_sev.go's
// VerifyReportSignature / crypto_common.go's ECDSAVerifier.VerifyP384: hash
// the signed prefix with SHA-384, then verify against the two
// little-endian-stored big-integer components the report carries.
func verifySignature(rep *report.AttestationReport, vcekPub *ecdsa.PublicKey) error {
	digest := sha512.Sum384(rep.SignedData())

	rBytes, sBytes := rep.ECDSAComponents()
	r := new(big.Int).SetBytes(rBytes)
	s := new(big.Int).SetBytes(sBytes)

	if !ecdsa.Verify(vcekPub, digest[:], r, s) {
		return errs.ErrInvalidSignature
	}
	return nil
}
