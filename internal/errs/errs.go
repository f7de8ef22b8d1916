// Package errs registers the typed error taxonomy shared by every
// component of the attestation pipeline. Each error carries a stable code
// so callers can errors.Is/errors.As against a sentinel while the wrapped
// message still embeds the concrete expected/observed values.
package errs

import (
	"cosmossdk.io/errors"
)

const (
	moduleConfig   = "config"
	moduleVCEK     = "vcek"
	moduleVerify   = "verify"
	moduleProtocol = "protocol"
)

// Config-layer errors.
var (
	// ErrConfigParse is returned when a VMDescription is malformed or incomplete.
	ErrConfigParse = errors.Register(moduleConfig, 2, "malformed or incomplete VM description")
)

// VCEK resolver errors.
var (
	// ErrCertificateUnavailable is returned when the VCEK could not be fetched from the cache or AMD KDS.
	ErrCertificateUnavailable = errors.Register(moduleVCEK, 2, "VCEK certificate unavailable")
	// ErrCertificateParse is returned when returned/cached bytes do not parse as X.509.
	ErrCertificateParse = errors.Register(moduleVCEK, 3, "VCEK certificate does not parse as X.509")
)

// Report-verification errors.
var (
	// ErrLaunchDigestFailure is returned when the expected measurement could not be computed.
	ErrLaunchDigestFailure = errors.Register(moduleVerify, 2, "failed to compute expected launch digest")
	// ErrInvalidSignature is returned when the certificate chain or report signature fails to verify.
	ErrInvalidSignature = errors.Register(moduleVerify, 3, "invalid attestation report signature")
	// ErrPolicyMismatch is returned when the report's guest policy does not equal the expected policy.
	ErrPolicyMismatch = errors.Register(moduleVerify, 4, "guest policy mismatch")
	// ErrPlatformInfoMismatch is returned when the report's platform info does not equal the expected value.
	ErrPlatformInfoMismatch = errors.Register(moduleVerify, 5, "platform info mismatch")
	// ErrHostDataMismatch is returned when the report's host data does not equal the expected value.
	ErrHostDataMismatch = errors.Register(moduleVerify, 6, "host data mismatch")
	// ErrLaunchDigestMismatch is returned when the report's measurement does not equal the expected digest.
	ErrLaunchDigestMismatch = errors.Register(moduleVerify, 7, "launch digest mismatch")
	// ErrTcbVersionMismatch is returned when any committed TCB component is below the required minimum.
	ErrTcbVersionMismatch = errors.Register(moduleVerify, 8, "committed TCB below required minimum")
	// ErrReportDataMismatch is returned when the report-data predicate rejects the report's report-data field.
	ErrReportDataMismatch = errors.Register(moduleVerify, 9, "report data mismatch")
	// ErrInvalidIdBlock is returned when the ID block binding does not match the report.
	ErrInvalidIdBlock = errors.Register(moduleVerify, 10, "ID block binding mismatch")
)

// Protocol/transport errors.
var (
	// ErrAeadEncrypt is returned when AEAD sealing of the disk key fails.
	ErrAeadEncrypt = errors.Register(moduleProtocol, 2, "AEAD encryption failed")
	// ErrAeadDecrypt is returned when AEAD opening of the wrapped disk key fails.
	ErrAeadDecrypt = errors.Register(moduleProtocol, 3, "AEAD decryption failed")
	// ErrTransportFailure is returned on HTTP request/response I/O failures.
	ErrTransportFailure = errors.Register(moduleProtocol, 4, "transport failure")
)
