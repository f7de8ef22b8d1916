package verify

import (
	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/report"
)

// ReportDataValidator inspects the full 64-byte report-data field. The
// protocol installs one that reconstructs the nonce from the first 8
// little-endian bytes and compares it against the nonce it sent.
type ReportDataValidator func(data [64]byte) error

// Policy is the set of field-level expectations a verifier holds for one
// attestation exchange. Every field is optional; a zero-value field of the
// wrong type cannot be distinguished from "don't check this", so callers
// must use the Check* flags to opt in, mirroring an all-optional
// check_report_data signature.
type Policy struct {
	GuestPolicy        uint64
	CheckGuestPolicy   bool
	PlatformInfo       uint64
	CheckPlatformInfo  bool
	HostData           [32]byte
	CheckHostData      bool
	LaunchDigest       [48]byte
	CheckLaunchDigest  bool
	MinCommittedTCB    report.TcbVersion
	CheckCommittedTCB  bool
	ReportDataValidate ReportDataValidator
	Binding            *report.Binding
}

// checkFields applies every configured policy check in a fixed order:
// policy, then ID-block binding, then TCB floor, then platform info, then
// report-data, then host data, then launch digest.
// Checking data before the signature makes mismatches easier to diagnose:
// a bad signature and a bad field both fail, but only one produces an
// actionable message first.
func checkFields(rep *report.AttestationReport, p Policy) error {
	if p.CheckGuestPolicy && rep.Policy != p.GuestPolicy {
		return errs.ErrPolicyMismatch.Wrapf("expected %#x, got %#x", p.GuestPolicy, rep.Policy)
	}

	if p.Binding != nil {
		if err := checkBinding(rep, *p.Binding); err != nil {
			return err
		}
	}

	if p.CheckCommittedTCB && !rep.CommittedTCB.AtLeast(p.MinCommittedTCB) {
		return errs.ErrTcbVersionMismatch.Wrapf("required minimum %+v, got %+v", p.MinCommittedTCB, rep.CommittedTCB)
	}

	if p.CheckPlatformInfo && rep.PlatformInfo != p.PlatformInfo {
		return errs.ErrPlatformInfoMismatch.Wrapf("expected %#x, got %#x", p.PlatformInfo, rep.PlatformInfo)
	}

	if p.ReportDataValidate != nil {
		if err := p.ReportDataValidate(rep.ReportData); err != nil {
			return errs.ErrReportDataMismatch.Wrapf("%v", err)
		}
	}

	if p.CheckHostData && rep.HostData != p.HostData {
		return errs.ErrHostDataMismatch.Wrapf("expected %x, got %x", p.HostData, rep.HostData)
	}

	if p.CheckLaunchDigest && rep.Measurement != p.LaunchDigest {
		return errs.ErrLaunchDigestMismatch.Wrapf("expected %x, got %x", p.LaunchDigest, rep.Measurement)
	}

	return nil
}

// checkBinding asserts that the report's ID-block-derived fields exactly
// match the binding reconstructed from an owner-supplied ID block and ID
// auth block pair.
func checkBinding(rep *report.AttestationReport, b report.Binding) error {
	switch {
	case rep.GuestSVN != b.GuestSVN:
		return errs.ErrInvalidIdBlock.Wrapf("guest_svn mismatch: expected %d, got %d", b.GuestSVN, rep.GuestSVN)
	case rep.FamilyID != b.FamilyID:
		return errs.ErrInvalidIdBlock.Wrapf("family_id mismatch: expected %x, got %x", b.FamilyID, rep.FamilyID)
	case rep.ImageID != b.ImageID:
		return errs.ErrInvalidIdBlock.Wrapf("image_id mismatch: expected %x, got %x", b.ImageID, rep.ImageID)
	case rep.IDKeyDigest != b.IDKeyDigest:
		return errs.ErrInvalidIdBlock.Wrapf("id_key_digest mismatch: expected %x, got %x", b.IDKeyDigest, rep.IDKeyDigest)
	case rep.AuthorKeyDigest != b.AuthorKeyDigest:
		return errs.ErrInvalidIdBlock.Wrapf("author_key_digest mismatch: expected %x, got %x", b.AuthorKeyDigest, rep.AuthorKeyDigest)
	}
	return nil
}
