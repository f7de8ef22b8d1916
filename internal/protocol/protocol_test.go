package protocol

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/virtengine/snp-attest/internal/cryptox"
	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/firmware"
	"github.com/virtengine/snp-attest/internal/launchdigest"
	"github.com/virtengine/snp-attest/internal/report"
	"github.com/virtengine/snp-attest/internal/verify"
	"github.com/virtengine/snp-attest/internal/vmdesc"
)

// fakeVerifier reimplements the field-check ordering of the real report
// verifier (policy, binding, TCB floor, platform info, report-data, launch
// digest; the host-data check is left out) without a certificate chain, so
// these tests can exercise the
// protocol state machine without a real AMD root of trust on hand; the
// chain/signature half of the pipeline is covered separately at the verify
// package's own test level.
type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, _ verify.ProductName, rep *report.AttestationReport, p verify.Policy) error {
	if p.CheckGuestPolicy && rep.Policy != p.GuestPolicy {
		return errs.ErrPolicyMismatch.Wrapf("expected %#x, got %#x", p.GuestPolicy, rep.Policy)
	}
	if p.Binding != nil {
		b := *p.Binding
		switch {
		case rep.GuestSVN != b.GuestSVN:
			return errs.ErrInvalidIdBlock.Wrap("guest_svn mismatch")
		case rep.FamilyID != b.FamilyID:
			return errs.ErrInvalidIdBlock.Wrap("family_id mismatch")
		case rep.ImageID != b.ImageID:
			return errs.ErrInvalidIdBlock.Wrap("image_id mismatch")
		case rep.IDKeyDigest != b.IDKeyDigest:
			return errs.ErrInvalidIdBlock.Wrap("id_key_digest mismatch")
		case rep.AuthorKeyDigest != b.AuthorKeyDigest:
			return errs.ErrInvalidIdBlock.Wrap("author_key_digest mismatch")
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
	if p.CheckLaunchDigest && rep.Measurement != p.LaunchDigest {
		return errs.ErrLaunchDigestMismatch.Wrapf("expected %x, got %x", p.LaunchDigest, rep.Measurement)
	}
	return nil
}

// testOracle lets each scenario fix exactly the report fields it needs to
// drive a particular verifier outcome.
type testOracle struct {
	measurement     [48]byte
	committedTCB    report.TcbVersion
	policy          uint64
	platformInfo    uint64
	familyID        [16]byte
	imageID         [16]byte
	guestSVN        uint32
	idKeyDigest     [48]byte
	authorKeyDigest [48]byte
}

func (o testOracle) GetReport(nonce uint64, publicKey [32]byte) (*report.AttestationReport, error) {
	rd := report.NewReportData(nonce, publicKey).Bytes()
	return report.New(report.AttestationReport{
		ReportData:      rd,
		Measurement:     o.measurement,
		CommittedTCB:    o.committedTCB,
		Policy:          o.policy,
		PlatformInfo:    o.platformInfo,
		FamilyID:        o.familyID,
		ImageID:         o.imageID,
		GuestSVN:        o.guestSVN,
		IDKeyDigest:     o.idKeyDigest,
		AuthorKeyDigest: o.authorKeyDigest,
	}), nil
}

type fixedDigestPrimitive struct{ digest [48]byte }

func (f fixedDigestPrimitive) ComputeLaunchDigest(launchdigest.Args) ([48]byte, error) {
	return f.digest, nil
}

func baseVMDescription() *vmdesc.VMDescription {
	return &vmdesc.VMDescription{
		HostCPUFamily:   vmdesc.Milan,
		VCPUCount:       4,
		OVMFFile:        "/ovmf/OVMF.fd",
		GuestPolicy:     0x30000,
		PlatformInfo:    0x1,
		MinCommittedTCB: vmdesc.TCB{Bootloader: 2, TEE: 0, SNP: 8, Microcode: 115},
		FamilyIDHex:     "00000000000000000000000000000000",
		ImageIDHex:      "00000000000000000000000000000000",
	}
}

// matchingTCB satisfies the floor set in baseVMDescription.
var matchingTCB = report.TcbVersion{Bootloader: 2, TEE: 0, SNP: 8, Microcode: 115}

func newAttesterServer(t *testing.T, oracle firmware.Oracle, diskKeyPath string) (*Attester, *httptest.Server) {
	t.Helper()
	a := NewAttester(oracle, log.NewNopLogger(), diskKeyPath)
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)
	return a, srv
}

func TestProvisionDiskKey_HappyPath(t *testing.T) {
	var digest [48]byte
	digest[0] = 0x42

	oracle := testOracle{measurement: digest, committedTCB: matchingTCB, policy: 0x30000, platformInfo: 0x1}
	keyPath := filepath.Join(t.TempDir(), "disk_key.txt")
	attester, srv := newAttesterServer(t, oracle, keyPath)

	desc := baseVMDescription()
	client := NewClient(srv.URL, fakeVerifier{}, desc, fixedDigestPrimitive{digest: digest}, nil, log.NewNopLogger())

	err := client.ProvisionDiskKey(context.Background(), []byte("s3cret"))
	require.NoError(t, err)

	<-attester.Done()
	got, err := os.ReadFile(keyPath)
	require.NoError(t, err)
	require.Equal(t, "s3cret", string(got))
}

func TestProvisionDiskKey_TamperedMeasurementRejected(t *testing.T) {
	var actual, expected [48]byte
	actual[0] = 0x01
	expected[0] = 0x02

	oracle := testOracle{measurement: actual, committedTCB: matchingTCB, policy: 0x30000, platformInfo: 0x1}
	keyPath := filepath.Join(t.TempDir(), "disk_key.txt")
	_, srv := newAttesterServer(t, oracle, keyPath)

	desc := baseVMDescription()
	client := NewClient(srv.URL, fakeVerifier{}, desc, fixedDigestPrimitive{digest: expected}, nil, log.NewNopLogger())

	err := client.ProvisionDiskKey(context.Background(), []byte("s3cret"))
	require.ErrorIs(t, err, errs.ErrLaunchDigestMismatch)
	require.NoFileExists(t, keyPath)
}

func TestProvisionDiskKey_TcbBelowMinimumRejected(t *testing.T) {
	var digest [48]byte
	low := report.TcbVersion{Bootloader: 1, TEE: 0, SNP: 8, Microcode: 115}

	oracle := testOracle{measurement: digest, committedTCB: low, policy: 0x30000, platformInfo: 0x1}
	keyPath := filepath.Join(t.TempDir(), "disk_key.txt")
	_, srv := newAttesterServer(t, oracle, keyPath)

	desc := baseVMDescription()
	client := NewClient(srv.URL, fakeVerifier{}, desc, fixedDigestPrimitive{digest: digest}, nil, log.NewNopLogger())

	err := client.ProvisionDiskKey(context.Background(), []byte("s3cret"))
	require.ErrorIs(t, err, errs.ErrTcbVersionMismatch)
	require.NoFileExists(t, keyPath)
}

// reboundOracle ignores the nonce it's given and always binds a different
// one, simulating a replayed report from a prior session.
type reboundOracle struct {
	testOracle
	boundNonce uint64
}

func (o reboundOracle) GetReport(_ uint64, publicKey [32]byte) (*report.AttestationReport, error) {
	return o.testOracle.GetReport(o.boundNonce, publicKey)
}

func TestProvisionDiskKey_NonceMismatchRejectedNoKeySent(t *testing.T) {
	var digest [48]byte
	oracle := reboundOracle{
		testOracle: testOracle{measurement: digest, committedTCB: matchingTCB, policy: 0x30000, platformInfo: 0x1},
		boundNonce: 0xDEADBEEF,
	}
	keyPath := filepath.Join(t.TempDir(), "disk_key.txt")
	_, srv := newAttesterServer(t, oracle, keyPath)

	desc := baseVMDescription()
	client := NewClient(srv.URL, fakeVerifier{}, desc, fixedDigestPrimitive{digest: digest}, nil, log.NewNopLogger())

	err := client.ProvisionDiskKey(context.Background(), []byte("s3cret"))
	require.ErrorIs(t, err, errs.ErrReportDataMismatch)
	require.NoFileExists(t, keyPath)
}

func TestProvisionDiskKey_IdBlockMismatchRejected(t *testing.T) {
	var digest [48]byte
	var expectedAuthorDigest, actualAuthorDigest [48]byte
	expectedAuthorDigest[0] = 0x01
	actualAuthorDigest[0] = 0x02 // swapped author-key digest

	oracle := testOracle{
		measurement:     digest,
		committedTCB:    matchingTCB,
		policy:          0x30000,
		platformInfo:    0x1,
		authorKeyDigest: actualAuthorDigest,
	}
	keyPath := filepath.Join(t.TempDir(), "disk_key.txt")
	_, srv := newAttesterServer(t, oracle, keyPath)

	binding := &report.Binding{AuthorKeyDigest: expectedAuthorDigest}
	desc := baseVMDescription()
	client := NewClient(srv.URL, fakeVerifier{}, desc, fixedDigestPrimitive{digest: digest}, binding, log.NewNopLogger())

	err := client.ProvisionDiskKey(context.Background(), []byte("s3cret"))
	require.ErrorIs(t, err, errs.ErrInvalidIdBlock)
	require.NoFileExists(t, keyPath)
}

func TestProvisionDiskKey_ResetRecoversAfterCorruptedAead(t *testing.T) {
	var digest [48]byte
	oracle := testOracle{measurement: digest, committedTCB: matchingTCB, policy: 0x30000, platformInfo: 0x1}
	keyPath := filepath.Join(t.TempDir(), "disk_key.txt")
	attester, srv := newAttesterServer(t, oracle, keyPath)

	desc := baseVMDescription()
	client := NewClient(srv.URL, fakeVerifier{}, desc, fixedDigestPrimitive{digest: digest}, nil, log.NewNopLogger())

	// First exchange: corrupt the sealed key in flight by wrapping under a
	// throwaway shared secret instead of a real ECDH agreement, so the
	// attester's AEAD open fails and it falls back to Ready.
	bogusSecret, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	_, postErr := client.postNonce(context.Background(), 1)
	require.NoError(t, postErr)
	corrupted, err := cryptox.Seal(bogusSecret.Private, 1, []byte("s3cret"))
	require.NoError(t, err)
	err = client.postWrappedKey(context.Background(), WrappedDiskKey{WrappedDiskKey: corrupted, ClientPublicKey: bogusSecret.Public})
	require.Error(t, err)
	require.NoFileExists(t, keyPath)

	select {
	case <-attester.Done():
		t.Fatal("attester should not have completed on a corrupted AEAD tag")
	default:
	}

	// Second exchange, from scratch: the attester has returned to Ready and
	// a fresh nonce succeeds normally.
	err = client.ProvisionDiskKey(context.Background(), []byte("s3cret"))
	require.NoError(t, err)
	<-attester.Done()
	got, err := os.ReadFile(keyPath)
	require.NoError(t, err)
	require.Equal(t, "s3cret", string(got))
}
