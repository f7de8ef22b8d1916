package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleReport() AttestationReport {
	return AttestationReport{
		Measurement:     [48]byte{1, 2, 3},
		ReportData:      [64]byte{4, 5, 6},
		ChipID:          [64]byte{7},
		CommittedTCB:    TcbVersion{Bootloader: 2, TEE: 3, SNP: 4, Microcode: 5},
		LaunchedTCB:     TcbVersion{Bootloader: 1, TEE: 1, SNP: 1, Microcode: 1},
		CurrentTCB:      TcbVersion{Bootloader: 2, TEE: 3, SNP: 4, Microcode: 5},
		Policy:          0x30000,
		PlatformInfo:    0x1,
		HostData:        [32]byte{8},
		GuestSVN:        9,
		FamilyID:        [16]byte{10},
		ImageID:         [16]byte{11},
		IDKeyDigest:     [48]byte{12},
		AuthorKeyDigest: [48]byte{13},
	}
}

func TestNew_RoundTripsExportedFields(t *testing.T) {
	want := sampleReport()
	got := New(want)

	require.Equal(t, want.Measurement, got.Measurement)
	require.Equal(t, want.ReportData, got.ReportData)
	require.Equal(t, want.ChipID, got.ChipID)
	require.Equal(t, want.CommittedTCB, got.CommittedTCB)
	require.Equal(t, want.LaunchedTCB, got.LaunchedTCB)
	require.Equal(t, want.CurrentTCB, got.CurrentTCB)
	require.Equal(t, want.Policy, got.Policy)
	require.Equal(t, want.PlatformInfo, got.PlatformInfo)
	require.Equal(t, want.HostData, got.HostData)
	require.Equal(t, want.GuestSVN, got.GuestSVN)
	require.Equal(t, want.FamilyID, got.FamilyID)
	require.Equal(t, want.ImageID, got.ImageID)
	require.Equal(t, want.IDKeyDigest, got.IDKeyDigest)
	require.Equal(t, want.AuthorKeyDigest, got.AuthorKeyDigest)
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	want := sampleReport()
	buf := Marshal(&want)
	require.Len(t, buf, ReportSize)

	got, err := Unmarshal(buf)
	require.NoError(t, err)
	require.Equal(t, want.Measurement, got.Measurement)
	require.Equal(t, want.CommittedTCB, got.CommittedTCB)
}

func TestJSON_RoundTripSurvivesFabricatedReport(t *testing.T) {
	// A report built with New (not decoded from real firmware bytes) must
	// still carry its field values across a JSON encode/decode cycle, the
	// same path an attestation report takes over HTTP.
	want := New(sampleReport())

	encoded, err := json.Marshal(want)
	require.NoError(t, err)

	var got AttestationReport
	require.NoError(t, json.Unmarshal(encoded, &got))

	require.Equal(t, want.Measurement, got.Measurement)
	require.Equal(t, want.CommittedTCB, got.CommittedTCB)
	require.Equal(t, want.Policy, got.Policy)
	require.Equal(t, want.ReportData, got.ReportData)
}

func TestUnmarshal_RejectsShortBuffer(t *testing.T) {
	_, err := Unmarshal(make([]byte, ReportSize-1))
	require.Error(t, err)
}
