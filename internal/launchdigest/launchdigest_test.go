package launchdigest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtengine/snp-attest/internal/vmdesc"
)

type fakePrimitive struct {
	lastArgs Args
	digest   [48]byte
	err      error
}

func (f *fakePrimitive) ComputeLaunchDigest(a Args) ([48]byte, error) {
	f.lastArgs = a
	return f.digest, f.err
}

func baseDesc() *vmdesc.VMDescription {
	return &vmdesc.VMDescription{
		HostCPUFamily: vmdesc.Milan,
		VCPUCount:     4,
		OVMFFile:      "/fw/OVMF.fd",
		GuestFeatures: 0x1,
		KernelFile:    "/boot/vmlinuz",
		InitrdFile:    "/boot/initrd",
	}
}

func TestCompute_FixedChoices(t *testing.T) {
	desc := baseDesc()
	prim := &fakePrimitive{digest: [48]byte{1, 2, 3}}

	got, err := Compute(prim, desc)
	require.NoError(t, err)
	require.Equal(t, prim.digest, got)

	require.Equal(t, VCPUType, prim.lastArgs.VCPUType)
	require.Equal(t, VMMType, prim.lastArgs.VMMType)
	require.Equal(t, "", prim.lastArgs.OVMFHash)
	require.False(t, prim.lastArgs.AppendPresent, "empty cmdline must not be present")
}

func TestCompute_CmdlinePresentWhenNonEmpty(t *testing.T) {
	desc := baseDesc()
	desc.KernelCmdline = "console=ttyS0"
	prim := &fakePrimitive{}

	_, err := Compute(prim, desc)
	require.NoError(t, err)
	require.True(t, prim.lastArgs.AppendPresent)
	require.Equal(t, "console=ttyS0", prim.lastArgs.Append)
}

func TestCompute_PropagatesPrimitiveError(t *testing.T) {
	desc := baseDesc()
	prim := &fakePrimitive{err: assertAnError{}}

	_, err := Compute(prim, desc)
	require.Error(t, err)
}

type assertAnError struct{}

func (assertAnError) Error() string { return "boom" }
