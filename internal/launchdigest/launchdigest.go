// Package launchdigest computes the expected SEV-SNP launch measurement for
// a VMDescription. The actual page-table/VMSA reduction
// (snp_calc_launch_digest) is treated as an external primitive: this
// package owns only parameter marshaling and the protocol's fixed choices,
// mirroring VMDescription::compute_expected_hash in
// original_source/attestation_server/src/calc_expected_ld.rs.
package launchdigest

import (
	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/vmdesc"
)

// VCPUType is the fixed vCPU model string the measurement primitive expects.
const VCPUType = "EPYC-v4"

// VMMType is the fixed hypervisor identity the measurement primitive expects.
const VMMType = "QEMU"

// Args is the fully marshaled input to the launch-digest primitive.
type Args struct {
	VCPUs         uint32
	VCPUType      string
	OVMFFile      string
	GuestFeatures uint64
	KernelFile    string
	InitrdFile    string
	// Append holds the kernel cmdline, or the zero value when the
	// VMDescription's cmdline was empty — the primitive treats an absent
	// cmdline differently from an empty one.
	Append        string
	AppendPresent bool
	// OVMFHash is left unset so the primitive hashes OVMFFile itself rather
	// than trusting a caller-supplied digest.
	OVMFHash string
	VMMType  string
}

// Primitive computes the 48-byte launch digest for a fully marshaled set of
// launch arguments. Its implementation lives outside this module.
type Primitive interface {
	ComputeLaunchDigest(Args) ([48]byte, error)
}

// Compute marshals desc into Args using the protocol's fixed choices and
// delegates the reduction to prim.
func Compute(prim Primitive, desc *vmdesc.VMDescription) ([48]byte, error) {
	args := Args{
		VCPUs:         desc.VCPUCount,
		VCPUType:      VCPUType,
		OVMFFile:      desc.OVMFFile,
		GuestFeatures: desc.GuestFeatures,
		KernelFile:    desc.KernelFile,
		InitrdFile:    desc.InitrdFile,
		OVMFHash:      "",
		VMMType:       VMMType,
	}
	if desc.KernelCmdline != "" {
		args.Append = desc.KernelCmdline
		args.AppendPresent = true
	}

	digest, err := prim.ComputeLaunchDigest(args)
	if err != nil {
		return [48]byte{}, errs.ErrLaunchDigestFailure.Wrapf("%v", err)
	}
	return digest, nil
}
