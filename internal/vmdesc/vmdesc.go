// Package vmdesc models the owner-facing VM description used to both
// compute the expected launch measurement and populate the field-check
// policy passed to the report verifier. Loading goes through viper so TOML
// files, and SNP_ATTEST_-prefixed environment overrides, both work — the
// teacher's network-security config (app/netsecurity_config.go) follows the
// same "typed struct + Validate()" shape, adapted here for file-backed
// config instead of in-process construction.
package vmdesc

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/report"
)

// CPUFamily identifies the AMD EPYC generation the VM is expected to run on.
type CPUFamily string

const (
	Milan CPUFamily = "Milan"
	Genoa CPUFamily = "Genoa"
)

// TCB is the minimum committed TCB version an owner will accept.
type TCB struct {
	Bootloader uint8 `mapstructure:"bootloader"`
	TEE        uint8 `mapstructure:"tee"`
	SNP        uint8 `mapstructure:"snp"`
	Microcode  uint8 `mapstructure:"microcode"`
}

func (t TCB) toReport() report.TcbVersion {
	return report.TcbVersion{Bootloader: t.Bootloader, TEE: t.TEE, SNP: t.SNP, Microcode: t.Microcode}
}

// VMDescription is the TOML-loadable description of an expected VM launch.
type VMDescription struct {
	HostCPUFamily   CPUFamily `mapstructure:"host_cpu_family"`
	VCPUCount       uint32    `mapstructure:"vcpu_count"`
	OVMFFile        string    `mapstructure:"ovmf_file"`
	KernelFile      string    `mapstructure:"kernel_file"`
	InitrdFile      string    `mapstructure:"initrd_file"`
	GuestFeatures   uint64    `mapstructure:"guest_features"`
	KernelCmdline   string    `mapstructure:"kernel_cmdline"`
	PlatformInfo    uint64    `mapstructure:"platform_info"`
	MinCommittedTCB TCB       `mapstructure:"min_commited_tcb"`
	GuestPolicy     uint64    `mapstructure:"guest_policy"`
	FamilyIDHex     string    `mapstructure:"family_id"`
	ImageIDHex      string    `mapstructure:"image_id"`
}

// Load reads and decodes a VM description from the given TOML file path.
// Environment variables prefixed SNP_ATTEST_ override any key (e.g.
// SNP_ATTEST_VCPU_COUNT).
func Load(path string) (*VMDescription, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("SNP_ATTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errs.ErrConfigParse.Wrapf("reading %s: %v", path, err)
	}

	var desc VMDescription
	if err := v.Unmarshal(&desc); err != nil {
		return nil, errs.ErrConfigParse.Wrapf("decoding %s: %v", path, err)
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

// FamilyID returns the decoded 16-byte family identifier.
func (d *VMDescription) FamilyID() ([16]byte, error) {
	return decodeID16(d.FamilyIDHex)
}

// ImageID returns the decoded 16-byte image identifier.
func (d *VMDescription) ImageID() ([16]byte, error) {
	return decodeID16(d.ImageIDHex)
}

// MinCommittedTCBVersion converts the configured minimum into the report's
// TcbVersion representation.
func (d *VMDescription) MinCommittedTCBVersion() report.TcbVersion {
	return d.MinCommittedTCB.toReport()
}

func decodeID16(h string) ([16]byte, error) {
	var out [16]byte
	b, err := hex.DecodeString(h)
	if err != nil {
		return out, errs.ErrConfigParse.Wrapf("invalid hex id %q: %v", h, err)
	}
	if len(b) != 16 {
		return out, errs.ErrConfigParse.Wrapf("id %q must decode to exactly 16 bytes, got %d", h, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// Validate enforces the structural invariants a VMDescription must satisfy
// before it can drive a launch-digest computation: TCB components fit in a
// byte (enforced by the Go type system via uint8), IDs are exactly 16
// bytes, cmdline is valid UTF-8, and kernel/initrd are either both present
// or both absent.
func (d *VMDescription) Validate() error {
	if d.HostCPUFamily != Milan && d.HostCPUFamily != Genoa {
		return errs.ErrConfigParse.Wrapf("host_cpu_family must be Milan or Genoa, got %q", d.HostCPUFamily)
	}
	if _, err := d.FamilyID(); err != nil {
		return err
	}
	if _, err := d.ImageID(); err != nil {
		return err
	}
	if !utf8.ValidString(d.KernelCmdline) {
		return errs.ErrConfigParse.Wrap("kernel_cmdline is not valid UTF-8")
	}
	kernelSet := d.KernelFile != ""
	initrdSet := d.InitrdFile != ""
	if kernelSet != initrdSet {
		return errs.ErrConfigParse.Wrap("kernel_file and initrd_file must be either both set or both empty")
	}
	if d.OVMFFile == "" {
		return errs.ErrConfigParse.Wrap("ovmf_file is required")
	}
	if d.VCPUCount == 0 {
		return errs.ErrConfigParse.Wrap("vcpu_count must be greater than zero")
	}
	return nil
}

// String implements fmt.Stringer for log lines.
func (d *VMDescription) String() string {
	return fmt.Sprintf("VMDescription{cpu=%s vcpus=%d ovmf=%s}", d.HostCPUFamily, d.VCPUCount, d.OVMFFile)
}
