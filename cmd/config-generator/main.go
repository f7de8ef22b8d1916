// Command config-generator prints an example VMDescription TOML file,
// annotated with the field documentation an operator needs to fill it in
// correctly. Grounded on
// original_source/attestation_server/src/bin/config_generator/config_generator_main.rs,
// adapted from a fixed Rust struct literal into a cobra command with an
// --out flag.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const exampleConfig = `# Example VMDescription. Fill in every path and identifier before use.
host_cpu_family = "Milan"          # "Milan" or "Genoa"
vcpu_count = 1
ovmf_file = "/path/to/OVMF.fd"
kernel_file = ""                   # leave both kernel_file and initrd_file
initrd_file = ""                   # empty for a direct-boot OVMF image
guest_features = 0x21              # QEMU's usual default, see table below
kernel_cmdline = ""
platform_info = 0x0
guest_policy = 0x30000
family_id = "00000000000000000000000000000000"
image_id = "00000000000000000000000000000000"

[min_commited_tcb]
bootloader = 0
tee = 0
snp = 0
microcode = 0
`

const guestFeaturesDoc = `guest_features bit reference (VMSA-affecting kernel features):
  Bit(s)  Name
  0       SNPActive
  1       vTOM
  2       ReflectVC
  3       RestrictedInjection
  4       AlternateInjection
  5       DebugSwap
  6       PreventHostIBS
  7       BTBIsolation
  8       VmplSSS
  9       SecureTSC
  10      VmgexitParameter
  12      IbsVirtualization
  14      VmsaRegProt
  15      SmtProtection
  all other bits are reserved and must be zero.
The example value 0x21 is QEMU's usual default.`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:          "config-generator",
		Short:        "print an example VMDescription TOML config",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), exampleConfig)
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), guestFeaturesDoc)
				return nil
			}
			return os.WriteFile(outPath, []byte(exampleConfig), 0o644)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write the example config to this path instead of stdout")
	return cmd
}
