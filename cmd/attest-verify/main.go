// Command attest-verify runs the VM owner's side of the exchange: it
// attests a running attester over HTTP and, once the report checks out,
// provisions a disk encryption key into it. Grounded on
// original_source/tools/attestation_server/src/bin/client/client_main.rs.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/virtengine/snp-attest/internal/launchdigest"
	"github.com/virtengine/snp-attest/internal/logging"
	"github.com/virtengine/snp-attest/internal/protocol"
	"github.com/virtengine/snp-attest/internal/report"
	"github.com/virtengine/snp-attest/internal/vcek"
	"github.com/virtengine/snp-attest/internal/verify"
	"github.com/virtengine/snp-attest/internal/vmdesc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		serverURL     string
		diskKey       string
		vmDefinition  string
		cmdlineOvr    string
		dumpReport    string
		idBlockPath   string
		authBlockPath string
		measureTool   string
		logLevel      string
	)

	cmd := &cobra.Command{
		Use:          "attest-verify",
		Short:        "verify an attester's report and provision its disk encryption key",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (idBlockPath == "") != (authBlockPath == "") {
				return fmt.Errorf("--id-block-path and --author-block-path must be given together")
			}

			desc, err := vmdesc.Load(vmDefinition)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("override-kernel-cmdline") {
				desc.KernelCmdline = cmdlineOvr
			}

			logger := logging.New("attest-verify", logLevel)

			resolver, err := vcek.NewResolver(logger)
			if err != nil {
				return err
			}
			verifier := verify.NewVerifier(resolver, logger)

			var binding *report.Binding
			if idBlockPath != "" {
				b, err := loadBinding(idBlockPath, authBlockPath)
				if err != nil {
					return err
				}
				binding = &b
			}

			client := protocol.NewClient(serverURL, verifier, desc, launchdigest.ExecPrimitive{Path: measureTool}, binding, logger)
			client.DumpReportPath = dumpReport

			return client.ProvisionDiskKey(context.Background(), []byte(diskKey))
		},
	}

	cmd.Flags().StringVar(&serverURL, "server-url", "http://localhost:8080", "URL of the attester to verify and provision")
	cmd.Flags().StringVar(&diskKey, "disk-key", "", "disk encryption key to inject into the VM")
	cmd.Flags().StringVar(&vmDefinition, "vm-definition", "", "path to the VMDescription TOML config")
	cmd.Flags().StringVar(&cmdlineOvr, "override-kernel-cmdline", "", "override kernel_cmdline from the config")
	cmd.Flags().StringVar(&dumpReport, "dump-report", "", "if set, store the raw attestation report under this path")
	cmd.Flags().StringVar(&idBlockPath, "id-block-path", "", "path to the base64 id block used at launch (requires --author-block-path)")
	cmd.Flags().StringVar(&authBlockPath, "author-block-path", "", "path to the base64 id auth block used at launch (requires --id-block-path)")
	cmd.Flags().StringVar(&measureTool, "measure-tool", "", "external launch-digest reduction binary (default "+launchdigest.DefaultTool+")")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	_ = cmd.MarkFlagRequired("disk-key")
	_ = cmd.MarkFlagRequired("vm-definition")
	return cmd
}

func loadBinding(idBlockPath, authBlockPath string) (report.Binding, error) {
	idRaw, err := readBase64File(idBlockPath)
	if err != nil {
		return report.Binding{}, err
	}
	authRaw, err := readBase64File(authBlockPath)
	if err != nil {
		return report.Binding{}, err
	}

	idBlock, err := report.ParseIDBlock(idRaw)
	if err != nil {
		return report.Binding{}, err
	}
	idAuth, err := report.ParseIDAuthBlock(authRaw)
	if err != nil {
		return report.Binding{}, err
	}
	return report.NewBinding(idBlock, idAuth), nil
}

func readBase64File(path string) ([]byte, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
}
