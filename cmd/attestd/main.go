// Command attestd is the in-VM attester: it serves the two-phase
// attestation-and-secret-injection exchange and, on success, writes the
// recovered disk key to disk_key.txt. Grounded on
// original_source/tools/attestation_server/src/bin/server/server_main.rs;
// the get-report subcommand on
// original_source/tools/attestation_server/src/bin/get_report.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/virtengine/snp-attest/internal/firmware"
	"github.com/virtengine/snp-attest/internal/logging"
	"github.com/virtengine/snp-attest/internal/protocol"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		listen           string
		mock             bool
		diskKeyPath      string
		guestRequestTool string
		logLevel         string
	)

	root := &cobra.Command{
		Use:          "attestd",
		Short:        "run the in-VM SEV-SNP attestation and secret-injection server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New("attestd", logLevel)
			oracle := selectOracle(mock, guestRequestTool)

			attester := protocol.NewAttester(oracle, logger, diskKeyPath)
			logger.Info("starting attestation server", "listen", listen, "mock", mock)

			srv := attester.Router()
			errCh := make(chan error, 1)
			go func() {
				errCh <- http.ListenAndServe(listen, srv)
			}()

			select {
			case err := <-errCh:
				return err
			case <-attester.Done():
				logger.Info("disk key provisioned, shutting down")
				return nil
			}
		},
	}

	root.PersistentFlags().StringVar(&listen, "listen", "0.0.0.0:80", "address to listen on")
	root.PersistentFlags().BoolVar(&mock, "mock", false, "use the mock firmware oracle instead of a real SEV-SNP device")
	root.PersistentFlags().StringVar(&diskKeyPath, "disk-key-path", protocol.DefaultDiskKeyPath, "path to write the recovered disk key to")
	root.PersistentFlags().StringVar(&guestRequestTool, "guest-request-tool", "", "external binary used to query real SEV-SNP firmware (default "+firmware.DefaultTool+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newGetReportCmd(&mock, &guestRequestTool))
	return root
}

func selectOracle(mock bool, guestRequestTool string) firmware.Oracle {
	if mock {
		return firmware.MockOracle{}
	}
	return firmware.ExecOracle{Path: guestRequestTool}
}

func newGetReportCmd(mock *bool, guestRequestTool *string) *cobra.Command {
	var (
		nonce uint64
		out   string
	)

	cmd := &cobra.Command{
		Use:          "get-report",
		Short:        "fetch a raw attestation report and write it to a file, without running the protocol",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			oracle := selectOracle(*mock, *guestRequestTool)
			var pub [32]byte
			rep, err := oracle.GetReport(nonce, pub)
			if err != nil {
				return err
			}
			return os.WriteFile(out, rep.Raw(), 0o600)
		},
	}

	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "nonce to embed in the report-data field")
	cmd.Flags().StringVar(&out, "out", "report.bin", "path to write the raw report to")
	return cmd
}
