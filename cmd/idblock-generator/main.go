// Command idblock-generator builds the ID_BLOCK and ID_AUTH_INFO structures
// QEMU consumes at VM launch time, so an owner's VMDescription, ID key and
// author key can be turned into the base64-encoded blobs --id-block and
// --id-auth expect. Grounded on
// original_source/tools/attestation_server/src/bin/idblock_generator/idblock_generator_main.rs.
package main

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/virtengine/snp-attest/internal/launchdigest"
	"github.com/virtengine/snp-attest/internal/report"
	"github.com/virtengine/snp-attest/internal/vmdesc"
)

// idKeyAlgoECDSAP384 is the ID_AUTH_INFO algorithm identifier for ECDSA
// P-384, per the AMD SEV-SNP Firmware ABI Specification's signature
// algorithm table.
const idKeyAlgoECDSAP384 = 1

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		vmDefinition string
		idKeyPath    string
		authKeyPath  string
		cmdlineOvr   string
		outDir       string
		measureTool  string
	)

	cmd := &cobra.Command{
		Use:          "idblock-generator",
		Short:        "generate an ID block and ID auth block for a VM launch",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := vmdesc.Load(vmDefinition)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("override-kernel-cmdline") {
				desc.KernelCmdline = cmdlineOvr
			}

			idKey, err := loadECDSAKey(idKeyPath)
			if err != nil {
				return fmt.Errorf("loading id key: %w", err)
			}
			authKey, err := loadECDSAKey(authKeyPath)
			if err != nil {
				return fmt.Errorf("loading author key: %w", err)
			}

			idBlockBytes, idAuthBytes, idKeyDigest, authorKeyDigest, err := buildIDBlocks(desc, idKey, authKey, measureTool)
			if err != nil {
				return err
			}

			idBlockB64 := base64.StdEncoding.EncodeToString(idBlockBytes)
			idAuthB64 := base64.StdEncoding.EncodeToString(idAuthBytes)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id block: %s\n", idBlockB64)
			fmt.Fprintf(out, "id key digest: %s\n", base64.StdEncoding.EncodeToString(idKeyDigest[:]))
			fmt.Fprintf(out, "auth key digest: %s\n", base64.StdEncoding.EncodeToString(authorKeyDigest[:]))
			fmt.Fprintf(out, "writing id auth data base64 encoded to %s\n", outDir)

			if err := os.WriteFile(filepath.Join(outDir, "id-block.base64"), []byte(idBlockB64), 0o644); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(outDir, "auth-block.base64"), []byte(idAuthB64), 0o644)
		},
	}

	cmd.Flags().StringVar(&vmDefinition, "vm-definition", "", "path to the VMDescription TOML config")
	cmd.Flags().StringVar(&idKeyPath, "id-key-path", "", "PEM-encoded ECDSA P-384 ID_KEY private key")
	cmd.Flags().StringVar(&authKeyPath, "auth-key-path", "", "PEM-encoded ECDSA P-384 AUTHOR_KEY private key")
	cmd.Flags().StringVar(&cmdlineOvr, "override-kernel-cmdline", "", "override kernel_cmdline from the config")
	cmd.Flags().StringVar(&outDir, "out-dir", "./", "directory to write id-block.base64 and auth-block.base64 to")
	cmd.Flags().StringVar(&measureTool, "measure-tool", "", "external launch-digest reduction binary (default "+launchdigest.DefaultTool+")")
	_ = cmd.MarkFlagRequired("vm-definition")
	_ = cmd.MarkFlagRequired("id-key-path")
	_ = cmd.MarkFlagRequired("auth-key-path")
	return cmd
}

func buildIDBlocks(desc *vmdesc.VMDescription, idKey, authKey *ecdsa.PrivateKey, measureTool string) (idBlockBytes, idAuthBytes []byte, idKeyDigest, authorKeyDigest [48]byte, err error) {
	digest, err := launchdigest.Compute(launchdigest.ExecPrimitive{Path: measureTool}, desc)
	if err != nil {
		return nil, nil, idKeyDigest, authorKeyDigest, err
	}

	familyID, err := desc.FamilyID()
	if err != nil {
		return nil, nil, idKeyDigest, authorKeyDigest, err
	}
	imageID, err := desc.ImageID()
	if err != nil {
		return nil, nil, idKeyDigest, authorKeyDigest, err
	}

	idBlock := report.IDBlock{
		LaunchDigest: digest,
		FamilyID:     familyID,
		ImageID:      imageID,
		Version:      1,
		GuestSVN:     0,
		Policy:       desc.GuestPolicy,
	}
	idBlockBytes = report.MarshalIDBlock(idBlock)

	idBlockSig, err := sign(idKey, idBlockBytes)
	if err != nil {
		return nil, nil, idKeyDigest, authorKeyDigest, err
	}

	idPubkey := report.NewECDSAPubKeyMaterial(&idKey.PublicKey)
	authorPubkey := report.NewECDSAPubKeyMaterial(&authKey.PublicKey)

	idKeySig, err := sign(authKey, idPubkey.Raw())
	if err != nil {
		return nil, nil, idKeyDigest, authorKeyDigest, err
	}

	idAuthBytes = report.MarshalIDAuthBlock(idKeyAlgoECDSAP384, idKeyAlgoECDSAP384, idBlockSig, idPubkey, idKeySig, authorPubkey)

	idKeyDigest = sha512.Sum384(idPubkey.Raw())
	authorKeyDigest = sha512.Sum384(authorPubkey.Raw())
	return idBlockBytes, idAuthBytes, idKeyDigest, authorKeyDigest, nil
}

func sign(key *ecdsa.PrivateKey, data []byte) ([512]byte, error) {
	digest := sha512.Sum384(data)
	r, s, err := ecdsa.Sign(rand.Reader, key, digest[:])
	if err != nil {
		var zero [512]byte
		return zero, err
	}
	return report.EncodeECDSASignature(r, s), nil
}

func loadECDSAKey(path string) (*ecdsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM block found", path)
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%s: not a recognized EC private key: %w", path, err)
	}
	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: PKCS8 key is not ECDSA", path)
	}
	return ecKey, nil
}
