// Package vcek resolves the Versioned Chip Endorsement Key certificate for a
// given chip and TCB version, caching it on disk to stay clear of AMD's key
// distribution service rate limits. The disk-then-network fallback and
// filename scheme mirror CachingVCEKDownloader in
// original_source/attestation_server/src/snp_validate_report.rs; the
// fetch-then-rename write path follows the same temp-file-then-rename
// pattern pkg/pruning/snapshot_manager.go uses, so a concurrent reader
// never observes a torn file.
package vcek

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"cosmossdk.io/log"

	"github.com/virtengine/snp-attest/internal/errs"
	"github.com/virtengine/snp-attest/internal/report"
)

// ProductName identifies the AMD EPYC generation a VCEK was issued for.
type ProductName string

const (
	Milan ProductName = "Milan"
	Genoa ProductName = "Genoa"
)

const defaultKDSBaseURL = "https://kdsintf.amd.com/vcek/v1"

// Resolver fetches and caches VCEK certificates.
type Resolver struct {
	cacheDir string
	client   *http.Client
	baseURL  string
	log      log.Logger
}

// NewResolver builds a Resolver caching under the OS temp directory, at
// os.TempDir()/snp-vcek-cache.
func NewResolver(logger log.Logger) (*Resolver, error) {
	dir := filepath.Join(os.TempDir(), "snp-vcek-cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.ErrCertificateUnavailable.Wrapf("create cache dir %s: %v", dir, err)
	}
	return &Resolver{cacheDir: dir, client: http.DefaultClient, baseURL: defaultKDSBaseURL, log: logger.With("module", "vcek")}, nil
}

// filenameFor builds the on-disk cache key: product-hexchipid-bl-N-tee-N-snp-N-ucode-N.crt.
func filenameFor(product ProductName, chipID [64]byte, tcb report.TcbVersion) string {
	return fmt.Sprintf("%s-%s-bl-%d-tee-%d-snp-%d-ucode-%d.crt",
		product, hex.EncodeToString(chipID[:]), tcb.Bootloader, tcb.TEE, tcb.SNP, tcb.Microcode)
}

// Resolve returns the DER-encoded VCEK certificate for the given chip and
// committed TCB, reading from the on-disk cache first and falling back to
// the AMD key distribution service on a cache miss.
func (r *Resolver) Resolve(ctx context.Context, product ProductName, chipID [64]byte, tcb report.TcbVersion) ([]byte, error) {
	path := filepath.Join(r.cacheDir, filenameFor(product, chipID, tcb))

	if cached, err := os.ReadFile(path); err == nil {
		r.log.Debug("vcek cache hit", "path", path)
		return cached, nil
	} else if !os.IsNotExist(err) {
		return nil, errs.ErrCertificateUnavailable.Wrapf("read cache file %s: %v", path, err)
	}

	r.log.Info("vcek cache miss, fetching from AMD KDS", "product", product, "chip_id", hex.EncodeToString(chipID[:8]))
	der, err := r.fetch(ctx, product, chipID, tcb)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(path, der); err != nil {
		r.log.Warn("failed to cache vcek certificate", "path", path, "error", err)
	}
	return der, nil
}

func (r *Resolver) fetch(ctx context.Context, product ProductName, chipID [64]byte, tcb report.TcbVersion) ([]byte, error) {
	hwID := hex.EncodeToString(chipID[:])
	u, err := url.Parse(fmt.Sprintf("%s/%s/%s", r.baseURL, product, hwID))
	if err != nil {
		return nil, errs.ErrCertificateUnavailable.Wrapf("assemble request url: %v", err)
	}

	q := u.Query()
	q.Set("blSPL", fmt.Sprintf("%d", tcb.Bootloader))
	q.Set("teeSPL", fmt.Sprintf("%d", tcb.TEE))
	q.Set("snpSPL", fmt.Sprintf("%d", tcb.SNP))
	q.Set("ucodeSPL", fmt.Sprintf("%d", tcb.Microcode))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errs.ErrCertificateUnavailable.Wrapf("build request: %v", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errs.ErrCertificateUnavailable.Wrapf("request to %s failed: %v", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.ErrCertificateUnavailable.Wrapf("request to %s returned status %d", u.String(), resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.ErrCertificateUnavailable.Wrapf("read response body: %v", err)
	}
	return body, nil
}

// writeAtomic writes data to a temp file in the same directory as path and
// renames it into place, so a concurrent reader never observes a partial write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".vcek-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
