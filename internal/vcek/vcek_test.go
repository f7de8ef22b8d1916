package vcek

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/virtengine/snp-attest/internal/report"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	dir := t.TempDir()
	return &Resolver{cacheDir: dir, client: http.DefaultClient, baseURL: defaultKDSBaseURL, log: log.NewNopLogger()}
}

func TestFilenameFor_EncodesProductAndTCB(t *testing.T) {
	var chipID [64]byte
	chipID[0] = 0xAB
	tcb := report.TcbVersion{Bootloader: 1, TEE: 2, SNP: 3, Microcode: 4}

	got := filenameFor(Milan, chipID, tcb)
	require.Contains(t, got, "Milan-")
	require.Contains(t, got, "bl-1-tee-2-snp-3-ucode-4.crt")
}

func TestResolve_CacheHitAvoidsNetwork(t *testing.T) {
	r := newTestResolver(t)
	var chipID [64]byte
	tcb := report.TcbVersion{Bootloader: 1, TEE: 1, SNP: 1, Microcode: 1}

	path := filepath.Join(r.cacheDir, filenameFor(Milan, chipID, tcb))
	require.NoError(t, os.WriteFile(path, []byte("cached-cert"), 0o644))

	got, err := r.Resolve(context.Background(), Milan, chipID, tcb)
	require.NoError(t, err)
	require.Equal(t, []byte("cached-cert"), got)
}

func TestResolve_FetchesAndCachesOnMiss(t *testing.T) {
	var chipID [64]byte
	tcb := report.TcbVersion{Bootloader: 1, TEE: 1, SNP: 1, Microcode: 1}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "1", req.URL.Query().Get("blSPL"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("fresh-cert"))
	}))
	defer srv.Close()

	r := newTestResolver(t)
	r.client = srv.Client()
	r.baseURL = srv.URL

	got, err := r.Resolve(context.Background(), Milan, chipID, tcb)
	require.NoError(t, err)
	require.Equal(t, []byte("fresh-cert"), got)

	cachedPath := filepath.Join(r.cacheDir, filenameFor(Milan, chipID, tcb))
	cached, err := os.ReadFile(cachedPath)
	require.NoError(t, err)
	require.Equal(t, []byte("fresh-cert"), cached)
}
