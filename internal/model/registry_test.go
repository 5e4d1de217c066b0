package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveNamedModelNeedsDownload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Resolve("base", dir)
	require.NoError(t, err)
	require.Equal(t, "base", res.Name)
	require.Equal(t, filepath.Join(dir, "ggml-base.bin"), res.Path)
	require.True(t, res.NeedsDownload)
	require.NotEmpty(t, res.URL)
	require.NotEmpty(t, res.SHA256)
}

func TestResolveNamedModelAlreadyPresent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ggml-tiny.bin"), []byte("ok"), 0o644))

	res, err := Resolve("tiny", dir)
	require.NoError(t, err)
	require.False(t, res.NeedsDownload)
}

func TestResolveExplicitPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	res, err := Resolve(path, "")
	require.NoError(t, err)
	require.Equal(t, path, res.Path)
	require.False(t, res.NeedsDownload)
}

func TestResolveUnknownModel(t *testing.T) {
	t.Parallel()

	_, err := Resolve("enormous-v9", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "known models")
}

func TestResolveMissingExplicitPath(t *testing.T) {
	t.Parallel()

	_, err := Resolve(filepath.Join(t.TempDir(), "missing.bin"), "")
	require.Error(t, err)
}

func TestCatalogEntriesArePinned(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		res, err := Resolve(name, t.TempDir())
		require.NoError(t, err)
		require.NotEmpty(t, res.URL, "model %s has no URL", name)
		require.Len(t, res.SHA256, 64, "model %s checksum not pinned", name)
	}
}

func TestFetchVerifiesChecksum(t *testing.T) {
	t.Parallel()

	payload := []byte("pretend this is a ggml model")
	sum := sha256.Sum256(payload)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	res := Resolved{
		Name:   "test",
		Path:   filepath.Join(dir, "ggml-test.bin"),
		URL:    srv.URL,
		SHA256: hex.EncodeToString(sum[:]),
	}
	require.NoError(t, Fetch(context.Background(), srv.Client(), res))

	got, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestFetchRejectsCorruptDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("corrupted body"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	res := Resolved{
		Name:   "test",
		Path:   filepath.Join(dir, "ggml-test.bin"),
		URL:    srv.URL,
		SHA256: "0000000000000000000000000000000000000000000000000000000000000000",
	}
	err := Fetch(context.Background(), srv.Client(), res)
	require.Error(t, err)
	require.Contains(t, err.Error(), "checksum mismatch")

	_, statErr := os.Stat(res.Path)
	require.True(t, os.IsNotExist(statErr), "partial download must not land at the final path")
}
