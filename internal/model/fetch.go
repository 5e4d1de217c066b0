package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Fetch downloads a resolved model into place, verifying its SHA-256 when
// the catalog pins one. The file lands atomically: a partial download never
// shadows the final path. A nil client uses a default with a generous
// timeout, model files run into gigabytes.
func Fetch(ctx context.Context, client *http.Client, res Resolved) error {
	if res.URL == "" {
		return errors.New("model has no download URL")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}

	if err := os.MkdirAll(filepath.Dir(res.Path), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.URL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	log.Info().Str("model", res.Name).Str("url", res.URL).Msg("downloading model")
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(res.Path), filepath.Base(res.Path)+".partial-*")
	if err != nil {
		return fmt.Errorf("create partial file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write model file: %w", err)
	}

	if res.SHA256 != "" {
		sum := hex.EncodeToString(hasher.Sum(nil))
		if sum != res.SHA256 {
			return fmt.Errorf("checksum mismatch for %s: got %s, want %s", filepath.Base(res.Path), sum, res.SHA256)
		}
	}

	if err := os.Rename(tmp.Name(), res.Path); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}

	log.Info().
		Str("model", res.Name).
		Int64("bytes", written).
		Dur("elapsed", time.Since(start)).
		Msg("model downloaded")
	return nil
}
