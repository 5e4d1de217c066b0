package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry describes a downloadable ggml model.
type Entry struct {
	Name     string
	FileName string
	URL      string
	SHA256   string
}

// Resolved is a model mapped to a local file path.
type Resolved struct {
	Name          string
	Path          string
	URL           string
	SHA256        string
	NeedsDownload bool
}

var catalog = map[string]Entry{
	"tiny": {
		Name:     "tiny",
		FileName: "ggml-tiny.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
		SHA256:   "be07e048e1e599ad46341c8d2a135645097a538221678b7acdd1b1919c6e1b21",
	},
	"base": {
		Name:     "base",
		FileName: "ggml-base.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
		SHA256:   "60ed5bc3dd14eea856493d334349b405782ddcaf0028d4b5df4088345fba2efe",
	},
	"small": {
		Name:     "small",
		FileName: "ggml-small.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		SHA256:   "1be3a9b2063867b937e64e2ec7483364a79917e157fa98c5d94b5c1fffea987b",
	},
	"medium": {
		Name:     "medium",
		FileName: "ggml-medium.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		SHA256:   "6c14d5adee5f86394037b4e4e8b59f1673b6cee10e3cf0b11bbdbee79c156208",
	},
	"large-v3": {
		Name:     "large-v3",
		FileName: "ggml-large-v3.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		SHA256:   "64d182b440b98d5203c4f9bd541544d84c605196c4f7b845dfa11fb23594d1e2",
	},
}

// Names lists catalog model names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a model reference to a local file. A catalog name resolves
// into dir and may require a download; anything that looks like a path must
// already exist on disk.
func Resolve(ref, dir string) (Resolved, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Resolved{}, errors.New("model name must not be empty")
	}

	if entry, ok := catalog[ref]; ok {
		if strings.TrimSpace(dir) == "" {
			return Resolved{}, errors.New("model directory must not be empty for named model")
		}
		path := filepath.Join(dir, entry.FileName)
		_, err := os.Stat(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Resolved{}, fmt.Errorf("stat model path: %w", err)
		}
		return Resolved{
			Name:          entry.Name,
			Path:          path,
			URL:           entry.URL,
			SHA256:        entry.SHA256,
			NeedsDownload: errors.Is(err, os.ErrNotExist),
		}, nil
	}

	if !looksLikePath(ref) {
		return Resolved{}, fmt.Errorf("unknown model %q (known models: %s)", ref, strings.Join(Names(), ", "))
	}

	path := filepath.Clean(ref)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Resolved{}, fmt.Errorf("model path does not exist: %s", path)
		}
		return Resolved{}, fmt.Errorf("stat model path: %w", err)
	}
	return Resolved{Name: ref, Path: path}, nil
}

func looksLikePath(ref string) bool {
	return strings.ContainsRune(ref, os.PathSeparator) || strings.HasSuffix(strings.ToLower(ref), ".bin")
}
