//go:build !whisper_cpp

package whisper

import "context"

// Default stub (no cgo) so the project builds without the whisper_cpp tag.
type stubEngine struct{}

func NewEngine(modelPath string) (Engine, error) { return &stubEngine{}, nil }

func (e *stubEngine) Transcribe(ctx context.Context, path string, language string) (Result, error) {
	return Result{Segments: []Segment{}, Language: language}, nil
}

func (e *stubEngine) Close() error { return nil }
