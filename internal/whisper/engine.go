package whisper

import "context"

// Segment is one timestamped span of transcribed speech. Start and End are
// seconds from the beginning of the audio.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result holds a single transcription pass.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Engine is a small interface over whisper transcription.
// Implementations may be a no-op (stub) or backed by whisper.cpp (build tag: whisper_cpp).
type Engine interface {
	// Transcribe runs a full blocking pass over the audio file at path.
	// Language may be a code like "en" or "auto" for detection.
	Transcribe(ctx context.Context, path string, language string) (Result, error)
	Close() error
}
