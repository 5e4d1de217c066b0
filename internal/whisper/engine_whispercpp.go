//go:build whisper_cpp

package whisper

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	whisperpkg "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog/log"

	"github.com/babble/whisperd/internal/audio"
)

// engineCPP is the whisper.cpp-backed implementation of Engine.
type engineCPP struct {
	model   whisperpkg.Model
	threads uint
	mu      sync.Mutex // whisper.cpp contexts crash under concurrent use
}

func NewEngine(modelPath string) (Engine, error) {
	threads := uint(runtime.NumCPU())
	if v := os.Getenv("WHISPER_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			threads = uint(n)
		}
	}

	m, err := whisperpkg.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	log.Info().Str("model", modelPath).Uint("threads", threads).Msg("whisper: model loaded")
	return &engineCPP{model: m, threads: threads}, nil
}

func (e *engineCPP) Close() error {
	if e.model != nil {
		e.model.Close()
	}
	return nil
}

// Transcribe implements Engine by running a full pass over the file.
// Processing is serialized: concurrent Process calls on one model crash.
func (e *engineCPP) Transcribe(ctx context.Context, path string, language string) (Result, error) {
	samples, err := loadSamples(ctx, path)
	if err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	wctx, err := e.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("create context: %w", err)
	}
	wctx.SetThreads(e.threads)
	if language == "" {
		language = "auto"
	}
	// SetLanguage fails on single-language models; detection still works.
	_ = wctx.SetLanguage(language)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("process audio: %w", err)
	}

	var (
		segments []Segment
		parts    []string
	)
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if err != io.EOF {
				log.Warn().Err(err).Msg("whisper: error reading segment")
			}
			break
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			ID:    seg.Num,
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Text:  text,
		})
		parts = append(parts, text)
	}
	if segments == nil {
		segments = []Segment{}
	}

	lang := wctx.Language()
	if lang == "" || lang == "auto" {
		lang = wctx.DetectedLanguage()
	}
	if lang == "" {
		lang = language
	}

	return Result{
		Text:     strings.Join(parts, " "),
		Segments: segments,
		Language: lang,
	}, nil
}

// loadSamples reads an audio file into 16 kHz mono float32 PCM. Non-WAV
// inputs go through ffmpeg first.
func loadSamples(ctx context.Context, path string) ([]float32, error) {
	wavPath := path
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		converted, err := audio.ConvertToWAV(ctx, path)
		if err != nil {
			return nil, err
		}
		defer os.Remove(converted)
		wavPath = converted
	}

	b, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	samples, rate, err := audio.DecodeWAV(b)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	if rate != audio.WhisperSampleRate {
		samples = audio.Resample(samples, rate, audio.WhisperSampleRate)
	}
	return samples, nil
}
