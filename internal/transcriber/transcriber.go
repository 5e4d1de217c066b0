// Package transcriber wraps a whisper engine with loaded/unloaded lifecycle
// state shared by all request handlers.
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/babble/whisperd/internal/audio"
	"github.com/babble/whisperd/internal/metrics"
	"github.com/babble/whisperd/internal/whisper"
)

// warmupClip is the length of the synthetic silent input used to force
// model initialization independent of any real request.
const warmupClip = 100 * time.Millisecond

// EngineFactory acquires and opens the engine for the configured model.
// It is invoked at most once per successful load.
type EngineFactory func(ctx context.Context) (whisper.Engine, error)

// Result is the response payload of one transcription.
type Result struct {
	Text     string            `json:"text"`
	Segments []whisper.Segment `json:"segments"`
	Language string            `json:"language"`
	// ProcessingTime is the engine call duration in seconds, rounded to
	// millisecond precision.
	ProcessingTime float64 `json:"processing_time"`
}

// Transcriber owns the model's loaded state and last-use timestamp. Loads
// collapse through singleflight so concurrent first-use requests trigger a
// single engine load; state reads never block on a load in flight.
type Transcriber struct {
	modelName string
	newEngine EngineFactory
	group     singleflight.Group

	mu       sync.RWMutex
	engine   whisper.Engine
	loaded   bool
	lastUsed time.Time
}

func New(modelName string, newEngine EngineFactory) *Transcriber {
	return &Transcriber{modelName: modelName, newEngine: newEngine}
}

// ModelName returns the configured model identifier.
func (t *Transcriber) ModelName() string { return t.modelName }

// IsLoaded reports whether the model is resident. Pure read, no side effect.
func (t *Transcriber) IsLoaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// LoadModel loads the model if it is not already resident. Idempotent.
// Concurrent callers share one load attempt and its outcome; the engine
// call runs outside the state lock so reads stay responsive.
func (t *Transcriber) LoadModel(ctx context.Context) error {
	if t.IsLoaded() {
		return nil
	}

	_, err, _ := t.group.Do("load", func() (any, error) {
		// A load that finished between the fast path and joining the
		// flight leaves nothing to do.
		if t.IsLoaded() {
			return nil, nil
		}

		start := time.Now()
		eng, err := t.newEngine(ctx)
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", t.modelName, err)
		}
		if err := warmUp(ctx, eng); err != nil {
			eng.Close()
			return nil, fmt.Errorf("warm up model %s: %w", t.modelName, err)
		}

		t.mu.Lock()
		t.engine = eng
		t.loaded = true
		t.lastUsed = time.Now()
		t.mu.Unlock()

		metrics.ModelLoaded.Set(1)
		metrics.ModelLoadDuration.Set(time.Since(start).Seconds())
		log.Info().Str("model", t.modelName).Dur("elapsed", time.Since(start)).Msg("model loaded")
		return nil, nil
	})
	return err
}

// EnsureLoaded guarantees the model is resident before use and refreshes
// the last-use timestamp.
func (t *Transcriber) EnsureLoaded(ctx context.Context) error {
	if err := t.LoadModel(ctx); err != nil {
		return err
	}
	t.touch()
	return nil
}

// Transcribe runs the engine over the audio file at path. The last-use
// timestamp reflects the attempt: it is refreshed whether or not the engine
// call succeeds. Engine errors propagate to the caller untouched.
func (t *Transcriber) Transcribe(ctx context.Context, path string, language string) (Result, error) {
	if err := t.EnsureLoaded(ctx); err != nil {
		return Result{}, err
	}

	t.mu.RLock()
	eng := t.engine
	t.mu.RUnlock()
	if eng == nil {
		// Unloaded between EnsureLoaded and here.
		return Result{}, errors.New("model not loaded")
	}

	start := time.Now()
	res, err := eng.Transcribe(ctx, path, language)
	elapsed := time.Since(start)
	t.touch()
	if err != nil {
		return Result{}, err
	}

	metrics.TranscribeDuration.Observe(elapsed.Seconds())

	lang := res.Language
	if lang == "" {
		lang = language
	}
	segments := res.Segments
	if segments == nil {
		segments = []whisper.Segment{}
	}
	return Result{
		Text:           strings.TrimSpace(res.Text),
		Segments:       segments,
		Language:       lang,
		ProcessingTime: math.Round(elapsed.Seconds()*1000) / 1000,
	}, nil
}

// IdleSeconds returns the wall-clock time since last use, or 0 if the model
// has never been used.
func (t *Transcriber) IdleSeconds() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastUsed.IsZero() {
		return 0
	}
	return time.Since(t.lastUsed).Seconds()
}

// Unload resets the loaded flag and last-use timestamp and closes the
// engine handle. Advisory: whisper.cpp keeps backend state warm in-process,
// so actual memory release may need a process restart.
func (t *Transcriber) Unload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.engine != nil {
		if err := t.engine.Close(); err != nil {
			log.Warn().Err(err).Msg("engine close failed")
		}
		t.engine = nil
	}
	t.loaded = false
	t.lastUsed = time.Time{}
	metrics.ModelLoaded.Set(0)
}

func (t *Transcriber) touch() {
	t.mu.Lock()
	t.lastUsed = time.Now()
	t.mu.Unlock()
}

// warmUp pushes a minimal silent clip through the engine so the first real
// request does not pay initialization latency.
func warmUp(ctx context.Context, eng whisper.Engine) error {
	path := filepath.Join(os.TempDir(), "whisperd-warmup-"+uuid.NewString()+".wav")
	if err := audio.WriteSilentWAV(path, warmupClip); err != nil {
		return err
	}
	defer os.Remove(path)

	_, err := eng.Transcribe(ctx, path, "en")
	return err
}
