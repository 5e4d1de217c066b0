package audio

import (
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteSilentWAV writes a mono 16-bit PCM WAV of silence at the whisper
// sample rate. Used to force model initialization with a minimal input.
func WriteSilentWAV(path string, duration time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	samples := int(float64(WhisperSampleRate) * duration.Seconds())
	if samples < 1 {
		samples = 1
	}

	enc := wav.NewEncoder(f, WhisperSampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: WhisperSampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, samples),
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize wav: %w", err)
	}
	return f.Close()
}
