package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteSilentWAVRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "silence.wav")
	require.NoError(t, WriteSilentWAV(path, 100*time.Millisecond))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	samples, rate, err := DecodeWAV(b)
	require.NoError(t, err)
	require.Equal(t, WhisperSampleRate, rate)
	require.Len(t, samples, WhisperSampleRate/10)
	for _, s := range samples {
		require.Zero(t, s)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeWAV([]byte("definitely not a wav file"))
	require.Error(t, err)
}

func TestResample(t *testing.T) {
	t.Parallel()

	in := []float32{0, 1, 0, -1, 0, 1, 0, -1}

	out := Resample(in, 8000, 16000)
	require.Len(t, out, 16)

	down := Resample(in, 16000, 8000)
	require.Len(t, down, 4)

	same := Resample(in, 16000, 16000)
	require.Equal(t, in, same)
}
