package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ConvertToWAV transcodes src into a mono 16 kHz WAV in the temp directory
// and returns the output path. The caller removes the file when done.
// Requires ffmpeg on PATH.
func ConvertToWAV(ctx context.Context, src string) (string, error) {
	out := filepath.Join(os.TempDir(), "whisperd-"+uuid.NewString()+".wav")

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", src,
		"-ac", "1",
		"-ar", strconv.Itoa(WhisperSampleRate),
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return out, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
