package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/babble/whisperd/internal/metrics"
	"github.com/babble/whisperd/internal/transcriber"
)

var allowedExtensions = map[string]struct{}{
	".wav":  {},
	".m4a":  {},
	".mp3":  {},
	".flac": {},
	".ogg":  {},
}

type handler struct {
	tr              *transcriber.Transcriber
	defaultLanguage string
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ready",
		"model":        h.tr.ModelName(),
		"model_loaded": h.tr.IsLoaded(),
	})
}

// warmup preloads the model so the first real request does not pay load
// latency. Returns immediately when the model is already resident.
func (h *handler) warmup(w http.ResponseWriter, r *http.Request) {
	if h.tr.IsLoaded() {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "already_loaded",
			"model":  h.tr.ModelName(),
		})
		return
	}

	if err := h.tr.LoadModel(r.Context()); err != nil {
		log.Error().Err(err).Msg("warmup failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "loaded",
		"model":  h.tr.ModelName(),
	})
}

func (h *handler) transcribe(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		metrics.TranscribeRequests.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		metrics.TranscribeRequests.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported file type: %s (allowed: %s)", ext, allowedList()))
		return
	}

	language := r.FormValue("language")
	if language == "" {
		language = h.defaultLanguage
	}

	// Per-request unique name so concurrent uploads never collide. The
	// original extension is kept for format detection downstream.
	tmpPath := filepath.Join(os.TempDir(), "whisperd-"+uuid.NewString()+ext)
	if err := saveUpload(file, tmpPath); err != nil {
		metrics.TranscribeRequests.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("saving upload failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Delete-if-exists on every exit path; removal failures never surface.
	defer os.Remove(tmpPath)

	res, err := h.tr.Transcribe(r.Context(), tmpPath, language)
	if err != nil {
		metrics.TranscribeRequests.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("file", header.Filename).Msg("transcription failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.TranscribeRequests.WithLabelValues("ok").Inc()
	log.Info().
		Str("file", header.Filename).
		Str("language", res.Language).
		Float64("processing_time", res.ProcessingTime).
		Msg("transcription complete")
	writeJSON(w, http.StatusOK, res)
}

func saveUpload(src io.Reader, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	_, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write temp file: %w", err)
	}
	return nil
}

func allowedList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("writing response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
