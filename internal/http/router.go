package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/babble/whisperd/internal/transcriber"
)

// NewRouter wires the service endpoints around a shared transcriber.
// defaultLanguage applies when a transcription request carries none.
func NewRouter(tr *transcriber.Transcriber, defaultLanguage string) http.Handler {
	h := &handler{tr: tr, defaultLanguage: defaultLanguage}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /warmup", h.warmup)
	mux.HandleFunc("POST /transcribe", h.transcribe)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
