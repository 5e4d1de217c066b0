// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TranscribeRequests counts /transcribe requests by outcome
	// (ok, rejected, error).
	TranscribeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisperd_transcribe_requests_total",
		Help: "Transcription requests by outcome.",
	}, []string{"status"})

	// TranscribeDuration observes wall-clock engine transcription time.
	TranscribeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "whisperd_transcribe_duration_seconds",
		Help:    "Duration of engine transcription calls.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	// ModelLoaded reports whether the model is resident (1) or not (0).
	ModelLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whisperd_model_loaded",
		Help: "Whether the whisper model is currently loaded.",
	})

	// ModelLoadDuration reports the duration of the most recent load.
	ModelLoadDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whisperd_model_load_seconds",
		Help: "Duration of the most recent model load.",
	})
)
