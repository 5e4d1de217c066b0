package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/babble/whisperd/internal/config"
	serverhttp "github.com/babble/whisperd/internal/http"
	"github.com/babble/whisperd/internal/model"
	"github.com/babble/whisperd/internal/transcriber"
	"github.com/babble/whisperd/internal/whisper"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	lvl := zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if l, err := zerolog.ParseLevel(v); err == nil {
			lvl = l
		}
	}
	log.Logger = log.Level(lvl)

	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	tr := transcriber.New(cfg.Model.Name, func(ctx context.Context) (whisper.Engine, error) {
		resolved, err := model.Resolve(cfg.Model.Name, cfg.Model.Dir)
		if err != nil {
			return nil, err
		}
		if resolved.NeedsDownload {
			if err := model.Fetch(ctx, nil, resolved); err != nil {
				return nil, err
			}
		}
		return whisper.NewEngine(resolved.Path)
	})

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     serverhttp.NewRouter(tr, cfg.Model.Language),
		ReadTimeout: 30 * time.Second,
		// Transcription of long clips is slow; leave room before cutting
		// responses off.
		WriteTimeout: 10 * time.Minute,
	}

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("shutdown incomplete")
		}
		close(done)
	}()

	log.Info().
		Str("addr", cfg.Addr()).
		Str("model", cfg.Model.Name).
		Str("language", cfg.Model.Language).
		Msg("whisperd starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
	<-done
	tr.Unload()
}
