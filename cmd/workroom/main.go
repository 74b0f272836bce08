package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lumenhq/workroom/internal/config"
	"github.com/lumenhq/workroom/internal/directory"
	"github.com/lumenhq/workroom/internal/messaging"
	"github.com/lumenhq/workroom/internal/metrics"
	"github.com/lumenhq/workroom/internal/narration"
	"github.com/lumenhq/workroom/internal/notify"
	"github.com/lumenhq/workroom/internal/resources"
	"github.com/lumenhq/workroom/internal/store"
	"github.com/lumenhq/workroom/internal/workspace"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if os.Getenv("WORKROOM_ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("data_path", cfg.DataPath).
		Bool("narration_enabled", cfg.NarrationEnabled()).
		Msg("starting workroom")

	ds, err := store.New(cfg.DataPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open snapshot store")
	}
	defer ds.Close()

	m := metrics.New()

	// Wire the stores explicitly; no ambient singletons.
	users := directory.NewStore(ds, logger)
	ws := workspace.NewStore(ds, logger, m)
	dms := messaging.NewStore(ds, logger, m)
	announcements := notify.NewLog(ds, logger, m)
	library := resources.NewLibrary(ds, logger, m)

	if cfg.NarrationEnabled() {
		if _, err := narration.NewNarrator(narration.Config{
			APIKey:     cfg.AnthropicAPIKey,
			Model:      cfg.NarrationModel,
			MaxTokens:  int64(cfg.NarrationMaxTokens),
			MaxStreams: int64(cfg.NarrationStreams),
		}, logger, m); err != nil {
			logger.Warn().Err(err).Msg("failed to init narrator (non-fatal)")
		} else {
			logger.Info().Str("model", cfg.NarrationModel).Msg("narrator initialized")
		}
	} else {
		logger.Info().Msg("narration not configured — skipping")
	}

	logger.Info().
		Int("users", len(users.Users())).
		Int("projects", len(ws.Projects())).
		Int("threads", len(dms.Threads())).
		Int("resources", len(library.Resources())).
		Int("unread_notifications", announcements.UnreadCount()).
		Msg("workspace loaded")

	// Optional metrics listener.
	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listener started")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	if srv != nil {
		_ = srv.Close()
	}
}
