package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/9endu/Dealicious/config"
	httpDelivery "github.com/9endu/Dealicious/internal/delivery/http"
	"github.com/9endu/Dealicious/internal/engine"
	"github.com/9endu/Dealicious/internal/telemetry"
	"github.com/9endu/Dealicious/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	initLogger(cfg.Logging)

	log.Info().
		Str("version", version.Version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("Starting Dealicious verification service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceName:    version.Service,
		ServiceVersion: version.Version,
		Environment:    cfg.Server.Environment,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	// Initialize the engine; classifier warm-up runs in the background
	eng := engine.New(cfg)
	eng.Start(ctx)

	log.Info().
		Dur("cache_ttl", cfg.Cache.TTL).
		Int("cache_max_entries", cfg.Cache.MaxEntries).
		Str("corpus", cfg.Classifier.CorpusPath).
		Msg("Verification engine configured")

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(eng.Service, cfg.Limits.MaxScreenshotBytes)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Tracer shutdown failed")
	}

	log.Info().Msg("Server exited")
}

// initLogger installs the global zerolog logger
func initLogger(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Str("service", version.Service).Logger()
}
