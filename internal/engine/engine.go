// Package engine assembles the verification service and the infrastructure it runs on
// from configuration. The server and the CLI both build their engine here.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/9endu/Dealicious/config"
	"github.com/9endu/Dealicious/internal/domain"
	"github.com/9endu/Dealicious/internal/infrastructure/cache"
	"github.com/9endu/Dealicious/internal/infrastructure/corpus"
	"github.com/9endu/Dealicious/internal/infrastructure/ocr"
	"github.com/9endu/Dealicious/internal/usecase"
)

// Engine is a configured verification service plus the price history it owns
type Engine struct {
	Service *usecase.VerificationService
	History *cache.PriceHistoryCache

	sweepInterval time.Duration
}

// New builds an engine. An OCR provider that cannot be constructed is logged and
// replaced by ocr.Disabled so text and URL evidence still work.
func New(cfg *config.Config) *Engine {
	history := cache.NewPriceHistoryCache(cache.Config{
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	})

	debug := debugLogging(cfg.Logging)
	svc := usecase.NewVerificationService(history, NewRecognizer(cfg.OCR, debug), usecase.ServiceConfig{
		Trust:      usecase.TrustTableFromConfig(cfg.Trust),
		LoadCorpus: CorpusLoader(cfg.Classifier.CorpusPath),
		Similarity: similarityConfig(cfg.Classifier, debug),
	})

	return &Engine{Service: svc, History: history, sweepInterval: cfg.Cache.SweepInterval}
}

// Start launches the cache sweeper and classifier warm-up; both stop with ctx
func (e *Engine) Start(ctx context.Context) {
	go e.History.StartSweeper(ctx, e.sweepInterval)
	e.Service.Start(ctx)
}

// NewRecognizer builds the pooled OCR recognizer described by cfg. debug turns on
// raw response logging for the http provider.
func NewRecognizer(cfg config.OCRConfig, debug bool) domain.TextRecognizer {
	rec := baseRecognizer(cfg, debug)
	log.Info().
		Str("provider", cfg.Provider).
		Int("max_concurrent", cfg.MaxConcurrent).
		Bool("debug", debug).
		Msg("OCR configured")
	return ocr.WithLanguage(ocr.NewPool(rec, cfg.MaxConcurrent), cfg.Language)
}

func baseRecognizer(cfg config.OCRConfig, debug bool) domain.TextRecognizer {
	rec, err := ocr.NewRecognizer(cfg)
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.Provider).Msg("OCR unavailable, screenshots will not be read")
		return ocr.Disabled{}
	}
	if h, ok := rec.(*ocr.HTTPRecognizer); ok {
		h.SetDebug(debug)
	}
	return rec
}

func similarityConfig(cfg config.ClassifierConfig, debug bool) usecase.SimilarityConfig {
	return usecase.SimilarityConfig{MinSimilarity: cfg.MinSimilarity, EnableDebug: debug}
}

// debugLogging reports whether the configured log level is debug or more verbose
func debugLogging(cfg config.LoggingConfig) bool {
	level, err := zerolog.ParseLevel(cfg.Level)
	return err == nil && level <= zerolog.DebugLevel
}

// CorpusLoader returns a loader for the classifier corpus at path, or nil when no
// corpus is configured
func CorpusLoader(path string) usecase.CorpusLoader {
	if path == "" {
		return nil
	}
	return func(ctx context.Context) (*corpus.Corpus, error) {
		return corpus.Load(path)
	}
}
