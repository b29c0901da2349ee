package usecase

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/9endu/Dealicious/internal/domain"
	"github.com/9endu/Dealicious/internal/infrastructure/corpus"
)

const tracerName = "github.com/9endu/Dealicious/internal/usecase"

// Step weights, in canonical step order; they sum to 100
var stepWeights = [...]float64{
	slotSource:     20,
	slotExtraction: 30,
	slotPrice:      25,
	slotOfferLogic: 15,
	slotSeller:     10,
}

// Result slots, one per step, in canonical order
const (
	slotSource = iota
	slotExtraction
	slotPrice
	slotOfferLogic
	slotSeller
	stepCount
)

// Verdict thresholds on the clamped aggregate score
const (
	verifiedScore     = 70.0
	ambiguousScoreMin = 60.0
)

// Result warnings
const (
	WarningSource   = "Source verification failed or questionable"
	WarningPrice    = "Price verification questionable"
	WarningPipeline = "Verification process failed"
)

// Classifier names reported by ClassifierName
const (
	ClassifierKeyword    = "keyword"
	ClassifierSimilarity = "similarity"
)

// CorpusLoader loads the similarity classifier corpus
type CorpusLoader func(ctx context.Context) (*corpus.Corpus, error)

// ServiceConfig holds configuration for the verification service
type ServiceConfig struct {
	Trust      *TrustTable
	Brands     []string     // empty = built-in brand list
	LoadCorpus CorpusLoader // nil = keyword classifier only
	Similarity SimilarityConfig
}

// VerificationService scores offers. It is safe for concurrent use; the only shared
// mutable state is the injected price history.
type VerificationService struct {
	source    *SourceVerifier
	extractor *ProductExtractor
	price     *PriceVerifier
	logic     *OfferLogicVerifier
	seller    *SellerVerifier

	classifier *classifierSwitch
	loadCorpus CorpusLoader
	similarity SimilarityConfig
	startOnce  sync.Once
	ready      chan struct{}

	metrics *MetricsRecorder
	tracer  trace.Tracer
}

// NewVerificationService creates a service that is usable immediately with the keyword
// classifier. Call Start to begin loading the similarity classifier in the background.
func NewVerificationService(
	history domain.PriceHistoryRepository,
	ocr domain.TextRecognizer,
	config ServiceConfig,
) *VerificationService {
	trust := config.Trust
	if trust == nil {
		trust = DefaultTrustTable()
	}

	text := NewTextExtractor()
	if len(config.Brands) > 0 {
		text = NewTextExtractorWithBrands(config.Brands)
	}

	classifier := newClassifierSwitch(NewKeywordClassifier(), ClassifierKeyword)

	return &VerificationService{
		source:     NewSourceVerifier(trust, NewImageAnalyzer(ocr)),
		extractor:  NewProductExtractor(text, ocr, classifier),
		price:      NewPriceVerifier(history),
		logic:      NewOfferLogicVerifier(),
		seller:     NewSellerVerifier(trust),
		classifier: classifier,
		loadCorpus: config.LoadCorpus,
		similarity: config.Similarity,
		ready:      make(chan struct{}),
		metrics:    NewMetricsRecorder(),
		tracer:     otel.Tracer(tracerName),
	}
}

// Start begins classifier warm-up in the background. It is safe to call more than once.
// Warm-up failure leaves the keyword classifier in place.
func (s *VerificationService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		if s.loadCorpus == nil {
			s.metrics.RecordClassifierReady(false)
			close(s.ready)
			return
		}
		go s.warmUp(ctx)
	})
}

// Ready is closed once warm-up has finished, whether or not it succeeded
func (s *VerificationService) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether warm-up has finished
func (s *VerificationService) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// ClassifierName reports which category classifier is serving
func (s *VerificationService) ClassifierName() string {
	return s.classifier.Name()
}

func (s *VerificationService) warmUp(ctx context.Context) {
	defer close(s.ready)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Classifier warm-up panicked, using keyword table")
		}
	}()

	start := time.Now()
	c, err := s.loadCorpus(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Classifier corpus unavailable, using keyword table")
		s.metrics.RecordClassifierReady(false)
		return
	}

	sim, err := NewSimilarityClassifier(c, NewKeywordClassifier(), s.similarity)
	if err != nil {
		log.Warn().Err(err).Msg("Similarity classifier could not be built, using keyword table")
		s.metrics.RecordClassifierReady(false)
		return
	}

	s.classifier.set(sim, ClassifierSimilarity)
	s.metrics.RecordClassifierReady(true)
	log.Info().
		Int("categories", len(c.Categories)).
		Int("examples", c.Size()).
		Dur("elapsed", time.Since(start)).
		Msg("Similarity classifier ready")
}

// Verify scores one offer. The returned result is never nil: on an internal failure
// it is the degraded result (score 0, one failed step, manual review) and the error
// is returned alongside it.
func (s *VerificationService) Verify(ctx context.Context, offer *domain.OfferData) (result *domain.VerificationResult, err error) {
	start := time.Now()
	id := uuid.NewString()
	if offer == nil {
		offer = &domain.OfferData{}
	}

	ctx, span := s.tracer.Start(ctx, "VerificationService.Verify", trace.WithAttributes(
		attribute.String("verification.id", id),
		attribute.Bool("offer.has_url", offer.HasSourceURL()),
		attribute.Bool("offer.has_text", offer.HasText()),
		attribute.Bool("offer.has_screenshot", offer.HasScreenshot()),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("verification_id", id).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Verification panicked")
			err = fmt.Errorf("%w: %v", domain.ErrPipelineFailure, r)
			result = s.failedResult(id, offer, err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.metrics.RecordFailure()
		}
		s.metrics.RecordResult(result, time.Since(start))
	}()

	steps, details, err := s.runSteps(ctx, offer)
	if err != nil {
		log.Warn().Str("verification_id", id).Err(err).Msg("Verification failed")
		return s.failedResult(id, offer, err), err
	}

	result = s.aggregate(id, steps, details)
	span.SetAttributes(
		attribute.Int("verification.score", result.ConfidenceScore),
		attribute.Bool("verification.verified", result.IsVerified),
		attribute.Bool("verification.manual_review", result.NeedsManualReview),
	)
	log.Info().
		Str("verification_id", id).
		Int("confidence", result.ConfidenceScore).
		Bool("verified", result.IsVerified).
		Bool("manual_review", result.NeedsManualReview).
		Dur("elapsed", time.Since(start)).
		Msg("Offer verified")

	return result, nil
}

// runSteps runs Source, Extraction, Offer Logic and Seller concurrently and Price
// after Extraction. Steps land in fixed slots so completion order does not matter.
func (s *VerificationService) runSteps(ctx context.Context, offer *domain.OfferData) ([stepCount]domain.VerificationStep, domain.ProductDetails, error) {
	var steps [stepCount]domain.VerificationStep
	var details domain.ProductDetails

	g, gctx := errgroup.WithContext(ctx)

	g.Go(s.step(gctx, domain.StepSource, func(ctx context.Context) error {
		steps[slotSource] = s.source.Verify(ctx, offer)
		return nil
	}))

	g.Go(s.step(gctx, domain.StepExtraction, func(ctx context.Context) error {
		extraction := s.extractor.Extract(ctx, offer)
		steps[slotExtraction] = extraction.Step
		details = extraction.Details

		return s.step(ctx, domain.StepPrice, func(ctx context.Context) error {
			priceStep, err := s.price.Verify(ctx, extraction.Details)
			if err != nil {
				return err
			}
			steps[slotPrice] = priceStep
			return nil
		})()
	}))

	g.Go(s.step(gctx, domain.StepOfferLogic, func(context.Context) error {
		steps[slotOfferLogic] = s.logic.Verify(offer.Text)
		return nil
	}))

	g.Go(s.step(gctx, domain.StepSeller, func(context.Context) error {
		steps[slotSeller] = s.seller.Verify(offer.Platform)
		return nil
	}))

	if err := g.Wait(); err != nil {
		return steps, details, err
	}
	if err := ctx.Err(); err != nil {
		return steps, details, err
	}
	return steps, details, nil
}

// step wraps fn with a tracing span and converts a panic into an error
func (s *VerificationService) step(ctx context.Context, name string, fn func(context.Context) error) func() error {
	return func() (err error) {
		ctx, span := s.tracer.Start(ctx, name)
		defer span.End()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("step", name).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Verification step panicked")
				err = fmt.Errorf("%w: %s: %v", domain.ErrPipelineFailure, name, r)
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
		}()
		return fn(ctx)
	}
}

// aggregate combines the five step confidences into the final verdict
func (s *VerificationService) aggregate(id string, steps [stepCount]domain.VerificationStep, details domain.ProductDetails) *domain.VerificationResult {
	total := 0.0
	for i, step := range steps {
		total += clampConfidence(step.Confidence) / 100 * stepWeights[i]
	}
	clamped := clampConfidence(total)

	warnings := []string{}
	needsManualReview := false
	if !steps[slotSource].Passed() {
		warnings = append(warnings, WarningSource)
		needsManualReview = true
	}
	if !steps[slotPrice].Passed() {
		warnings = append(warnings, WarningPrice)
	}
	// The ambiguous score zone adds a second, independent reason for review
	if clamped >= ambiguousScoreMin && clamped < verifiedScore {
		needsManualReview = true
	}

	return &domain.VerificationResult{
		ID:                id,
		ConfidenceScore:   int(math.Round(clamped)),
		IsVerified:        clamped >= verifiedScore && !needsManualReview,
		VerificationSteps: steps[:],
		ProductDetails:    details,
		Warnings:          warnings,
		NeedsManualReview: needsManualReview,
		VerifiedAt:        time.Now().UTC(),
	}
}

// failedResult is the degraded result returned for any internal failure
func (s *VerificationService) failedResult(id string, offer *domain.OfferData, err error) *domain.VerificationResult {
	return &domain.VerificationResult{
		ID:              id,
		ConfidenceScore: 0,
		IsVerified:      false,
		VerificationSteps: []domain.VerificationStep{{
			Step:       domain.StepError,
			Status:     domain.StatusFailed,
			Confidence: 0,
			Details:    err.Error(),
		}},
		ProductDetails:    domain.NewProductDetails(offer.Platform),
		Warnings:          []string{WarningPipeline},
		NeedsManualReview: true,
		VerifiedAt:        time.Now().UTC(),
	}
}
