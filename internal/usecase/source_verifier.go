package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/9endu/Dealicious/internal/domain"
)

// Source confidences
const (
	whitelistedSourceConfidence = 90.0
	unlistedSourceConfidence    = 30.0
	malformedSourceConfidence   = 10.0
)

// SourceVerifier scores the claimed origin of an offer
type SourceVerifier struct {
	trust *TrustTable
	image *ImageAnalyzer
}

// NewSourceVerifier creates a source verifier
func NewSourceVerifier(trust *TrustTable, image *ImageAnalyzer) *SourceVerifier {
	if trust == nil {
		trust = DefaultTrustTable()
	}
	return &SourceVerifier{trust: trust, image: image}
}

// Verify scores the source URL against the whitelist and, when a screenshot is present,
// keeps the better of the URL and screenshot confidences.
func (v *SourceVerifier) Verify(ctx context.Context, offer *domain.OfferData) domain.VerificationStep {
	confidence := 0.0
	var details []string

	if offer.HasSourceURL() {
		c, d := v.scoreURL(offer.SourceURL)
		confidence = c
		details = append(details, d)
	}

	if offer.HasScreenshot() {
		c, d := v.scoreScreenshot(ctx, offer.Screenshot)
		confidence = math.Max(confidence, c)
		details = append(details, d)
	}

	if len(details) == 0 {
		details = append(details, "No source URL or screenshot provided")
	}

	return newStep(domain.StepSource, sourceThresholds, confidence, strings.Join(details, " | "))
}

func (v *SourceVerifier) scoreURL(raw string) (float64, string) {
	u, err := parseSourceURL(raw)
	if err != nil {
		return malformedSourceConfidence, "Invalid URL format"
	}
	host := normalizeHost(u.Hostname())
	if v.trust.IsWhitelisted(host) {
		return whitelistedSourceConfidence, fmt.Sprintf("Domain %s is whitelisted", host)
	}
	return unlistedSourceConfidence, fmt.Sprintf("Domain %s is not in whitelist", host)
}

// scoreScreenshot folds any analysis failure, including a panic, into the detail text
func (v *SourceVerifier) scoreScreenshot(ctx context.Context, image []byte) (confidence float64, details string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Screenshot analysis panicked")
			confidence, details = 0, "Screenshot analysis failed"
		}
	}()

	if v.image == nil {
		return 0, "Screenshot analysis failed: no analyzer configured"
	}
	evidence := v.image.Analyze(ctx, image)
	return evidence.Confidence, "Screenshot analysis: " + evidence.Details
}
