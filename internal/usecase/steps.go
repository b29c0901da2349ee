package usecase

import (
	"math"

	"github.com/9endu/Dealicious/internal/domain"
)

// Confidence bounds shared by every step
const (
	minConfidence = 0.0
	maxConfidence = 100.0
)

// thresholds maps a step confidence onto a status: >= passed is passed, >= warning is warning
type thresholds struct {
	passed  float64
	warning float64
}

// Per-step status thresholds
var (
	sourceThresholds     = thresholds{passed: 70, warning: 40}
	extractionThresholds = thresholds{passed: 60, warning: 30}
	priceThresholds      = thresholds{passed: 60, warning: 30}
	offerLogicThresholds = thresholds{passed: 50, warning: 30}
	sellerThresholds     = thresholds{passed: 60, warning: 40}
)

func (t thresholds) status(confidence float64) domain.StepStatus {
	switch {
	case confidence >= t.passed:
		return domain.StatusPassed
	case confidence >= t.warning:
		return domain.StatusWarning
	default:
		return domain.StatusFailed
	}
}

// clampConfidence bounds v to [0,100]; NaN counts as 0
func clampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return minConfidence
	}
	return math.Max(minConfidence, math.Min(maxConfidence, v))
}

// newStep builds an immutable step verdict. The confidence is clamped before the
// status is derived.
func newStep(name string, t thresholds, confidence float64, details string) domain.VerificationStep {
	confidence = clampConfidence(confidence)
	return domain.VerificationStep{
		Step:       name,
		Status:     t.status(confidence),
		Confidence: confidence,
		Details:    details,
	}
}
