package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/9endu/Dealicious/internal/domain"
)

func TestThresholdsStatus(t *testing.T) {
	tests := []struct {
		name       string
		thresholds thresholds
		confidence float64
		want       domain.StepStatus
	}{
		{"source passed at boundary", sourceThresholds, 70, domain.StatusPassed},
		{"source warning just below", sourceThresholds, 69.9, domain.StatusWarning},
		{"source warning at boundary", sourceThresholds, 40, domain.StatusWarning},
		{"source failed", sourceThresholds, 39.9, domain.StatusFailed},
		{"extraction passed", extractionThresholds, 60, domain.StatusPassed},
		{"extraction warning", extractionThresholds, 30, domain.StatusWarning},
		{"extraction failed", extractionThresholds, 20, domain.StatusFailed},
		{"price warning", priceThresholds, 40, domain.StatusWarning},
		{"offer logic passed", offerLogicThresholds, 50, domain.StatusPassed},
		{"offer logic failed", offerLogicThresholds, 29, domain.StatusFailed},
		{"seller passed", sellerThresholds, 60, domain.StatusPassed},
		{"seller warning", sellerThresholds, 40, domain.StatusWarning},
		{"seller failed", sellerThresholds, 20, domain.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.thresholds.status(tt.confidence))
		})
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 42.5, 42.5},
		{"negative", -15, 0},
		{"over max", 135, 100},
		{"NaN", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 100},
		{"negative infinity", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampConfidence(tt.in))
		})
	}
}

func TestNewStep_ClampsBeforeStatus(t *testing.T) {
	step := newStep(domain.StepOfferLogic, offerLogicThresholds, -15, "details")

	assert.Equal(t, domain.StepOfferLogic, step.Step)
	assert.Equal(t, 0.0, step.Confidence)
	assert.Equal(t, domain.StatusFailed, step.Status)
	assert.Equal(t, "details", step.Details)

	step = newStep(domain.StepOfferLogic, offerLogicThresholds, 160, "")
	assert.Equal(t, 100.0, step.Confidence)
	assert.Equal(t, domain.StatusPassed, step.Status)
}
