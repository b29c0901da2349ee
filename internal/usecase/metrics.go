package usecase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/9endu/Dealicious/internal/domain"
)

var (
	// verificationsTotal tracks verifications by caller decision.
	verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_verifications_total",
		Help: "Total number of offer verifications by decision",
	}, []string{"decision"})

	// verificationFailures tracks verifications that fell back to the degraded result.
	verificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offer_verification_failures_total",
		Help: "Total number of verifications that failed internally",
	})

	verificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "offer_verification_duration_seconds",
		Help:    "Time taken to verify one offer",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	confidenceScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "offer_confidence_score",
		Help:    "Distribution of aggregate confidence scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	// stepStatus tracks per-step verdicts.
	stepStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_verification_step_total",
		Help: "Total number of step verdicts by step and status",
	}, []string{"step", "status"})

	classifierReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "offer_classifier_ready",
		Help: "1 when the similarity classifier is serving, 0 while warming or degraded",
	})
)

// MetricsRecorder provides methods to record verification metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordResult records the outcome of one verification.
func (m *MetricsRecorder) RecordResult(result *domain.VerificationResult, elapsed time.Duration) {
	verificationDuration.Observe(elapsed.Seconds())
	confidenceScore.Observe(float64(result.ConfidenceScore))
	verificationsTotal.WithLabelValues(string(result.Decision())).Inc()
	for _, s := range result.VerificationSteps {
		stepStatus.WithLabelValues(s.Step, string(s.Status)).Inc()
	}
}

// RecordFailure records a verification that returned the degraded result.
func (m *MetricsRecorder) RecordFailure() {
	verificationFailures.Inc()
}

// RecordClassifierReady records whether the similarity classifier is active.
func (m *MetricsRecorder) RecordClassifierReady(ready bool) {
	if ready {
		classifierReady.Set(1)
		return
	}
	classifierReady.Set(0)
}
