package ocr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ocrRequests tracks recognitions by outcome (success, error, unavailable, cancelled).
	ocrRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocr_requests_total",
		Help: "Total number of OCR recognitions by outcome",
	}, []string{"outcome"})

	ocrDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ocr_duration_seconds",
		Help:    "Time spent recognizing a screenshot",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	ocrInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ocr_in_flight",
		Help: "Number of OCR jobs currently running",
	})

	// ocrDeduplicated counts callers that reused a concurrent recognition of the same image.
	ocrDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ocr_deduplicated_total",
		Help: "Total number of OCR calls served by an in-flight recognition",
	})
)
