package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9endu/Dealicious/config"
	"github.com/9endu/Dealicious/internal/domain"
	"github.com/9endu/Dealicious/internal/engine"
	"github.com/9endu/Dealicious/internal/version"
)

func testEngine() *engine.Engine {
	return engine.New(&config.Config{
		OCR:   config.OCRConfig{Provider: "disabled", MaxConcurrent: 1},
		Cache: config.CacheConfig{TTL: time.Hour, MaxEntries: 10},
	})
}

var trustedOffer = &domain.OfferData{
	SourceURL: "https://www.amazon.in/dp/B08X4J2Q3K/wireless-mouse",
	Text:      "Logitech wireless mouse, flat 100 off, only 799",
	Platform:  "amazon.in",
}

func TestVerifyOffer(t *testing.T) {
	t.Run("scores after warm-up", func(t *testing.T) {
		ctx := context.Background()
		eng := testEngine()
		eng.Start(ctx)

		result, err := verifyOffer(ctx, eng, trustedOffer, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 75, result.ConfidenceScore)
	})

	t.Run("does not wait past the deadline", func(t *testing.T) {
		// Start is never called, so warm-up never finishes
		eng := testEngine()

		start := time.Now()
		result, err := verifyOffer(context.Background(), eng, trustedOffer, 20*time.Millisecond)
		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("cancelled context returns no result", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := verifyOffer(ctx, testEngine(), trustedOffer, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result)
	})
}

func TestWriteResult(t *testing.T) {
	result := &domain.VerificationResult{
		ID:              "abc",
		ConfidenceScore: 65,
		VerificationSteps: []domain.VerificationStep{
			{Step: domain.StepSource, Status: domain.StatusPassed, Confidence: 90, Details: "Trusted domain"},
		},
		ProductDetails:    domain.ProductDetails{Title: "Mouse", Platform: "amazon.in"},
		Warnings:          []string{"Price verification questionable"},
		NeedsManualReview: true,
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, result, "json"))

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "manual_review", decoded["decision"])
		assert.Equal(t, float64(65), decoded["confidenceScore"])
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResult(&buf, result, "table"))

		out := buf.String()
		assert.Contains(t, out, "Score:")
		assert.Contains(t, out, "65")
		assert.Contains(t, out, domain.StepSource)
		assert.Contains(t, out, "Trusted domain")
		assert.Contains(t, out, "Warning:")
		assert.Contains(t, out, "manual_review")
	})
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "dealicious "+version.Version+"\n", buf.String())
}
