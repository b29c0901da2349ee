package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/9endu/Dealicious/internal/domain"
)

// Pool bounds the number of OCR jobs running at once and collapses concurrent
// requests for the same image into a single recognition.
type Pool struct {
	next  domain.TextRecognizer
	sem   *semaphore.Weighted
	group singleflight.Group
}

// NewPool wraps next with a worker limit of maxConcurrent (minimum 1)
func NewPool(next domain.TextRecognizer, maxConcurrent int) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pool{
		next: next,
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Recognize waits for a free worker slot and runs the wrapped recognizer.
// Concurrent calls with identical image bytes and language share one result.
// A caller that gives up returns immediately; the shared recognition keeps running
// for the other callers and is bounded by the wrapped recognizer's own timeout.
func (p *Pool) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	if len(image) == 0 {
		return "", domain.ErrEmptyImage
	}
	if language == "" {
		language = DefaultLanguage
	}

	key := imageKey(image, language)
	shared := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (interface{}, error) {
		return p.run(shared, image, language)
	})

	select {
	case <-ctx.Done():
		ocrRequests.WithLabelValues("cancelled").Inc()
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			ocrDeduplicated.Inc()
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (p *Pool) run(ctx context.Context, image []byte, language string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		ocrRequests.WithLabelValues("cancelled").Inc()
		return "", err
	}
	defer p.sem.Release(1)

	ocrInFlight.Inc()
	defer ocrInFlight.Dec()

	start := time.Now()
	text, err := p.next.Recognize(ctx, image, language)
	ocrDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		ocrRequests.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrOCRUnavailable):
		ocrRequests.WithLabelValues("unavailable").Inc()
	default:
		ocrRequests.WithLabelValues("error").Inc()
		log.Warn().Err(err).Int("bytes", len(image)).Msg("OCR recognition failed")
	}
	return text, err
}

// imageKey identifies an image for deduplication
func imageKey(image []byte, language string) string {
	sum := sha256.Sum256(image)
	return language + ":" + hex.EncodeToString(sum[:])
}
