package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/9endu/Dealicious/internal/domain"
)

const (
	maxAttempts        = 3
	maxResponseBytes   = 1 << 20
	defaultHTTPTimeout = 30 * time.Second
	defaultRPS         = 5.0
)

// HTTPConfig configures a remote OCR endpoint
type HTTPConfig struct {
	Endpoint          string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// HTTPRecognizer handles communication with a remote OCR service
type HTTPRecognizer struct {
	httpClient  *http.Client
	apiKey      string
	endpoint    string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewHTTPRecognizer creates a new remote OCR client
func NewHTTPRecognizer(cfg HTTPConfig) *HTTPRecognizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &HTTPRecognizer{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:      cfg.APIKey,
		endpoint:    cfg.Endpoint,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// SetDebug enables logging of raw response bodies
func (c *HTTPRecognizer) SetDebug(debug bool) {
	c.debug = debug
}

// DebugEnabled reports whether raw response bodies are logged
func (c *HTTPRecognizer) DebugEnabled() bool {
	return c.debug
}

// debugLog logs a formatted message only when debug is enabled
func (c *HTTPRecognizer) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Debug().Msgf("[OCR] "+format, args...)
	}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// exponentialBackoff returns the wait before retrying after the given attempt (1-based)
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// doRequest executes an HTTP POST with proper headers
func (c *HTTPRecognizer) doRequest(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "ocr: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Dealicious/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrOCRUnavailable, "ocr: request failed: %v", err)
	}
	return resp, nil
}

// Recognize sends the image to the remote service and returns the recognized text.
// Transport errors, 429 and 5xx responses are retried up to three times.
func (c *HTTPRecognizer) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	if len(image) == 0 {
		return "", domain.ErrEmptyImage
	}
	if language == "" {
		language = DefaultLanguage
	}

	body, err := json.Marshal(recognizeRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		Language: language,
	})
	if err != nil {
		return "", eris.Wrap(err, "ocr: marshal request")
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "ocr: rate limiter")
		}

		resp, err := c.doRequest(ctx, body)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("OCR request error")
			lastErr = err
			if !c.sleep(ctx, attempt) {
				return "", eris.Wrap(ctx.Err(), "ocr: cancelled during retry")
			}
			continue
		}

		respBody, readErr := readLimitedBody(resp.Body, maxResponseBytes)
		resp.Body.Close()
		if readErr != nil {
			return "", eris.Wrap(readErr, "ocr: read response")
		}

		c.debugLog("status %d, body: %s", resp.StatusCode, string(respBody))

		// Retry throttling and server errors; other 4xx are final
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("OCR service error")
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = eris.Wrap(domain.ErrRateLimited, "ocr: remote service throttled request")
			} else {
				lastErr = eris.Wrapf(domain.ErrOCRUnavailable, "ocr: status %d", resp.StatusCode)
			}
			if !c.sleep(ctx, attempt) {
				return "", eris.Wrap(ctx.Err(), "ocr: cancelled during retry")
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", eris.Errorf("ocr: service returned %d: %s", resp.StatusCode, string(respBody))
		}

		var parsed recognizeResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return "", eris.Wrap(err, "ocr: decode response")
		}
		return mapToText(&parsed)
	}

	log.Error().Err(lastErr).Msg("All OCR attempts failed")
	return "", lastErr
}

// sleep waits out the backoff for attempt; false means ctx ended first
func (c *HTTPRecognizer) sleep(ctx context.Context, attempt int) bool {
	if attempt == maxAttempts {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(exponentialBackoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
