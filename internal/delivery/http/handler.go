package http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/9endu/Dealicious/config"
	"github.com/9endu/Dealicious/internal/domain"
	"github.com/9endu/Dealicious/internal/version"
)

// formOverheadBytes covers the non-screenshot part of a request body
const formOverheadBytes int64 = 64 << 10

// Verifier is the verification engine the handlers call
type Verifier interface {
	Verify(ctx context.Context, offer *domain.OfferData) (*domain.VerificationResult, error)
	IsReady() bool
	ClassifierName() string
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	verifier           Verifier
	maxScreenshotBytes int64
}

// NewHandler creates a new HTTP handler. A nil verifier makes verify endpoints answer 503.
func NewHandler(verifier Verifier, maxScreenshotBytes int64) *Handler {
	if maxScreenshotBytes <= 0 {
		maxScreenshotBytes = config.DefaultMaxScreenshotBytes
	}
	return &Handler{verifier: verifier, maxScreenshotBytes: maxScreenshotBytes}
}

// verifyRequest is the JSON body of POST /api/v1/offers/verify
type verifyRequest struct {
	SourceURL  string `json:"sourceUrl"`
	Screenshot string `json:"screenshot"` // base64, optionally a data URL
	Text       string `json:"text"`
	Platform   string `json:"platform"`
}

// verifyResponse is the verification result plus the caller-side publishing decision
type verifyResponse struct {
	*domain.VerificationResult
	Decision domain.Decision `json:"decision"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	classifier := "warming"
	name := ""
	if h.verifier != nil {
		if h.verifier.IsReady() {
			classifier = "ready"
		}
		name = h.verifier.ClassifierName()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         version.Service,
		"version":         version.Version,
		"classifier":      classifier,
		"classifier_name": name,
	})
}

// VerifyOffer handles JSON verification requests
func (h *Handler) VerifyOffer(c *gin.Context) {
	if !h.available(c) {
		return
	}

	encodedLimit := int64(base64.StdEncoding.EncodedLen(int(h.maxScreenshotBytes)))
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, encodedLimit+formOverheadBytes)

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			h.tooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	screenshot, err := decodeScreenshot(req.Screenshot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Screenshot must be base64 encoded", "details": err.Error()})
		return
	}
	if int64(len(screenshot)) > h.maxScreenshotBytes {
		h.tooLarge(c)
		return
	}

	h.verify(c, &domain.OfferData{
		SourceURL:  strings.TrimSpace(req.SourceURL),
		Screenshot: screenshot,
		Text:       req.Text,
		Platform:   strings.TrimSpace(req.Platform),
	})
}

// VerifyOfferUpload handles multipart verification requests carrying a screenshot file
func (h *Handler) VerifyOfferUpload(c *gin.Context) {
	if !h.available(c) {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxScreenshotBytes+formOverheadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		if isTooLarge(err) {
			h.tooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "details": err.Error()})
		return
	}

	var screenshot []byte
	if files := form.File["screenshot"]; len(files) > 0 {
		if files[0].Size > h.maxScreenshotBytes {
			h.tooLarge(c)
			return
		}
		screenshot, err = readUpload(files[0], h.maxScreenshotBytes)
		if err != nil {
			if isTooLarge(err) {
				h.tooLarge(c)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read screenshot", "details": err.Error()})
			return
		}
	}

	h.verify(c, &domain.OfferData{
		SourceURL:  strings.TrimSpace(c.PostForm("sourceUrl")),
		Screenshot: screenshot,
		Text:       c.PostForm("text"),
		Platform:   strings.TrimSpace(c.PostForm("platform")),
	})
}

// verify runs the engine. The engine always returns a result, so an engine error is
// logged and the degraded result is still returned to the caller.
func (h *Handler) verify(c *gin.Context, offer *domain.OfferData) {
	result, err := h.verifier.Verify(c.Request.Context(), offer)
	if err != nil {
		log.Warn().Err(err).Msg("Verification returned degraded result")
	}
	if result == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}
	c.JSON(http.StatusOK, verifyResponse{VerificationResult: result, Decision: result.Decision()})
}

func (h *Handler) available(c *gin.Context) bool {
	if h.verifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Verification service not configured"})
		return false
	}
	return true
}

func (h *Handler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("Screenshot exceeds %d bytes", h.maxScreenshotBytes),
	})
}

// decodeScreenshot accepts plain base64 or a data URL; empty input means no screenshot
func decodeScreenshot(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, nil
	}
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &http.MaxBytesError{Limit: limit}
	}
	return data, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
