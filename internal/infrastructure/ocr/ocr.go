// Package ocr provides the text recognizers used to read offer screenshots.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/9endu/Dealicious/config"
	"github.com/9endu/Dealicious/internal/domain"
)

// DefaultLanguage is the OCR language used for every screenshot.
const DefaultLanguage = "eng"

// NewRecognizer creates a TextRecognizer based on config.
// The returned recognizer is not pooled; wrap it with NewPool to bound concurrency.
func NewRecognizer(cfg config.OCRConfig) (domain.TextRecognizer, error) {
	switch cfg.Provider {
	case "tesseract", "":
		return NewTesseract(cfg.BinaryPath, cfg.Timeout), nil
	case "http":
		if cfg.Endpoint == "" {
			return nil, eris.New("ocr: http provider requires an endpoint")
		}
		return NewHTTPRecognizer(HTTPConfig{
			Endpoint:          cfg.Endpoint,
			APIKey:            cfg.APIKey,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}), nil
	case "disabled":
		return Disabled{}, nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// Disabled is a recognizer used when no OCR backend is configured.
type Disabled struct{}

// Recognize always fails with domain.ErrOCRUnavailable.
func (Disabled) Recognize(context.Context, []byte, string) (string, error) {
	return "", domain.ErrOCRUnavailable
}

// WithLanguage pins every recognition to language, ignoring the caller's choice.
// An empty language returns next unchanged.
func WithLanguage(next domain.TextRecognizer, language string) domain.TextRecognizer {
	if language == "" {
		return next
	}
	return fixedLanguage{next: next, language: language}
}

type fixedLanguage struct {
	next     domain.TextRecognizer
	language string
}

func (f fixedLanguage) Recognize(ctx context.Context, image []byte, _ string) (string, error) {
	return f.next.Recognize(ctx, image, f.language)
}
