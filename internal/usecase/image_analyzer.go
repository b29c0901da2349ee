package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/9endu/Dealicious/internal/domain"
)

// OCRLanguage is the language every screenshot is recognized in
const OCRLanguage = "eng"

// Image evidence scoring
const (
	imageBaseConfidence    = 50.0
	imagePlatformBonus     = 20.0
	imagePriceBonus        = 15.0
	imageLengthBonus       = 10.0
	imageFailureConfidence = 10.0
	imageMinBlurbRunes     = 50 // exclusive
	imageMaxBlurbRunes     = 500
)

var currencyPriceRegex = regexp.MustCompile(`(?i)(₹|rs|inr)\s*\d+([.,]\d+)*`)

// platformIndicator is one platform keyword group; any keyword earns the bonus once
type platformIndicator struct {
	name     string
	keywords []string
}

var platformIndicators = []platformIndicator{
	{name: "amazon", keywords: []string{"amazon", "prime"}},
	{name: "flipkart", keywords: []string{"flipkart"}},
	{name: "myntra", keywords: []string{"myntra"}},
	{name: "bigbasket", keywords: []string{"bigbasket"}},
}

// ImageEvidence is the scored outcome of reading a screenshot
type ImageEvidence struct {
	Confidence float64
	Details    string
	Text       string
}

// ImageAnalyzer scores OCR text from a screenshot against platform, price and length heuristics
type ImageAnalyzer struct {
	ocr domain.TextRecognizer
}

// NewImageAnalyzer creates an analyzer over the given recognizer
func NewImageAnalyzer(ocr domain.TextRecognizer) *ImageAnalyzer {
	return &ImageAnalyzer{ocr: ocr}
}

// Analyze never returns an error: OCR failures yield confidence 10 with an explanation
func (a *ImageAnalyzer) Analyze(ctx context.Context, image []byte) ImageEvidence {
	text, err := recognize(ctx, a.ocr, image)
	if err != nil {
		log.Debug().Err(err).Msg("Screenshot OCR failed")
		return ImageEvidence{
			Confidence: imageFailureConfidence,
			Details:    "OCR failed: " + ocrFailureReason(err),
		}
	}
	return scoreImageText(text)
}

// scoreImageText applies the additive bonuses to recovered text
func scoreImageText(text string) ImageEvidence {
	lower := strings.ToLower(NormalizeText(text))
	confidence := imageBaseConfidence
	details := []string{"Text extracted successfully"}

	for _, p := range platformIndicators {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				confidence += imagePlatformBonus
				details = append(details, "Detected "+p.name)
				break
			}
		}
	}

	if prices := currencyPriceRegex.FindAllString(lower, -1); len(prices) > 0 {
		confidence += imagePriceBonus
		details = append(details, fmt.Sprintf("Found %d price(s)", len(prices)))
	}

	if n := utf8.RuneCountInString(text); n > imageMinBlurbRunes && n < imageMaxBlurbRunes {
		confidence += imageLengthBonus
		details = append(details, "Reasonable product description")
	}

	return ImageEvidence{
		Confidence: clampConfidence(confidence),
		Details:    strings.Join(details, " | "),
		Text:       text,
	}
}

// recognize runs OCR and treats whitespace-only output as no text
func recognize(ctx context.Context, ocr domain.TextRecognizer, image []byte) (string, error) {
	if ocr == nil {
		return "", domain.ErrOCRUnavailable
	}
	if len(image) == 0 {
		return "", domain.ErrEmptyImage
	}
	text, err := ocr.Recognize(ctx, image, OCRLanguage)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrNoTextRecognized
	}
	return text, nil
}

// ocrFailureReason turns an OCR error into a short user-facing reason
func ocrFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoTextRecognized):
		return "no text recognized"
	case errors.Is(err, domain.ErrOCRUnavailable):
		return "OCR service unavailable"
	case errors.Is(err, domain.ErrEmptyImage):
		return "empty image"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return err.Error()
	}
}
