package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/9endu/Dealicious/internal/domain"
)

// Extraction strategy names, recorded as field provenance
const (
	StrategyOffer      = "offer"
	StrategyURL        = "url"
	StrategyText       = "text"
	StrategyScreenshot = "screenshot"
	StrategyFallback   = "fallback"
	StrategyClassifier = "classifier"
)

// Strategy confidences
const (
	urlIdentifierConfidence   = 70.0
	urlNoIdentifierConfidence = 40.0
	urlFailureConfidence      = 20.0
	textPriceConfidence       = 60.0
	textNoPriceConfidence     = 30.0
	screenshotTextConfidence  = 50.0
	screenshotShortConfidence = 20.0
	screenshotFailConfidence  = 10.0
	fallbackTitleConfidence   = 40.0

	minIdentifierLen     = 6  // segments must be longer than 5 characters
	minScreenshotTextLen = 21 // recovered text must be longer than 20 characters
)

var (
	alphanumericRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	amazonIDRegex     = regexp.MustCompile(`(?i)/dp/([A-Z0-9]+)`)
	amazonSlugRegex   = regexp.MustCompile(`(?i)/dp/[A-Z0-9]+/([^/?]+)`)
	flipkartIDRegex   = regexp.MustCompile(`(?i)/(p/[a-z0-9]+)`)
	flipkartSlugRegex = regexp.MustCompile(`(?i)/p/[a-z0-9]+/([^/?]+)`)
)

// partialDetails is what a single strategy proposes; empty fields propose nothing
type partialDetails struct {
	Title     string
	Price     float64
	Brand     string
	Platform  string
	ProductID string
}

// proposal is one strategy's (confidence, partial record) pair
type proposal struct {
	strategy   string
	confidence float64
	fields     partialDetails
	details    string
}

// ExtractionResult is the extraction step verdict plus the merged product details
type ExtractionResult struct {
	Step    domain.VerificationStep
	Details domain.ProductDetails
}

// ProductExtractor runs the URL, text and screenshot strategies and merges their
// proposals field by field.
type ProductExtractor struct {
	text       *TextExtractor
	ocr        domain.TextRecognizer
	classifier domain.Classifier
}

// NewProductExtractor creates a product extractor
func NewProductExtractor(text *TextExtractor, ocr domain.TextRecognizer, classifier domain.Classifier) *ProductExtractor {
	if text == nil {
		text = NewTextExtractor()
	}
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &ProductExtractor{text: text, ocr: ocr, classifier: classifier}
}

// Extract runs every strategy the offer's inputs permit
func (e *ProductExtractor) Extract(ctx context.Context, offer *domain.OfferData) ExtractionResult {
	reducer := newDetailsReducer(offer.Platform)
	var notes []string
	confidence := 0.0

	var proposals []proposal
	if offer.HasSourceURL() {
		proposals = append(proposals, e.fromURL(offer.SourceURL))
	}
	if offer.HasText() {
		proposals = append(proposals, e.fromText(offer.Text))
	}
	if offer.HasScreenshot() {
		proposals = append(proposals, e.fromScreenshot(ctx, offer.Screenshot))
	}
	for _, p := range proposals {
		reducer.apply(p)
		confidence = math.Max(confidence, p.confidence)
		notes = append(notes, p.details)
	}

	details := reducer.details
	if !details.HasTitle() && offer.HasText() {
		if title := FallbackTitle(offer.Text); title != "" {
			confidence = math.Max(confidence, fallbackTitleConfidence)
			details.Title = title
			details.Provenance[domain.FieldTitle] = domain.FieldSource{Strategy: StrategyFallback, Confidence: confidence}
			notes = append(notes, "Used text heuristics for title extraction")
		}
	}

	if details.HasTitle() {
		details.Category = e.classifier.Categorize(details.Title)
		details.Provenance[domain.FieldCategory] = domain.FieldSource{
			Strategy:   StrategyClassifier,
			Confidence: details.Provenance[domain.FieldTitle].Confidence,
		}
		notes = append(notes, fmt.Sprintf("Category: %s", details.Category))
	}

	if len(notes) == 0 {
		notes = append(notes, "No URL, text or screenshot to extract from")
	}

	return ExtractionResult{
		Step:    newStep(domain.StepExtraction, extractionThresholds, confidence, strings.Join(notes, "; ")),
		Details: details,
	}
}

// fromURL parses the URL path for a product identifier and a slug title
func (e *ProductExtractor) fromURL(raw string) proposal {
	u, err := parseSourceURL(raw)
	if err != nil {
		return proposal{
			strategy:   StrategyURL,
			confidence: urlFailureConfidence,
			details:    "URL extraction failed: invalid URL",
		}
	}

	host := normalizeHost(u.Hostname())
	var productID, title string
	for _, segment := range strings.Split(u.Path, "/") {
		if len(segment) >= minIdentifierLen && alphanumericRegex.MatchString(segment) {
			productID = segment
			break
		}
	}

	switch {
	case strings.Contains(host, "amazon"):
		if m := amazonIDRegex.FindStringSubmatch(raw); m != nil {
			productID = m[1]
		}
		title = slugTitle(amazonSlugRegex, raw)
	case strings.Contains(host, "flipkart"):
		if m := flipkartIDRegex.FindStringSubmatch(raw); m != nil {
			productID = m[1]
		}
		title = slugTitle(flipkartSlugRegex, raw)
	}

	confidence := urlNoIdentifierConfidence
	details := "URL extraction: no product identifier"
	if productID != "" {
		confidence = urlIdentifierConfidence
		details = "URL extraction: product id " + productID
	}

	return proposal{
		strategy:   StrategyURL,
		confidence: confidence,
		fields: partialDetails{
			Title:     title,
			Platform:  host,
			ProductID: productID,
		},
		details: details,
	}
}

// slugTitle turns the URL slug captured by re into words
func slugTitle(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	slug := strings.ReplaceAll(m[1], "-", " ")
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}
	return strings.TrimSpace(slug)
}

// fromText applies the text heuristics to the offer description
func (e *ProductExtractor) fromText(text string) proposal {
	features := e.text.Extract(text)
	return textProposal(StrategyText, features, "Text extraction")
}

func textProposal(strategy string, f TextFeatures, label string) proposal {
	confidence := textNoPriceConfidence
	details := label + ": no price found"
	if f.Price > 0 {
		confidence = textPriceConfidence
		details = fmt.Sprintf("%s: price %.2f", label, f.Price)
	}
	return proposal{
		strategy:   strategy,
		confidence: confidence,
		fields: partialDetails{
			Title: f.Title,
			Price: f.Price,
			Brand: f.Brand,
		},
		details: details,
	}
}

// fromScreenshot runs OCR and re-uses the text heuristics on the recovered text
func (e *ProductExtractor) fromScreenshot(ctx context.Context, image []byte) proposal {
	text, err := recognize(ctx, e.ocr, image)
	if err != nil && !errors.Is(err, domain.ErrNoTextRecognized) {
		return proposal{
			strategy:   StrategyScreenshot,
			confidence: screenshotFailConfidence,
			details:    "Screenshot extraction failed: " + ocrFailureReason(err),
		}
	}

	p := textProposal(StrategyScreenshot, e.text.Extract(text), "Screenshot extraction")
	if utf8.RuneCountInString(strings.TrimSpace(text)) >= minScreenshotTextLen {
		p.confidence = screenshotTextConfidence
	} else {
		p.confidence = screenshotShortConfidence
		p.details = "Screenshot extraction: too little text recognized"
	}
	return p
}

// detailsReducer keeps, per field, the value from the most confident proposal.
// A later proposal replaces a field only with strictly higher confidence.
type detailsReducer struct {
	details domain.ProductDetails
}

func newDetailsReducer(platform string) *detailsReducer {
	details := domain.NewProductDetails(platform)
	details.Provenance = make(map[string]domain.FieldSource)
	if platform != "" {
		details.Provenance[domain.FieldPlatform] = domain.FieldSource{Strategy: StrategyOffer}
	}
	return &detailsReducer{details: details}
}

func (r *detailsReducer) apply(p proposal) {
	if p.fields.Title != "" && r.wins(domain.FieldTitle, p) {
		r.details.Title = p.fields.Title
	}
	if p.fields.Price > 0 && r.wins(domain.FieldPrice, p) {
		r.details.Price = p.fields.Price
	}
	if p.fields.Brand != "" && r.wins(domain.FieldBrand, p) {
		r.details.Brand = p.fields.Brand
	}
	if p.fields.Platform != "" && r.wins(domain.FieldPlatform, p) {
		r.details.Platform = p.fields.Platform
	}
	if p.fields.ProductID != "" && r.wins(domain.FieldProductID, p) {
		r.details.ProductID = p.fields.ProductID
	}
}

// wins records p as the field's source when it beats the current one
func (r *detailsReducer) wins(field string, p proposal) bool {
	if current, ok := r.details.Provenance[field]; ok && p.confidence <= current.Confidence {
		return false
	}
	r.details.Provenance[field] = domain.FieldSource{Strategy: p.strategy, Confidence: p.confidence}
	return true
}

// parseSourceURL accepts only absolute URLs with a scheme and a host
func parseSourceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute URL", domain.ErrInvalidRequest, raw)
	}
	return u, nil
}
