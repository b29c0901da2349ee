package usecase

import (
	"regexp"
	"strings"

	"github.com/9endu/Dealicious/internal/domain"
)

const offerLogicBaseConfidence = 50.0

// offerPattern is a weighted phrase pattern; positive weights mark legitimate
// offer mechanics, negative weights suspicious phrasing.
type offerPattern struct {
	regex  *regexp.Regexp
	weight float64
	desc   string
}

var legitimatePatterns = []offerPattern{
	{regexp.MustCompile(`(?i)buy\s+\d+\s+get\s+\d+\s+free`), 20, "Buy X Get Y free"},
	{regexp.MustCompile(`(?i)discount\s+of\s+\d+%`), 15, "Percentage discount"},
	{regexp.MustCompile(`(?i)flat\s+\d+\s*off`), 15, "Flat discount"},
	{regexp.MustCompile(`(?i)combo\s+offer`), 10, "Combo offer"},
	{regexp.MustCompile(`(?i)flash\s+sale`), 10, "Flash sale"},
	{regexp.MustCompile(`(?i)limited\s+time`), 5, "Limited time offer"},
}

var suspiciousPatterns = []offerPattern{
	{regexp.MustCompile(`(?i)100%\s+free`), -30, "100% free (suspicious)"},
	{regexp.MustCompile(`(?i)no\s+catch`), -20, `"No catch" phrase`},
	{regexp.MustCompile(`(?i)unbelievable\s+price`), -15, "Overly promotional"},
}

// OfferLogicVerifier scores free text against the offer phrase patterns.
// It holds no state: identical text always yields an identical step.
type OfferLogicVerifier struct{}

// NewOfferLogicVerifier creates an offer logic verifier
func NewOfferLogicVerifier() *OfferLogicVerifier {
	return &OfferLogicVerifier{}
}

// Verify applies every matching pattern, then clamps
func (OfferLogicVerifier) Verify(text string) domain.VerificationStep {
	text = NormalizeText(text)
	confidence := offerLogicBaseConfidence
	details := []string{"Basic offer logic check"}

	for _, set := range [][]offerPattern{legitimatePatterns, suspiciousPatterns} {
		for _, p := range set {
			if p.regex.MatchString(text) {
				confidence += p.weight
				details = append(details, p.desc)
			}
		}
	}

	return newStep(domain.StepOfferLogic, offerLogicThresholds, confidence, strings.Join(details, " | "))
}
