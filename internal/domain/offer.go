package domain

import "time"

// OfferData is a crowd-sourced offer submitted for verification.
// Every field is optional; an empty field disables the signals that depend on it.
type OfferData struct {
	SourceURL  string `json:"sourceUrl,omitempty"`
	Screenshot []byte `json:"screenshot,omitempty"` // raw image bytes (base64 in JSON)
	Text       string `json:"text,omitempty"`
	Platform   string `json:"platform,omitempty"`
}

// HasSourceURL reports whether a source URL was supplied
func (o *OfferData) HasSourceURL() bool { return o != nil && o.SourceURL != "" }

// HasScreenshot reports whether a screenshot was supplied
func (o *OfferData) HasScreenshot() bool { return o != nil && len(o.Screenshot) > 0 }

// HasText reports whether free text was supplied
func (o *OfferData) HasText() bool { return o != nil && o.Text != "" }

// StepStatus is the verdict of a single pipeline stage
type StepStatus string

const (
	StatusPassed  StepStatus = "passed"
	StatusWarning StepStatus = "warning"
	StatusFailed  StepStatus = "failed"
)

// Canonical step names, in execution order.
const (
	StepSource     = "Source Verification"
	StepExtraction = "Product Information Extraction"
	StepPrice      = "Price Verification"
	StepOfferLogic = "Offer Logic Verification"
	StepSeller     = "Seller/Platform Verification"
	StepError      = "Error occurred during verification"
)

// VerificationStep is the verdict of one pipeline stage. It is never mutated after creation.
type VerificationStep struct {
	Step       string     `json:"step"`
	Status     StepStatus `json:"status"`
	Confidence float64    `json:"confidence"` // 0-100
	Details    string     `json:"details"`
}

// Passed reports whether the step status is passed
func (s VerificationStep) Passed() bool { return s.Status == StatusPassed }

// VerificationResult is the outcome of verifying one offer
type VerificationResult struct {
	ID                string             `json:"id"`
	ConfidenceScore   int                `json:"confidenceScore"` // 0-100
	IsVerified        bool               `json:"isVerified"`
	VerificationSteps []VerificationStep `json:"verificationSteps"`
	ProductDetails    ProductDetails     `json:"productDetails"`
	Warnings          []string           `json:"warnings"`
	NeedsManualReview bool               `json:"needsManualReview"`
	VerifiedAt        time.Time          `json:"verifiedAt"`
}

// Decision is the publishing policy a caller derives from a result
type Decision string

const (
	DecisionAutoPublish  Decision = "auto_publish"
	DecisionManualReview Decision = "manual_review"
	DecisionReject       Decision = "reject"
)

// RejectBelowScore is the score under which an offer that does not need review is rejected.
const RejectBelowScore = 40

// Decision maps the result fields onto the offer-creation workflow policy.
// The engine itself never rejects; this helper is the caller-side policy.
func (r *VerificationResult) Decision() Decision {
	switch {
	case r.IsVerified:
		return DecisionAutoPublish
	case r.NeedsManualReview:
		return DecisionManualReview
	case r.ConfidenceScore < RejectBelowScore:
		return DecisionReject
	default:
		return DecisionManualReview
	}
}

// Step returns the step with the given name, if present
func (r *VerificationResult) Step(name string) (VerificationStep, bool) {
	for _, s := range r.VerificationSteps {
		if s.Step == name {
			return s, true
		}
	}
	return VerificationStep{}, false
}
