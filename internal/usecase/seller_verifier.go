package usecase

import (
	"fmt"
	"strings"

	"github.com/9endu/Dealicious/internal/domain"
)

// Seller confidences by tier
const (
	trustedSellerConfidence  = 90.0
	moderateSellerConfidence = 70.0
	unknownSellerConfidence  = 40.0
	missingSellerConfidence  = 20.0
)

// SellerVerifier scores the claimed platform against the trust tiers
type SellerVerifier struct {
	trust *TrustTable
}

// NewSellerVerifier creates a seller verifier
func NewSellerVerifier(trust *TrustTable) *SellerVerifier {
	if trust == nil {
		trust = DefaultTrustTable()
	}
	return &SellerVerifier{trust: trust}
}

// Verify is a pure table lookup
func (v *SellerVerifier) Verify(platform string) domain.VerificationStep {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		return newStep(domain.StepSeller, sellerThresholds, missingSellerConfidence, "No platform specified")
	}

	switch v.trust.Tier(platform) {
	case TierTrusted:
		return newStep(domain.StepSeller, sellerThresholds, trustedSellerConfidence,
			fmt.Sprintf("%s is a trusted platform", platform))
	case TierModerate:
		return newStep(domain.StepSeller, sellerThresholds, moderateSellerConfidence,
			fmt.Sprintf("%s is a moderately trusted platform", platform))
	default:
		return newStep(domain.StepSeller, sellerThresholds, unknownSellerConfidence,
			fmt.Sprintf("%s is not in our trusted list", platform))
	}
}
