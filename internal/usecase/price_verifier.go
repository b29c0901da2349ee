package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/9endu/Dealicious/internal/domain"
)

// Price bands and adjustments
const (
	maxReasonablePrice = 1_000_000.0
	minReasonablePrice = 50.0

	invalidPriceConfidence    = 0.0
	highPriceConfidence       = 30.0
	lowPriceConfidence        = 40.0
	reasonablePriceConfidence = 70.0
	consistentPriceBonus      = 20.0
	priceChangePenalty        = 10.0
	consistentPriceMaxDiffPct = 30.0
)

// PriceVerifier range-checks the extracted price and compares it with the shared
// price history.
type PriceVerifier struct {
	history domain.PriceHistoryRepository
}

// NewPriceVerifier creates a price verifier over the shared history
func NewPriceVerifier(history domain.PriceHistoryRepository) *PriceVerifier {
	return &PriceVerifier{history: history}
}

// PriceKey is the content hash a (title, platform) pair is cached under
func PriceKey(title, platform string) string {
	sum := sha256.Sum256([]byte(title + platform))
	return hex.EncodeToString(sum[:])
}

// Verify scores the price. For a reasonable price, the comparison with the cached
// baseline and the write of the new baseline happen atomically per key; nothing is
// written if ctx is cancelled first.
func (v *PriceVerifier) Verify(ctx context.Context, details domain.ProductDetails) (domain.VerificationStep, error) {
	price := details.Price

	switch {
	case price <= 0 || math.IsNaN(price):
		return newStep(domain.StepPrice, priceThresholds, invalidPriceConfidence, "Invalid price (zero or negative)"), nil
	case price > maxReasonablePrice:
		return newStep(domain.StepPrice, priceThresholds, highPriceConfidence, "Price seems unusually high"), nil
	case price < minReasonablePrice:
		return newStep(domain.StepPrice, priceThresholds, lowPriceConfidence, "Price seems unusually low"), nil
	}

	confidence := reasonablePriceConfidence
	detail := "Price appears reasonable"

	if v.history == nil {
		return newStep(domain.StepPrice, priceThresholds, confidence, detail), nil
	}

	key := PriceKey(details.Title, details.Platform)
	_, err := v.history.Compute(ctx, key, func(prev domain.PriceEntry, found bool) (domain.PriceEntry, error) {
		if found && prev.Price > 0 {
			diff := math.Abs(price-prev.Price) / prev.Price * 100
			if diff < consistentPriceMaxDiffPct {
				confidence += consistentPriceBonus
				detail += fmt.Sprintf(" | Consistent with previous price (%.1f%% difference)", diff)
			} else {
				confidence -= priceChangePenalty
				detail += fmt.Sprintf(" | Significant price change (%.1f%% difference)", diff)
			}
		}
		return domain.PriceEntry{Price: price, WrittenAt: v.history.Now()}, nil
	})
	if err != nil {
		return domain.VerificationStep{}, fmt.Errorf("price history update: %w", err)
	}

	return newStep(domain.StepPrice, priceThresholds, confidence, detail), nil
}
