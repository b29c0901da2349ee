package domain

import (
	"context"
	"time"
)

// PriceEntry is a cached price baseline
type PriceEntry struct {
	Price     float64   `json:"price"`
	WrittenAt time.Time `json:"writtenAt"`
}

// PriceUpdateFunc receives the current baseline (found=false when absent or expired)
// and returns the entry to store. Returning an error leaves the cache untouched.
type PriceUpdateFunc func(prev PriceEntry, found bool) (PriceEntry, error)

// PriceHistoryRepository defines the price baseline cache shared by all verifications
type PriceHistoryRepository interface {
	Get(ctx context.Context, key string) (PriceEntry, error)
	Put(ctx context.Context, key string, entry PriceEntry) error
	// Compute serializes read-compute-write per key.
	Compute(ctx context.Context, key string, fn PriceUpdateFunc) (PriceEntry, error)
	EvictExpired(ctx context.Context) int
	// Now is the clock the repository stamps entries with
	Now() time.Time
}

// TextRecognizer extracts text from an image (OCR)
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte, language string) (string, error)
}

// Classifier maps free text onto a product category
type Classifier interface {
	Categorize(text string) Category
}
