package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/9endu/Dealicious/internal/domain"
)

// MockRecognizer is a mock implementation of domain.TextRecognizer
type MockRecognizer struct {
	text  string
	err   error
	panic bool
	calls atomic.Int32
}

func NewMockRecognizer(text string, err error) *MockRecognizer {
	return &MockRecognizer{text: text, err: err}
}

func (m *MockRecognizer) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	m.calls.Add(1)
	if m.panic {
		panic("recognizer exploded")
	}
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// MockPriceHistory is a mock implementation of domain.PriceHistoryRepository
type MockPriceHistory struct {
	mu         sync.Mutex
	data       map[string]domain.PriceEntry
	computeErr error
	now        time.Time
	computes   int
}

func NewMockPriceHistory() *MockPriceHistory {
	return &MockPriceHistory{
		data: make(map[string]domain.PriceEntry),
		now:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *MockPriceHistory) Get(ctx context.Context, key string) (domain.PriceEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.data[key]; ok {
		return e, nil
	}
	return domain.PriceEntry{}, domain.ErrCacheMiss
}

func (m *MockPriceHistory) Put(ctx context.Context, key string, entry domain.PriceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry
	return nil
}

func (m *MockPriceHistory) Compute(ctx context.Context, key string, fn domain.PriceUpdateFunc) (domain.PriceEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.computes++
	if m.computeErr != nil {
		return domain.PriceEntry{}, m.computeErr
	}
	prev, found := m.data[key]
	next, err := fn(prev, found)
	if err != nil {
		return domain.PriceEntry{}, err
	}
	m.data[key] = next
	return next, nil
}

func (m *MockPriceHistory) EvictExpired(ctx context.Context) int { return 0 }

func (m *MockPriceHistory) Now() time.Time { return m.now }

func (m *MockPriceHistory) entry(key string) (domain.PriceEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	return e, ok
}

// panicClassifier panics on every call
type panicClassifier struct{}

func (panicClassifier) Categorize(string) domain.Category { panic("classifier exploded") }

// fixedClassifier always returns the same category
type fixedClassifier domain.Category

func (c fixedClassifier) Categorize(string) domain.Category { return domain.Category(c) }
