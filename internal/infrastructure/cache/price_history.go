package cache

import (
	"context"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/golang/groupcache/lru"
	"github.com/rs/zerolog/log"

	"github.com/9endu/Dealicious/internal/domain"
)

const (
	// DefaultTTL is how long a price baseline stays valid
	DefaultTTL = 24 * time.Hour
	// DefaultMaxEntries bounds the number of baselines kept in memory
	DefaultMaxEntries = 50000
)

// Config holds price history cache settings
type Config struct {
	TTL        time.Duration
	MaxEntries int
	Clock      clock.Clock
}

// keyLock serializes read-compute-write sequences on one key
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// PriceHistoryCache is a thread-safe, size-bounded in-memory price baseline store.
// Entries expire lazily after the TTL; least recently used entries are evicted
// once MaxEntries is reached.
type PriceHistoryCache struct {
	mu      sync.Mutex
	entries *lru.Cache
	keys    map[string]time.Time // write time per key, read by the sweep without touching recency

	locksMu sync.Mutex
	locks   map[string]*keyLock

	ttl   time.Duration
	clock clock.Clock
}

// NewPriceHistoryCache creates an empty price history cache
func NewPriceHistoryCache(cfg Config) *PriceHistoryCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}

	c := &PriceHistoryCache{
		entries: lru.New(cfg.MaxEntries),
		keys:    make(map[string]time.Time),
		locks:   make(map[string]*keyLock),
		ttl:     cfg.TTL,
		clock:   cfg.Clock,
	}
	c.entries.OnEvicted = func(key lru.Key, _ interface{}) {
		delete(c.keys, key.(string))
		cacheEvictions.Inc()
	}
	return c
}

// Now returns the cache clock's current time
func (c *PriceHistoryCache) Now() time.Time {
	return c.clock.Now()
}

// Get retrieves a non-expired price baseline
func (c *PriceHistoryCache) Get(ctx context.Context, key string) (domain.PriceEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *PriceHistoryCache) getLocked(key string) (domain.PriceEntry, error) {
	value, ok := c.entries.Get(key)
	if !ok {
		cacheLookups.WithLabelValues("miss").Inc()
		return domain.PriceEntry{}, domain.ErrCacheMiss
	}

	entry := value.(domain.PriceEntry)
	if c.expired(entry) {
		cacheLookups.WithLabelValues("expired").Inc()
		return domain.PriceEntry{}, domain.ErrCacheMiss
	}

	cacheLookups.WithLabelValues("hit").Inc()
	return entry, nil
}

// Put stores a baseline, overwriting any previous value (last write wins)
func (c *PriceHistoryCache) Put(ctx context.Context, key string, entry domain.PriceEntry) error {
	unlock := c.lockKey(key)
	defer unlock()

	if entry.WrittenAt.IsZero() {
		entry.WrittenAt = c.clock.Now()
	}
	c.store(key, entry)
	return nil
}

// Compute runs fn against the current baseline and stores its result, holding the
// key lock for the whole sequence so concurrent verifications of the same product
// cannot lose updates. Nothing is written if fn fails or ctx is already done.
func (c *PriceHistoryCache) Compute(ctx context.Context, key string, fn domain.PriceUpdateFunc) (domain.PriceEntry, error) {
	unlock := c.lockKey(key)
	defer unlock()

	prev, err := c.Get(ctx, key)
	found := err == nil

	next, err := fn(prev, found)
	if err != nil {
		return domain.PriceEntry{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.PriceEntry{}, err
	}

	if next.WrittenAt.IsZero() {
		next.WrittenAt = c.clock.Now()
	}
	c.store(key, next)
	return next, nil
}

// EvictExpired removes every expired entry and returns how many were removed
func (c *PriceHistoryCache) EvictExpired(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, writtenAt := range c.keys {
		if c.clock.Since(writtenAt) >= c.ttl {
			c.entries.Remove(key)
			removed++
		}
	}
	cacheSize.Set(float64(c.entries.Len()))
	return removed
}

// StartSweeper removes expired entries every interval until ctx is done
func (c *PriceHistoryCache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if n := c.EvictExpired(ctx); n > 0 {
				log.Debug().Int("removed", n).Msg("Evicted expired price baselines")
			}
		}
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *PriceHistoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Clear removes all items from the cache
func (c *PriceHistoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Clear()
	c.keys = make(map[string]time.Time)
	cacheSize.Set(0)
}

func (c *PriceHistoryCache) store(key string, entry domain.PriceEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, entry)
	c.keys[key] = entry.WrittenAt
	cacheSize.Set(float64(c.entries.Len()))
}

func (c *PriceHistoryCache) expired(entry domain.PriceEntry) bool {
	return c.clock.Since(entry.WrittenAt) >= c.ttl
}

// lockKey acquires the per-key lock and returns its release func.
// Lock records are dropped once no goroutine holds or waits on them.
func (c *PriceHistoryCache) lockKey(key string) func() {
	c.locksMu.Lock()
	kl, ok := c.locks[key]
	if !ok {
		kl = &keyLock{}
		c.locks[key] = kl
	}
	kl.refs++
	c.locksMu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		c.locksMu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(c.locks, key)
		}
		c.locksMu.Unlock()
	}
}
