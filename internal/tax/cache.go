package tax

import (
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/spice-planner/internal/model"
)

const (
	defaultCacheTTL    = 15 * time.Minute
	maxCleanupInterval = 5 * time.Minute
)

type cacheEntry struct {
	expiry    time.Time
	breakdown Breakdown
}

// CachedCalculator memoizes breakdowns from another Estimator. Results are
// pure functions of their inputs, so entries only expire to bound memory.
type CachedCalculator struct {
	next    Estimator
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// NewCachedCalculator wraps next with a TTL cache and starts its cleanup goroutine.
// Callers must Close it.
func NewCachedCalculator(next Estimator, ttl time.Duration) *CachedCalculator {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	c := &CachedCalculator{
		next:    next,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go c.cleanup()

	return c
}

func cacheKey(income model.Money, jurisdiction string) string {
	return fmt.Sprintf("%s|%s|%d", NormalizeJurisdiction(jurisdiction), income.Currency, income.Minor)
}

// Calculate returns a cached breakdown or computes and stores a new one.
// Errors are not cached.
func (c *CachedCalculator) Calculate(income model.Money, jurisdiction string) (Breakdown, error) {
	key := cacheKey(income, jurisdiction)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiry) {
		return entry.breakdown, nil
	}

	b, err := c.next.Calculate(income, jurisdiction)
	if err != nil {
		return Breakdown{}, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{breakdown: b, expiry: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return b, nil
}

func (c *CachedCalculator) cleanup() {
	interval := c.ttl
	if interval > maxCleanupInterval {
		interval = maxCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *CachedCalculator) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of cached entries.
func (c *CachedCalculator) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every cached entry.
func (c *CachedCalculator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *CachedCalculator) Close() {
	c.once.Do(func() { close(c.stopCh) })
}
