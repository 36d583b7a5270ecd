package market

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type cacheEntry struct {
	expiry time.Time
	price  decimal.Decimal
}

// quoteCache keeps recent stock prices so repeated dashboards stay inside
// the provider's request quota.
type quoteCache struct {
	now     func() time.Time
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &quoteCache{
		now:     time.Now,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func cacheKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (c *quoteCache) get(symbol string) (decimal.Decimal, bool) {
	if c.ttl < 0 {
		return decimal.Decimal{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(symbol)]
	if !ok || c.now().After(entry.expiry) {
		return decimal.Decimal{}, false
	}
	return entry.price, true
}

func (c *quoteCache) set(symbol string, price decimal.Decimal) {
	if c.ttl < 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(symbol)] = cacheEntry{price: price, expiry: c.now().Add(c.ttl)}
}

// prune drops expired entries.
func (c *quoteCache) prune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

func (c *quoteCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
