// Package rate caches the KRW→USD conversion factor derived from each spot
// venue's USDT/KRW ticker, memoising it for the TTL window so rapid
// re-queries within a burst see a stable number.
package rate

import (
	"errors"
	"sync"
	"time"

	"github.com/quotehedge/contango-scan/internal/quote"
)

// ErrMissingUSDKRW is returned when a spot venue's current quote snapshot
// carries no usable USDT/KRW price.
var ErrMissingUSDKRW = errors.New("rate: USDT/KRW quote missing or non-positive")

const defaultTTL = 30 * time.Second

type record struct {
	raw       float64
	memoised  float64
	timestamp time.Time
}

// Cache holds one memoised rate per spot venue. Single-writer per the
// evaluator's call path (see spec concurrency notes); a mutex is still used
// because the auto-trader and scan loop may call Get from different
// goroutines against the same cache instance.
type Cache struct {
	mu   sync.Mutex
	ttl  time.Duration
	recs map[string]record
}

// New returns a Cache using the default 30s TTL.
func New() *Cache {
	return NewWithTTL(defaultTTL)
}

// NewWithTTL returns a Cache with a caller-supplied TTL, for tests.
func NewWithTTL(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, recs: make(map[string]record)}
}

// Get implements the §4.D get_rate algorithm: read raw from rawUSDKRW; if a
// record exists with the identical raw value and the record is within TTL,
// return the memoised rate unchanged. Otherwise store and return the fresh
// reading. now is passed by the caller rather than read internally, keeping
// the cache free of wall-clock calls so it is perfectly deterministic.
func (c *Cache) Get(venue string, rawUSDKRW float64, now time.Time) (float64, error) {
	if rawUSDKRW <= 0 {
		return 0, ErrMissingUSDKRW
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.recs[venue]; ok {
		if rec.raw == rawUSDKRW && now.Sub(rec.timestamp) < c.ttl {
			return rec.memoised, nil
		}
	}

	c.recs[venue] = record{raw: rawUSDKRW, memoised: rawUSDKRW, timestamp: now}
	return rawUSDKRW, nil
}

// ExtractUSDKRW picks the USDT/KRW reading off a quote: ask preferred, mark
// as the fallback (the canonical Quote shape carries no separate "last"
// field, so a venue adapter that only ever sees trade prints for this pair
// is expected to land them in Mark).
func ExtractUSDKRW(q quote.Quote) (float64, bool) {
	if q.HasAsk && q.Ask > 0 {
		return q.Ask, true
	}
	if q.HasMark && q.Mark > 0 {
		return q.Mark, true
	}
	return 0, false
}
