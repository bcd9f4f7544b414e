// Package ratelimit provides a per-venue token-bucket rate limiter for REST
// calls, plus the fixed inter-chunk subscription pacing every WebSocket
// client needs. The catalog fetchers do not route their calls through the
// Limiter; only the chunk pacing is used by the venue clients.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ChunkDelay is the fixed pause between subscription chunks during a
// venue's initial subscribe burst (spec §4.A, §5 rate-limit discipline).
const ChunkDelay = 200 * time.Millisecond

// Limiter is a token-bucket rate limiter keyed per venue, so a slow or
// throttled venue's REST calls never borrow capacity from another venue's.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// New creates a limiter with the given requests-per-second and burst
// capacity, applied independently per venue.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *Limiter) getLimiter(venue string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[venue]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, exists := l.limiters[venue]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.limiters[venue] = limiter
	return limiter
}

// Allow reports whether a request for venue may proceed right now.
func (l *Limiter) Allow(venue string) bool {
	return l.getLimiter(venue).Allow()
}

// Wait blocks until a request for venue is allowed, or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context, venue string) error {
	return l.getLimiter(venue).Wait(ctx)
}

// SleepBetweenChunks pauses for ChunkDelay, honoring ctx cancellation — the
// fixed-pace equivalent of the original's time.sleep(0.2) between
// subscription chunks.
func SleepBetweenChunks(ctx context.Context) error {
	t := time.NewTimer(ChunkDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
