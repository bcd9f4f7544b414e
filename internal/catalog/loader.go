package catalog

import (
	"context"
	"sync"

	"github.com/quotehedge/contango-scan/internal/breaker"
)

// VenueLoad is one venue's catalog-load request for Loader.LoadAll.
type VenueLoad struct {
	Venue   string
	Breaker *breaker.Breaker
	Fetcher Fetcher
}

// Result is one venue's load outcome. Err is per-venue, never aborts the
// other loads in the same batch (spec §4.C: a REST failure is fatal to
// that venue, not the process).
type Result struct {
	Venue       string
	Instruments []Instrument
	Err         error
}

// Loader fans venue catalog loads out across a bounded worker pool instead
// of a generic executor package — the concurrency model spec §5 describes
// as "a thread pool for blocking REST calls" maps onto a goroutine-per-venue
// loop gated by a semaphore channel, the idiomatic Go equivalent.
type Loader struct {
	concurrency int
}

// NewLoader sizes the pool at max(1, min(8, venueCount)).
func NewLoader(venueCount int) *Loader {
	n := venueCount
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return &Loader{concurrency: n}
}

// LoadAll runs every load concurrently, bounded by the pool size, and
// returns one Result per input load in the same order.
func (l *Loader) LoadAll(ctx context.Context, loads []VenueLoad) []Result {
	sem := make(chan struct{}, l.concurrency)
	results := make([]Result, len(loads))

	var wg sync.WaitGroup
	for i, ld := range loads {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ld VenueLoad) {
			defer wg.Done()
			defer func() { <-sem }()
			instruments, err := Load(ctx, ld.Venue, ld.Breaker, ld.Fetcher)
			results[i] = Result{Venue: ld.Venue, Instruments: instruments, Err: err}
		}(i, ld)
	}
	wg.Wait()

	return results
}
