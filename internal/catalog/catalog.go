// Package catalog performs the one-shot, per-venue REST call at process
// start that resolves which instruments are tradable and maps each
// venue-specific id to its canonical base symbol.
package catalog

import (
	"context"
	"strings"

	"github.com/quotehedge/contango-scan/internal/breaker"
)

// Instrument is one tradable pair: its venue-local identifier alongside the
// canonical base the rest of the system joins on.
type Instrument struct {
	VenueCode string // e.g. "KRW-BTC", "BTC_USDT", "BTC-USDT-SWAP", "BTC"
	Base      string // canonical, e.g. "BTC"
	Symbol    string // display symbol, defaults to Base if the venue has none
}

// Fetcher performs the venue-specific REST call returning raw tradable
// instrument codes (or code/base pairs, venue-dependent). Concrete venue
// packages supply one; this package only owns the breaker/filter wiring
// around it.
type Fetcher interface {
	FetchInstruments(ctx context.Context) ([]Instrument, error)
}

// Load runs fetcher through a circuit breaker and returns the filtered,
// normalized instrument list for one venue. Per spec §4.C, any REST
// failure is a fatal precondition for *this venue* (not the process): the
// caller is expected to exclude the venue from the run on error. A venue
// that resolves to zero instruments is likewise excluded, but that is not
// itself an error — Load returns an empty, nil-error slice.
func Load(ctx context.Context, venueName string, b *breaker.Breaker, fetcher Fetcher) ([]Instrument, error) {
	result, err := b.Execute(func() (any, error) {
		return fetcher.FetchInstruments(ctx)
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.([]Instrument)
	out := make([]Instrument, 0, len(raw))
	for _, inst := range raw {
		base := CanonicalBase(inst.Base)
		if base == "" {
			continue
		}
		inst.Base = base
		if inst.Symbol == "" {
			inst.Symbol = base
		}
		out = append(out, inst)
	}
	return out, nil
}

// CanonicalBase normalizes a raw base ticker to the uppercase, hyphen-
// stripped join key described in spec §3.
func CanonicalBase(raw string) string {
	base := strings.ToUpper(strings.TrimSpace(raw))
	base = strings.ReplaceAll(base, "-", "")
	return base
}
