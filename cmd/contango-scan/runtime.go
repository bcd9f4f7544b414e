package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotehedge/contango-scan/internal/breaker"
	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/quotehedge/contango-scan/internal/config"
	"github.com/quotehedge/contango-scan/internal/evaluator"
	"github.com/quotehedge/contango-scan/internal/httpapi"
	"github.com/quotehedge/contango-scan/internal/metrics"
	"github.com/quotehedge/contango-scan/internal/project"
	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/quotehedge/contango-scan/internal/rate"
	"github.com/quotehedge/contango-scan/internal/venue"
	"github.com/quotehedge/contango-scan/internal/venue/bithumb"
	"github.com/quotehedge/contango-scan/internal/venue/gate"
	"github.com/quotehedge/contango-scan/internal/venue/hyperliquid"
	"github.com/quotehedge/contango-scan/internal/venue/okx"
	"github.com/quotehedge/contango-scan/internal/venue/upbit"
	"github.com/quotehedge/contango-scan/internal/venues"
)

// usdtKrwKey is the cache key every KRW spot venue's USDT/KRW ticker lands
// under — the sole KRW->USD bridge a spot venue must carry to contribute
// any opportunity rows.
const usdtKrwKey = "USDT/KRW"

// streamProtocol is the seam buildRunning needs from a venue package: the
// venue.Protocol methods the generic client drives, plus the raw
// subscription code list it was built from.
type streamProtocol interface {
	venue.Protocol
	VenueCodes() []string
}

// venueFetcher is one venue's catalog REST source plus the constructor
// that turns resolved instruments into its wire protocol.
type venueFetcher struct {
	id      string
	venue   venues.Venue
	fetcher catalog.Fetcher
	build   func([]catalog.Instrument) streamProtocol
}

// applyVenueOverride layers a config.yaml venues.overrides[id] entry (when
// present) onto the compiled-in venue constants. A zero override field
// leaves the compiled-in value untouched, so a partial override (just
// ws_url, say) never silently zeroes the taker fee. A chunk_size override
// changes Venue.ChunkSize only; each venue protocol chunks its
// subscriptions by its own package ChunkSize constant.
func applyVenueOverride(v venues.Venue, cfg config.VenuesConfig) venues.Venue {
	o, ok := cfg.Overrides[v.ID]
	if !ok {
		return v
	}
	if o.TakerFee != 0 {
		v.TakerFee = o.TakerFee
	}
	if o.WSURL != "" {
		v.WSURL = o.WSURL
	}
	if o.ChunkSize != 0 {
		v.ChunkSize = o.ChunkSize
	}
	return v
}

// spotFetchersFor resolves the two Korean spot venues, honoring the
// --no-upbit/--no-bithumb disable flags and any config.yaml venue overrides.
func spotFetchersFor(noUpbit, noBithumb bool, cfg config.VenuesConfig) []venueFetcher {
	var out []venueFetcher
	if !noUpbit {
		out = append(out, venueFetcher{
			id: "upbit", venue: applyVenueOverride(venues.Upbit, cfg), fetcher: upbit.NewFetcher(),
			build: func(inst []catalog.Instrument) streamProtocol { return upbit.New(inst) },
		})
	}
	if !noBithumb {
		out = append(out, venueFetcher{
			id: "bithumb", venue: applyVenueOverride(venues.Bithumb, cfg), fetcher: bithumb.NewFetcher(),
			build: func(inst []catalog.Instrument) streamProtocol { return bithumb.New(inst) },
		})
	}
	return out
}

// futuresFetchersFor resolves the --futures comma list (okx, gate, hyper)
// into venueFetchers, applying any config.yaml venue overrides and erroring
// on an unrecognized token.
func futuresFetchersFor(csv string, cfg config.VenuesConfig) ([]venueFetcher, error) {
	var out []venueFetcher
	for _, raw := range strings.Split(csv, ",") {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		v, ok := venues.FuturesByID(id)
		if !ok {
			return nil, fmt.Errorf("contango-scan: unknown futures venue %q", id)
		}
		v = applyVenueOverride(v, cfg)
		switch v.ID {
		case "okx":
			out = append(out, venueFetcher{id: "okx", venue: v, fetcher: okx.NewFetcher(),
				build: func(inst []catalog.Instrument) streamProtocol { return okx.New(inst) }})
		case "gate":
			out = append(out, venueFetcher{id: "gate", venue: v, fetcher: gate.NewFetcher(),
				build: func(inst []catalog.Instrument) streamProtocol { return gate.New(inst) }})
		case "hyperliquid":
			out = append(out, venueFetcher{id: "hyperliquid", venue: v, fetcher: hyperliquid.NewFetcher(),
				build: func(inst []catalog.Instrument) streamProtocol { return hyperliquid.New(inst) }})
		}
	}
	return out, nil
}

// runningVenue is one live stream: its compiled-in venue constants, quote
// cache, and (futures only) base->display-symbol map.
type runningVenue struct {
	id           string
	venue        venues.Venue
	cache        *quote.Cache
	symbolByBase map[string]string
}

// startRunning resolves each fetcher's catalog through the bounded loader,
// excludes venues whose catalog call failed or resolved to zero
// instruments (spec §4.C: a venue failure is not a process failure), and
// launches one venue.Client goroutine per surviving venue.
func startRunning(ctx context.Context, log zerolog.Logger, reg *metrics.Registry, fetchers []venueFetcher) []runningVenue {
	loader := catalog.NewLoader(len(fetchers))
	loads := make([]catalog.VenueLoad, len(fetchers))
	for i, vf := range fetchers {
		loads[i] = catalog.VenueLoad{Venue: vf.id, Breaker: breaker.New(vf.id + "-catalog"), Fetcher: vf.fetcher}
	}
	results := loader.LoadAll(ctx, loads)

	var out []runningVenue
	for i, res := range results {
		vf := fetchers[i]
		if res.Err != nil {
			log.Error().Err(res.Err).Str("venue", vf.id).Msg("catalog load failed, excluding venue from this run")
			continue
		}
		if len(res.Instruments) == 0 {
			log.Warn().Str("venue", vf.id).Msg("catalog resolved zero instruments, excluding venue from this run")
			continue
		}

		proto := vf.build(res.Instruments)
		cache := quote.New()
		client := venue.New(proto, vf.venue.WSURL, proto.VenueCodes(), cache, log)
		client.OnReconnect(func() { reg.WSReconnects.WithLabelValues(vf.id).Inc() })
		go client.Run(ctx)

		symbolByBase := make(map[string]string, len(res.Instruments))
		for _, inst := range res.Instruments {
			symbolByBase[inst.Base] = inst.Symbol
		}
		out = append(out, runningVenue{id: vf.id, venue: vf.venue, cache: cache, symbolByBase: symbolByBase})
	}
	return out
}

// spotOpportunityInputs projects every running spot venue's snapshot to USD,
// skipping venues that have not yet observed USDT/KRW or whose rate is
// unusable this tick.
func spotOpportunityInputs(running []runningVenue, rateCache *rate.Cache, log zerolog.Logger, now time.Time) []evaluator.SpotVenue {
	out := make([]evaluator.SpotVenue, 0, len(running))
	for _, rv := range running {
		snapshot := rv.cache.Snapshot()
		raw, ok := project.ExtractUSDKRWFromSnapshot(snapshot, usdtKrwKey)
		if !ok {
			continue
		}
		usdRate, err := rateCache.Get(rv.id, raw, now)
		if err != nil {
			log.Warn().Err(err).Str("venue", rv.id).Msg("usd rate unavailable this tick")
			continue
		}
		out = append(out, evaluator.SpotVenue{
			Name:    rv.id,
			FeePct:  rv.venue.TakerFee,
			USDBase: project.USDPrices(snapshot, usdRate),
		})
	}
	return out
}

func futuresOpportunityInputs(running []runningVenue) []evaluator.FuturesVenue {
	out := make([]evaluator.FuturesVenue, 0, len(running))
	for _, rv := range running {
		out = append(out, evaluator.FuturesVenue{
			Name:     rv.id,
			FeePct:   rv.venue.TakerFee,
			Snapshot: rv.cache.Snapshot(),
			Symbol:   rv.symbolByBase,
		})
	}
	return out
}

// sampleQuoteAge publishes the per-instrument staleness gauge (spec §4.N)
// once per evaluation tick.
func sampleQuoteAge(reg *metrics.Registry, running []runningVenue, now time.Time) {
	for _, rv := range running {
		for instrument, q := range rv.cache.Snapshot() {
			age := 0.0
			if !q.Timestamp.IsZero() {
				age = now.Sub(q.Timestamp).Seconds()
			}
			reg.QuoteAgeSeconds.WithLabelValues(rv.id, instrument).Set(age)
		}
	}
}

// venueHealth renders /health's per-venue age summary.
func venueHealth(running []runningVenue, now time.Time) []httpapi.VenueHealth {
	out := make([]httpapi.VenueHealth, 0, len(running))
	for _, rv := range running {
		var latest time.Time
		snap := rv.cache.Snapshot()
		for _, q := range snap {
			if q.Timestamp.After(latest) {
				latest = q.Timestamp
			}
		}
		age := 0.0
		if !latest.IsZero() {
			age = now.Sub(latest).Seconds()
		}
		out = append(out, httpapi.VenueHealth{
			Venue:        rv.id,
			LastUpdate:   latest,
			AgeSeconds:   age,
			InstrumentCt: len(snap),
		})
	}
	return out
}

// opportunityStore is the thread-safe handoff between the evaluation loop
// and the optional HTTP monitor server's /opportunities handler.
type opportunityStore struct {
	mu   sync.RWMutex
	rows []evaluator.Opportunity
}

func (s *opportunityStore) Set(rows []evaluator.Opportunity) {
	s.mu.Lock()
	s.rows = rows
	s.mu.Unlock()
}

func (s *opportunityStore) Get() []evaluator.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// printOpportunities renders the top n rows as a plain console table.
func printOpportunities(rows []evaluator.Opportunity, n int) {
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	if len(rows) == 0 {
		fmt.Println("no opportunities above threshold")
		return
	}
	fmt.Printf("%-6s %-10s %-12s %8s %8s %8s\n", "BASE", "SPOT", "FUTURES", "PCT", "NET%", "FUND%")
	for _, r := range rows {
		fmt.Printf("%-6s %-10s %-12s %8.3f %8.3f %8.4f\n",
			r.Base, r.SpotVenue, r.FuturesVenue, r.Pct, r.NetPct, r.FundingRate*100)
	}
}
