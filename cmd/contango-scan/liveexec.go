package main

import (
	"context"
	"fmt"

	"github.com/quotehedge/contango-scan/internal/executor"
	"github.com/quotehedge/contango-scan/internal/metrics"
	"github.com/quotehedge/contango-scan/internal/tradelog"
)

// stubLiveDialer satisfies executor.LiveDialer for every compiled-in
// venue. Real order placement needs a signed, venue-specific REST call
// (OKX/Gate's HMAC request signing, Hyperliquid's EIP-712 order payload,
// Upbit/Bithumb's JWT-signed private API) that this module does not
// implement; --live still enforces the credential precondition via
// executor.NewLive, but an actual order attempt fails closed here rather
// than silently no-opping like DryRun.
type stubLiveDialer struct {
	venue string
}

func (d stubLiveDialer) Place(_ context.Context, _ executor.Credentials, symbol string, side executor.Side, qty float64) (string, error) {
	return "", fmt.Errorf("executor: live order placement not implemented for venue %s (%s %s %.8f)", d.venue, side, symbol, qty)
}

// liveDialers builds the full stub dialer set for every id in venues.
func liveDialers(venueIDs []string) map[string]executor.LiveDialer {
	out := make(map[string]executor.LiveDialer, len(venueIDs))
	for _, id := range venueIDs {
		out[id] = stubLiveDialer{venue: id}
	}
	return out
}

// metricsSink wraps an EventSink to additionally increment the
// contango_trade_events_total counter per event type, keeping that metric
// bookkeeping out of tradelog itself (tradelog has no metrics dependency).
type metricsSink struct {
	inner tradelog.EventSink
	reg   *metrics.Registry
}

func (s metricsSink) Publish(ctx context.Context, event tradelog.Event) error {
	s.reg.TradeEvents.WithLabelValues(event.Event).Inc()
	return s.inner.Publish(ctx, event)
}
