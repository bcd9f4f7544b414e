// Package metrics registers the Prometheus series this scanner exposes:
// WebSocket reconnect counts, quote staleness, opportunity/hedge/trade
// activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric the scanner publishes.
type Registry struct {
	WSReconnects    *prometheus.CounterVec
	QuoteAgeSeconds *prometheus.GaugeVec
	Opportunities   prometheus.Counter
	HedgeNotional   *prometheus.GaugeVec
	TradeEvents     *prometheus.CounterVec
}

// New builds every metric without registering any of them; MustRegister
// registers them against a caller-supplied registry (not the global
// default), so tests can construct independent registries without
// collector-already-registered panics.
func New() *Registry {
	r := &Registry{
		WSReconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contango_ws_reconnects_total",
				Help: "Total WebSocket connections subscribed per venue, including the first.",
			},
			[]string{"venue"},
		),
		QuoteAgeSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "contango_quote_age_seconds",
				Help: "Seconds since the last quote update, sampled per venue/instrument.",
			},
			[]string{"venue", "instrument"},
		),
		Opportunities: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "contango_opportunities_total",
				Help: "Total opportunity rows emitted by the evaluator across all ticks.",
			},
		),
		HedgeNotional: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "contango_hedge_notional_usd",
				Help: "Live hedge position notional in USD, per (spot, futures, base) triple.",
			},
			[]string{"spot", "futures", "base"},
		),
		TradeEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contango_trade_events_total",
				Help: "Total trade-log events written, by event type.",
			},
			[]string{"event"},
		),
	}
	return r
}

// MustRegister registers every metric against reg, panicking on duplicate
// registration (a programmer error, not a runtime condition).
func (r *Registry) MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		r.WSReconnects,
		r.QuoteAgeSeconds,
		r.Opportunities,
		r.HedgeNotional,
		r.TradeEvents,
	)
}

// Handler returns an http.Handler serving reg in the Prometheus exposition
// format, for mounting at GET /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
