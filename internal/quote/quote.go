// Package quote holds the normalized top-of-book shape every venue client
// writes into and the concurrency-safe cache that backs it.
package quote

import "time"

// Quote is the duck-typed wire shape normalized across venues. Every field
// is optional because each feed updates a different subset on each frame —
// a bbo message only ever touches Bid/Ask, a funding message only Funding.
type Quote struct {
	Bid          float64
	Ask          float64
	Mark         float64
	FundingRate  float64
	HasBid       bool
	HasAsk       bool
	HasMark      bool
	HasFunding   bool
	Timestamp    time.Time
}

// Visible reports whether the quote carries enough data for the evaluator
// to use it — a quote with neither bid nor ask is invisible.
func (q Quote) Visible() bool {
	return q.HasBid || q.HasAsk
}

// merge applies a partial update onto q, leaving fields the update does not
// carry untouched. This is the field-merge semantics required by spec §3/§4.A:
// cache writes are never whole-record replacements.
func (q Quote) merge(d Delta) Quote {
	if d.HasBid {
		q.Bid, q.HasBid = d.Bid, true
	}
	if d.HasAsk {
		q.Ask, q.HasAsk = d.Ask, true
	}
	if d.HasMark {
		q.Mark, q.HasMark = d.Mark, true
	}
	if d.HasFunding {
		q.FundingRate, q.HasFunding = d.FundingRate, true
	}
	q.Timestamp = d.Timestamp
	return q
}

// Delta is a partial update produced by a venue client's frame dispatcher.
// Only the Has* fields set true are applied by Cache.Update.
type Delta struct {
	Bid         float64
	Ask         float64
	Mark        float64
	FundingRate float64
	HasBid      bool
	HasAsk      bool
	HasMark     bool
	HasFunding  bool
	Timestamp   time.Time
}
