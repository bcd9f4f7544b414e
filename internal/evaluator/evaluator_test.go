package evaluator

import (
	"testing"
	"time"

	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spotVenue(base string, usd float64, feePct float64) SpotVenue {
	return SpotVenue{Name: "upbit", FeePct: feePct, USDBase: map[string]float64{base: usd}}
}

func futuresVenue(base string, bid, funding float64, feePct float64) FuturesVenue {
	return FuturesVenue{
		Name:   "okx",
		FeePct: feePct,
		Snapshot: map[string]quote.Quote{
			base: {HasBid: true, Bid: bid, HasFunding: true, FundingRate: funding},
		},
	}
}

func TestEvaluate_SpreadFilterRejectsBelowThreshold(t *testing.T) {
	spots := []SpotVenue{spotVenue("BTC", 100_000, 0)}
	futures := []FuturesVenue{futuresVenue("BTC", 100_500, 0, 0)}

	rows := Evaluate(spots, futures, Params{MinSpreadPct: 0.6}, time.Now())
	assert.Empty(t, rows)
}

func TestEvaluate_SpreadFilterAcceptsAboveThreshold(t *testing.T) {
	spots := []SpotVenue{spotVenue("BTC", 100_000, 0)}
	futures := []FuturesVenue{futuresVenue("BTC", 100_500, 0, 0)}

	rows := Evaluate(spots, futures, Params{MinSpreadPct: 0.4}, time.Now())
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.5, rows[0].Pct, 1e-9)
}

func TestEvaluate_FeeNetting(t *testing.T) {
	spots := []SpotVenue{spotVenue("BTC", 100_000, 0.0005)}
	// raw pct = 1.200 => futures bid = 101200
	futures := []FuturesVenue{futuresVenue("BTC", 101_200, 0, 0.00035)}

	rows := Evaluate(spots, futures, Params{}, time.Now())
	require.Len(t, rows, 1)
	assert.InDelta(t, 1.200, rows[0].Pct, 1e-6)
	assert.InDelta(t, 0.170, rows[0].FeesPct, 1e-9)
	assert.InDelta(t, 1.030, rows[0].NetPct, 1e-6)
}

func TestEvaluate_SkipsMissingFunding(t *testing.T) {
	spots := []SpotVenue{spotVenue("BTC", 100_000, 0)}
	futures := []FuturesVenue{{
		Name: "okx",
		Snapshot: map[string]quote.Quote{
			"BTC": {HasBid: true, Bid: 100_500},
		},
	}}
	rows := Evaluate(spots, futures, Params{}, time.Now())
	assert.Empty(t, rows)
}

func TestEvaluate_RequireNonnegativeFundingGate(t *testing.T) {
	spots := []SpotVenue{spotVenue("BTC", 100_000, 0)}
	futures := []FuturesVenue{futuresVenue("BTC", 102_000, -0.0001, 0)}

	rows := Evaluate(spots, futures, Params{RequireNonnegativeFunding: true}, time.Now())
	assert.Empty(t, rows)

	futures[0].Snapshot["BTC"] = quote.Quote{HasBid: true, Bid: 102_000, HasFunding: true, FundingRate: 0}
	rows = Evaluate(spots, futures, Params{RequireNonnegativeFunding: true}, time.Now())
	require.Len(t, rows, 1)
}

func TestEvaluate_RanksDescendingByRawPct(t *testing.T) {
	spots := []SpotVenue{{
		Name: "upbit",
		USDBase: map[string]float64{
			"BTC": 100_000,
			"ETH": 2_000,
		},
	}}
	futures := []FuturesVenue{{
		Name: "okx",
		Snapshot: map[string]quote.Quote{
			"BTC": {HasBid: true, Bid: 100_300, HasFunding: true},
			"ETH": {HasBid: true, Bid: 2_100, HasFunding: true},
		},
	}}

	rows := Evaluate(spots, futures, Params{}, time.Now())
	require.Len(t, rows, 2)
	assert.Equal(t, "ETH", rows[0].Base)
	assert.Equal(t, "BTC", rows[1].Base)
}

func TestEvaluate_MissingFuturesSnapshotYieldsNoRowsNotAbort(t *testing.T) {
	spots := []SpotVenue{spotVenue("BTC", 100_000, 0)}
	futures := []FuturesVenue{{Name: "gate", Snapshot: map[string]quote.Quote{}}}

	rows := Evaluate(spots, futures, Params{}, time.Now())
	assert.Empty(t, rows)
}
