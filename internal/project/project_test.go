package project

import (
	"testing"

	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUSDPrices_ConvertsAskByRate(t *testing.T) {
	snap := map[string]quote.Quote{
		"BTC/KRW": {HasAsk: true, Ask: 140_000_000},
	}
	out := USDPrices(snap, 1400)
	assert.InDelta(t, 100_000.0, out["BTC"], 1e-9)
}

func TestUSDPrices_FallsBackToMarkWithoutAsk(t *testing.T) {
	snap := map[string]quote.Quote{
		"ETH/KRW": {HasMark: true, Mark: 7_000_000},
	}
	out := USDPrices(snap, 1400)
	assert.InDelta(t, 5_000.0, out["ETH"], 1e-9)
}

func TestUSDPrices_OmitsNonKRWInstruments(t *testing.T) {
	snap := map[string]quote.Quote{
		"BTC_USDT": {HasAsk: true, Ask: 65000},
	}
	out := USDPrices(snap, 1400)
	assert.Empty(t, out)
}

func TestUSDPrices_OmitsZeroRate(t *testing.T) {
	snap := map[string]quote.Quote{
		"BTC/KRW": {HasAsk: true, Ask: 140_000_000},
	}
	out := USDPrices(snap, 0)
	assert.Empty(t, out)
}

func TestExtractUSDKRWFromSnapshot(t *testing.T) {
	snap := map[string]quote.Quote{
		"USDT/KRW": {HasAsk: true, Ask: 1400},
	}
	v, ok := ExtractUSDKRWFromSnapshot(snap, "USDT/KRW")
	require.True(t, ok)
	assert.Equal(t, 1400.0, v)

	_, ok = ExtractUSDKRWFromSnapshot(snap, "missing")
	assert.False(t, ok)
}
