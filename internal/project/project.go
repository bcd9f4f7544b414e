// Package project converts a KRW spot venue's quote snapshot into a
// canonical-base-keyed USD price map using the current USD-rate reading.
package project

import (
	"strings"

	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/quotehedge/contango-scan/internal/rate"
)

// krwSuffix is the instrument-key convention spot venue adapters use to mark
// a KRW-quoted pair (e.g. "BTC/KRW", "KRW-BTC" normalized to "BTC/KRW" by the
// venue client before it ever reaches the cache).
const krwSuffix = "/KRW"

// USDPrices projects a KRW spot venue's instrument snapshot into
// base → usd_price, dividing each KRW ask (falling back to mark) by usdRate.
// Entries with no usable price, or whose key is not KRW-quoted, are omitted.
func USDPrices(snapshot map[string]quote.Quote, usdRate float64) map[string]float64 {
	out := make(map[string]float64, len(snapshot))
	if usdRate <= 0 {
		return out
	}
	for key, q := range snapshot {
		base, ok := canonicalBase(key)
		if !ok {
			continue
		}
		krw, ok := askOrMark(q)
		if !ok || krw <= 0 {
			continue
		}
		out[base] = krw / usdRate
	}
	return out
}

func canonicalBase(instrumentKey string) (string, bool) {
	if !strings.HasSuffix(instrumentKey, krwSuffix) {
		return "", false
	}
	base := strings.TrimSuffix(instrumentKey, krwSuffix)
	if base == "" {
		return "", false
	}
	return strings.ToUpper(base), true
}

func askOrMark(q quote.Quote) (float64, bool) {
	if q.HasAsk {
		return q.Ask, true
	}
	if q.HasMark {
		return q.Mark, true
	}
	return 0, false
}

// ExtractUSDKRWFromSnapshot locates the venue's USDT/KRW reading within its
// own instrument snapshot, the input rate.Get needs on every tick.
func ExtractUSDKRWFromSnapshot(snapshot map[string]quote.Quote, usdtKrwKey string) (float64, bool) {
	q, ok := snapshot[usdtKrwKey]
	if !ok {
		return 0, false
	}
	return rate.ExtractUSDKRW(q)
}
