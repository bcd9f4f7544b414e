package upbit

import (
	"testing"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFrame_ParsesOrderbookAsk(t *testing.T) {
	p := New([]catalog.Instrument{{VenueCode: "KRW-BTC", Base: "BTC"}})

	raw := []byte(`{"type":"orderbook","code":"KRW-BTC","orderbook_units":[{"ask_price":140000000,"bid_price":139990000}]}`)
	key, delta, ok := p.HandleFrame(nil, raw)
	require.True(t, ok)
	assert.Equal(t, "BTC/KRW", key)
	assert.Equal(t, 140000000.0, delta.Ask)
	assert.True(t, delta.HasAsk)
}

func TestHandleFrame_IgnoresNonOrderbookType(t *testing.T) {
	p := New([]catalog.Instrument{{VenueCode: "KRW-BTC", Base: "BTC"}})
	raw := []byte(`{"type":"ticker","code":"KRW-BTC"}`)
	_, _, ok := p.HandleFrame(nil, raw)
	assert.False(t, ok)
}

func TestHandleFrame_IgnoresUnknownCode(t *testing.T) {
	p := New([]catalog.Instrument{{VenueCode: "KRW-BTC", Base: "BTC"}})
	raw := []byte(`{"type":"orderbook","code":"KRW-ETH","orderbook_units":[{"ask_price":1000}]}`)
	_, _, ok := p.HandleFrame(nil, raw)
	assert.False(t, ok)
}

func TestVenueCodes(t *testing.T) {
	p := New([]catalog.Instrument{{VenueCode: "KRW-BTC", Base: "BTC"}, {VenueCode: "KRW-USDT", Base: "USDT"}})
	codes := p.VenueCodes()
	assert.Len(t, codes, 2)
}
