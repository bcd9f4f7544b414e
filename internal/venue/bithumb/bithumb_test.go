package bithumb

import (
	"testing"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFrame_ParsesOrderbookAsk(t *testing.T) {
	p := New([]catalog.Instrument{{VenueCode: "BTC_KRW", Base: "BTC"}})
	raw := []byte(`{"type":"orderbook","code":"BTC_KRW","orderbook_units":[{"ask_price":139500000}]}`)
	key, delta, ok := p.HandleFrame(nil, raw)
	require.True(t, ok)
	assert.Equal(t, "BTC/KRW", key)
	assert.Equal(t, 139500000.0, delta.Ask)
}

func TestHandleFrame_IgnoresNonOrderbookType(t *testing.T) {
	p := New([]catalog.Instrument{{VenueCode: "BTC_KRW", Base: "BTC"}})
	raw := []byte(`{"type":"ticker","code":"BTC_KRW"}`)
	_, _, ok := p.HandleFrame(nil, raw)
	assert.False(t, ok)
}
