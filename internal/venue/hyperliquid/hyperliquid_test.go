package hyperliquid

import (
	"testing"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	jsonMessages []any
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error { return nil }

func (f *fakeConn) WriteJSON(v any) error {
	f.jsonMessages = append(f.jsonMessages, v)
	return nil
}

func newTestProtocol() *Protocol {
	return New([]catalog.Instrument{{VenueCode: "BTC", Base: "BTC"}})
}

func TestHandleFrame_IgnoresSubscriptionResponse(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"channel":"subscriptionResponse","data":{}}`)
	_, _, ok := p.HandleFrame(&fakeConn{}, raw)
	assert.False(t, ok)
}

func TestHandleFrame_ParsesBBO(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"channel":"bbo","data":{"coin":"BTC","bbo":[["64999.5","1.2"],["65000.5","0.8"]]}}`)
	key, delta, ok := p.HandleFrame(&fakeConn{}, raw)
	require.True(t, ok)
	assert.Equal(t, "BTC", key)
	assert.True(t, delta.HasBid)
	assert.Equal(t, 64999.5, delta.Bid)
	assert.True(t, delta.HasAsk)
	assert.Equal(t, 65000.5, delta.Ask)
}

func TestHandleFrame_ParsesActiveAssetCtxFunding(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"channel":"activeAssetCtx","data":{"coin":"BTC","ctx":{"funding":"0.00005"}}}`)
	key, delta, ok := p.HandleFrame(&fakeConn{}, raw)
	require.True(t, ok)
	assert.Equal(t, "BTC", key)
	assert.True(t, delta.HasFunding)
	assert.Equal(t, 0.00005, delta.FundingRate)
}

func TestHandleFrame_IgnoresUnknownCoin(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"channel":"bbo","data":{"coin":"ETH","bbo":[["3000","1"],["3001","1"]]}}`)
	_, _, ok := p.HandleFrame(&fakeConn{}, raw)
	assert.False(t, ok)
}

func TestVenueCodes(t *testing.T) {
	p := New([]catalog.Instrument{{VenueCode: "BTC", Base: "BTC"}, {VenueCode: "ETH", Base: "ETH"}})
	assert.Len(t, p.VenueCodes(), 2)
}
