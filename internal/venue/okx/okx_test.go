package okx

import (
	"testing"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records what Protocol writes back without opening a real socket.
type fakeConn struct {
	textMessages [][]byte
	jsonMessages []any
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.textMessages = append(f.textMessages, data)
	return nil
}

func (f *fakeConn) WriteJSON(v any) error {
	f.jsonMessages = append(f.jsonMessages, v)
	return nil
}

func newTestProtocol() *Protocol {
	return New([]catalog.Instrument{{VenueCode: "BTC-USDT-SWAP", Base: "BTC"}})
}

func TestHandleFrame_BarePing(t *testing.T) {
	p := newTestProtocol()
	conn := &fakeConn{}
	_, _, ok := p.HandleFrame(conn, []byte("ping"))
	assert.False(t, ok)
	require.Len(t, conn.textMessages, 1)
	assert.Equal(t, "pong", string(conn.textMessages[0]))
}

func TestHandleFrame_JSONPing(t *testing.T) {
	p := newTestProtocol()
	conn := &fakeConn{}
	_, _, ok := p.HandleFrame(conn, []byte(`{"op":"ping"}`))
	assert.False(t, ok)
	require.Len(t, conn.jsonMessages, 1)
	assert.Equal(t, map[string]string{"op": "pong"}, conn.jsonMessages[0])
}

func TestHandleFrame_IgnoresSubscribeAck(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"event":"subscribe","arg":{"channel":"tickers","instId":"BTC-USDT-SWAP"}}`)
	_, _, ok := p.HandleFrame(&fakeConn{}, raw)
	assert.False(t, ok)
}

func TestHandleFrame_ParsesBooks5(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"arg":{"channel":"books5","instId":"BTC-USDT-SWAP"},"data":[{"instId":"BTC-USDT-SWAP","bids":[["65000.5","1"]],"asks":[["65001.0","2"]]}]}`)
	key, delta, ok := p.HandleFrame(&fakeConn{}, raw)
	require.True(t, ok)
	assert.Equal(t, "BTC", key)
	assert.True(t, delta.HasBid)
	assert.Equal(t, 65000.5, delta.Bid)
	assert.True(t, delta.HasAsk)
	assert.Equal(t, 65001.0, delta.Ask)
}

func TestHandleFrame_ParsesTickerWithMark(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"arg":{"channel":"tickers","instId":"BTC-USDT-SWAP"},"data":[{"instId":"BTC-USDT-SWAP","bidPx":"65000","askPx":"65002","markPx":"65001"}]}`)
	key, delta, ok := p.HandleFrame(&fakeConn{}, raw)
	require.True(t, ok)
	assert.Equal(t, "BTC", key)
	assert.True(t, delta.HasMark)
	assert.Equal(t, 65001.0, delta.Mark)
}

func TestHandleFrame_ParsesFundingRate(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"arg":{"channel":"funding-rate","instId":"BTC-USDT-SWAP"},"data":[{"instId":"BTC-USDT-SWAP","fundingRate":"0.0001"}]}`)
	key, delta, ok := p.HandleFrame(&fakeConn{}, raw)
	require.True(t, ok)
	assert.Equal(t, "BTC", key)
	assert.True(t, delta.HasFunding)
	assert.Equal(t, 0.0001, delta.FundingRate)
}

func TestHandleFrame_IgnoresUnknownInstID(t *testing.T) {
	p := newTestProtocol()
	raw := []byte(`{"arg":{"channel":"tickers","instId":"ETH-USDT-SWAP"},"data":[{"instId":"ETH-USDT-SWAP","bidPx":"3000","askPx":"3001"}]}`)
	_, _, ok := p.HandleFrame(&fakeConn{}, raw)
	assert.False(t, ok)
}

func TestVenueCodes(t *testing.T) {
	p := New([]catalog.Instrument{{VenueCode: "BTC-USDT-SWAP", Base: "BTC"}, {VenueCode: "ETH-USDT-SWAP", Base: "ETH"}})
	assert.Len(t, p.VenueCodes(), 2)
}
