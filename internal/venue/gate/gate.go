// Package gate implements the Gate.io USDT-settled perpetual futures
// protocol: three futures.* channels subscribed per chunk, an order-book
// depth/interval payload shape distinct from the other channels, and a
// server-driven ping answered with a futures.ping echo carrying the same
// timestamp convention.
package gate

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/quotehedge/contango-scan/internal/venue"
)

// ChunkSize is Gate's subscription chunk cap (spec §4.A).
const ChunkSize = 30

// OrderBookDepth and OrderBookInterval are the fixed order_book subscription
// parameters the original client always requests.
const (
	OrderBookDepth    = "20"
	OrderBookInterval = "0"
)

var channels = [...]string{"futures.tickers", "futures.order_book", "futures.funding_rate"}

// Protocol implements venue.Protocol for Gate.io perpetual futures.
type Protocol struct {
	contractToKey map[string]string
}

// New builds the protocol from the venue's resolved instrument catalog.
func New(instruments []catalog.Instrument) *Protocol {
	p := &Protocol{contractToKey: make(map[string]string, len(instruments))}
	for _, inst := range instruments {
		p.contractToKey[inst.VenueCode] = inst.Base
	}
	return p
}

// VenueCodes returns the raw Gate contract list to pass to venue.New.
func (p *Protocol) VenueCodes() []string {
	out := make([]string, 0, len(p.contractToKey))
	for contract := range p.contractToKey {
		out = append(out, contract)
	}
	return out
}

func (p *Protocol) Name() string { return "gate" }

type subscribeFrame struct {
	Time    int64  `json:"time"`
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Subscribe sends one "subscribe" event per channel per 30-contract chunk.
// futures.order_book carries a [contract, depth, interval] triple per
// contract instead of the bare contract list the other two channels use.
func (p *Protocol) Subscribe(ctx context.Context, conn *websocket.Conn, instruments []string) error {
	for _, channel := range channels {
		chunks := venue.ChunksOf(instruments, ChunkSize)
		err := venue.PaceChunks(ctx, chunks, func(chunk []string) error {
			frame := subscribeFrame{
				Time:    time.Now().Unix(),
				Channel: channel,
				Event:   "subscribe",
				Payload: chunk,
			}
			if channel == "futures.order_book" {
				triples := make([][3]string, len(chunk))
				for i, contract := range chunk {
					triples[i] = [3]string{contract, OrderBookDepth, OrderBookInterval}
				}
				frame.Payload = triples
			}
			return venue.SendJSON(conn, frame)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Keepalive: Gate's ping is server-driven and answered from HandleFrame;
// there is no client-initiated cadence to run here.
func (p *Protocol) Keepalive(ctx context.Context, conn *websocket.Conn) {}

type messageFrame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Result  json.RawMessage `json:"result"`
}

type tickerResult struct {
	Contract string `json:"contract"`
	BestBid  string `json:"best_bid"`
	BestAsk  string `json:"best_ask"`
	MarkPx   string `json:"mark_price"`
}

// orderBookLevel is Gate's order-book entry shape: {"p": "price", "s": size}.
type orderBookLevel struct {
	Price string `json:"p"`
}

type fundingResult struct {
	Contract    string `json:"contract"`
	FundingRate string `json:"funding_rate"`
}

// HandleFrame answers the futures.ping keepalive in place and otherwise
// dispatches futures.tickers/futures.order_book/futures.funding_rate result
// payloads into a quote.Delta.
func (p *Protocol) HandleFrame(conn venue.Conn, raw []byte) (string, quote.Delta, bool) {
	var msg messageFrame
	if json.Unmarshal(raw, &msg) != nil {
		return "", quote.Delta{}, false
	}

	switch msg.Event {
	case "ping":
		_ = conn.WriteJSON(map[string]any{
			"time":    time.Now().Unix(),
			"channel": "futures.ping",
		})
		return "", quote.Delta{}, false
	case "subscribe", "pong":
		return "", quote.Delta{}, false
	}

	if len(msg.Result) == 0 {
		return "", quote.Delta{}, false
	}

	switch msg.Channel {
	case "futures.tickers":
		var r tickerResult
		if json.Unmarshal(msg.Result, &r) != nil {
			return "", quote.Delta{}, false
		}
		key, ok := p.contractToKey[r.Contract]
		if !ok {
			return "", quote.Delta{}, false
		}
		delta := quote.Delta{}
		if bid, ok := parseFloat(r.BestBid); ok {
			delta.HasBid, delta.Bid = true, bid
		}
		if ask, ok := parseFloat(r.BestAsk); ok {
			delta.HasAsk, delta.Ask = true, ask
		}
		if mark, ok := parseFloat(r.MarkPx); ok {
			delta.HasMark, delta.Mark = true, mark
		}
		if !delta.HasBid && !delta.HasAsk && !delta.HasMark {
			return "", quote.Delta{}, false
		}
		return key, delta, true

	case "futures.order_book":
		var r struct {
			Contract string           `json:"contract"`
			Bids     []orderBookLevel `json:"bids"`
			Asks     []orderBookLevel `json:"asks"`
		}
		if json.Unmarshal(msg.Result, &r) != nil {
			return "", quote.Delta{}, false
		}
		key, ok := p.contractToKey[r.Contract]
		if !ok {
			return "", quote.Delta{}, false
		}
		delta := quote.Delta{}
		if len(r.Bids) > 0 {
			if bid, ok := parseFloat(r.Bids[0].Price); ok {
				delta.HasBid, delta.Bid = true, bid
			}
		}
		if len(r.Asks) > 0 {
			if ask, ok := parseFloat(r.Asks[0].Price); ok {
				delta.HasAsk, delta.Ask = true, ask
			}
		}
		if !delta.HasBid && !delta.HasAsk {
			return "", quote.Delta{}, false
		}
		return key, delta, true

	case "futures.funding_rate":
		var r fundingResult
		if json.Unmarshal(msg.Result, &r) != nil {
			return "", quote.Delta{}, false
		}
		key, ok := p.contractToKey[r.Contract]
		if !ok {
			return "", quote.Delta{}, false
		}
		funding, ok := parseFloat(r.FundingRate)
		if !ok {
			return "", quote.Delta{}, false
		}
		return key, quote.Delta{HasFunding: true, FundingRate: funding}, true
	}

	return "", quote.Delta{}, false
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
