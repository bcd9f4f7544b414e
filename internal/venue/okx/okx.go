// Package okx implements the OKX USDT-settled perpetual swap protocol:
// three subscribed channels (tickers, books5, funding-rate), a dual-shape
// ping/pong keepalive reply (bare-text and JSON), and bid/ask/mark/funding
// merge into one cache record per instrument.
package okx

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/quotehedge/contango-scan/internal/venue"
)

// ChunkSize is OKX's subscription chunk cap (spec §4.A).
const ChunkSize = 20

// Channels are subscribed independently, each chunked on its own.
var channels = [...]string{"tickers", "books5", "funding-rate"}

// Protocol implements venue.Protocol for OKX perpetual swaps.
type Protocol struct {
	instIDToKey map[string]string // instId (e.g. "BTC-USDT-SWAP") -> canonical base
}

// New builds the protocol from the venue's resolved instrument catalog.
// Futures cache keys are the bare canonical base — no quote-currency suffix.
func New(instruments []catalog.Instrument) *Protocol {
	p := &Protocol{instIDToKey: make(map[string]string, len(instruments))}
	for _, inst := range instruments {
		p.instIDToKey[inst.VenueCode] = inst.Base
	}
	return p
}

// VenueCodes returns the raw OKX instId list to pass to venue.New.
func (p *Protocol) VenueCodes() []string {
	out := make([]string, 0, len(p.instIDToKey))
	for id := range p.instIDToKey {
		out = append(out, id)
	}
	return out
}

func (p *Protocol) Name() string { return "okx" }

type subscribeArg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

type subscribeFrame struct {
	Op   string         `json:"op"`
	Args []subscribeArg `json:"args"`
}

// Subscribe sends one "subscribe" frame per channel per 20-instrument chunk.
func (p *Protocol) Subscribe(ctx context.Context, conn *websocket.Conn, instruments []string) error {
	for _, channel := range channels {
		chunks := venue.ChunksOf(instruments, ChunkSize)
		err := venue.PaceChunks(ctx, chunks, func(chunk []string) error {
			args := make([]subscribeArg, len(chunk))
			for i, instID := range chunk {
				args[i] = subscribeArg{Channel: channel, InstID: instID}
			}
			return venue.SendJSON(conn, subscribeFrame{Op: "subscribe", Args: args})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Keepalive: OKX's ping/pong is reply-only, driven from HandleFrame; there is
// no client-initiated cadence to run here.
func (p *Protocol) Keepalive(ctx context.Context, conn *websocket.Conn) {}

type eventFrame struct {
	Event string `json:"event"`
	Op    string `json:"op"`
}

type dataFrame struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data []json.RawMessage `json:"data"`
}

type booksEntry struct {
	InstID string     `json:"instId"`
	Bids   [][]string `json:"bids"`
	Asks   [][]string `json:"asks"`
}

type tickerEntry struct {
	InstID string `json:"instId"`
	BidPx  string `json:"bidPx"`
	AskPx  string `json:"askPx"`
	MarkPx string `json:"markPx"`
}

type fundingEntry struct {
	InstID      string `json:"instId"`
	FundingRate string `json:"fundingRate"`
}

// HandleFrame replies in place to both ping shapes (bare "ping" text and
// {"op":"ping"}), drops subscribe-ack/error event frames, and otherwise
// dispatches books5/tickers/funding-rate payloads into a quote.Delta. Only
// the first entry of a data array is used — OKX sends one instrument per
// element and this client subscribes per-instrument, so arrays longer than
// one would indicate a dispatch bug rather than a real multi-instrument
// payload; taking [0] matches the original client's per-message expectation.
func (p *Protocol) HandleFrame(conn venue.Conn, raw []byte) (string, quote.Delta, bool) {
	if string(raw) == "ping" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("pong"))
		return "", quote.Delta{}, false
	}
	if string(raw) == "pong" {
		return "", quote.Delta{}, false
	}

	var ev eventFrame
	if json.Unmarshal(raw, &ev) == nil {
		if ev.Op == "ping" {
			_ = conn.WriteJSON(map[string]string{"op": "pong"})
			return "", quote.Delta{}, false
		}
		if ev.Event == "subscribe" || ev.Event == "error" {
			return "", quote.Delta{}, false
		}
	}

	var f dataFrame
	if json.Unmarshal(raw, &f) != nil || len(f.Data) == 0 {
		return "", quote.Delta{}, false
	}

	switch f.Arg.Channel {
	case "books5":
		var entry booksEntry
		if json.Unmarshal(f.Data[0], &entry) != nil {
			return "", quote.Delta{}, false
		}
		key, ok := p.instIDToKey[entry.InstID]
		if !ok {
			return "", quote.Delta{}, false
		}
		delta := quote.Delta{}
		if len(entry.Bids) > 0 {
			if bid, ok := parseFloat(entry.Bids[0][0]); ok {
				delta.HasBid, delta.Bid = true, bid
			}
		}
		if len(entry.Asks) > 0 {
			if ask, ok := parseFloat(entry.Asks[0][0]); ok {
				delta.HasAsk, delta.Ask = true, ask
			}
		}
		if !delta.HasBid && !delta.HasAsk {
			return "", quote.Delta{}, false
		}
		return key, delta, true

	case "tickers":
		var entry tickerEntry
		if json.Unmarshal(f.Data[0], &entry) != nil {
			return "", quote.Delta{}, false
		}
		key, ok := p.instIDToKey[entry.InstID]
		if !ok {
			return "", quote.Delta{}, false
		}
		delta := quote.Delta{}
		if bid, ok := parseFloat(entry.BidPx); ok {
			delta.HasBid, delta.Bid = true, bid
		}
		if ask, ok := parseFloat(entry.AskPx); ok {
			delta.HasAsk, delta.Ask = true, ask
		}
		if mark, ok := parseFloat(entry.MarkPx); ok {
			delta.HasMark, delta.Mark = true, mark
		}
		if !delta.HasBid && !delta.HasAsk && !delta.HasMark {
			return "", quote.Delta{}, false
		}
		return key, delta, true

	case "funding-rate":
		var entry fundingEntry
		if json.Unmarshal(f.Data[0], &entry) != nil {
			return "", quote.Delta{}, false
		}
		key, ok := p.instIDToKey[entry.InstID]
		if !ok {
			return "", quote.Delta{}, false
		}
		funding, ok := parseFloat(entry.FundingRate)
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
