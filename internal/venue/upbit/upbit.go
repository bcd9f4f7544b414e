// Package upbit implements the Upbit spot venue protocol: KRW order-book
// top, chunked subscriptions of 50 codes, no application-level keepalive.
package upbit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/quotehedge/contango-scan/internal/venue"
)

// ChunkSize is Upbit's subscription chunk cap (spec §4.A).
const ChunkSize = 50

// Protocol implements venue.Protocol for Upbit.
type Protocol struct {
	codeToKey map[string]string // venue code (e.g. "KRW-BTC") -> cache key (e.g. "BTC/KRW")
}

// New builds the protocol from the venue's resolved instrument catalog.
// Every instrument is expected to be KRW-quoted; the cache key convention
// is "<BASE>/KRW" per internal/project's expectations.
func New(instruments []catalog.Instrument) *Protocol {
	p := &Protocol{codeToKey: make(map[string]string, len(instruments))}
	for _, inst := range instruments {
		p.codeToKey[inst.VenueCode] = inst.Base + "/KRW"
	}
	return p
}

// VenueCodes returns the raw Upbit market codes to pass to venue.New.
func (p *Protocol) VenueCodes() []string {
	out := make([]string, 0, len(p.codeToKey))
	for code := range p.codeToKey {
		out = append(out, code)
	}
	return out
}

func (p *Protocol) Name() string { return "upbit" }

type subscribeFrame = []any

// Subscribe sends one subscription frame per 50-code chunk:
// [{ticket}, {type:"orderbook", codes, is_only_realtime:true}, {format}].
func (p *Protocol) Subscribe(ctx context.Context, conn *websocket.Conn, instruments []string) error {
	chunks := venue.ChunksOf(instruments, ChunkSize)
	return venue.PaceChunks(ctx, chunks, func(chunk []string) error {
		frame := subscribeFrame{
			map[string]string{"ticket": uuid.NewString()},
			map[string]any{
				"type":             "orderbook",
				"codes":            chunk,
				"is_only_realtime": true,
			},
			map[string]string{"format": "DEFAULT"},
		}
		return venue.SendJSON(conn, frame)
	})
}

// Keepalive: Upbit requires no application-level ping.
func (p *Protocol) Keepalive(ctx context.Context, conn *websocket.Conn) {}

type orderbookFrame struct {
	Type           string `json:"type"`
	Code           string `json:"code"`
	OrderbookUnits []struct {
		AskPrice float64 `json:"ask_price"`
	} `json:"orderbook_units"`
}

// HandleFrame consumes only "orderbook" frames, taking the first ask.
func (p *Protocol) HandleFrame(conn venue.Conn, raw []byte) (string, quote.Delta, bool) {
	var f orderbookFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", quote.Delta{}, false
	}
	if f.Type != "orderbook" || len(f.OrderbookUnits) == 0 {
		return "", quote.Delta{}, false
	}
	key, ok := p.codeToKey[f.Code]
	if !ok {
		return "", quote.Delta{}, false
	}
	ask := f.OrderbookUnits[0].AskPrice
	if ask <= 0 {
		return "", quote.Delta{}, false
	}
	return key, quote.Delta{HasAsk: true, Ask: ask}, true
}
