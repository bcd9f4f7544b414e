// Package bithumb implements the Bithumb spot venue protocol: nearly
// identical to Upbit's wire shape (both are the same Korean exchange
// ticket-based subscription protocol) but served from a distinct host.
package bithumb

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/quotehedge/contango-scan/internal/venue"
)

// ChunkSize is Bithumb's subscription chunk cap (spec §4.A).
const ChunkSize = 50

// Protocol implements venue.Protocol for Bithumb.
type Protocol struct {
	codeToKey map[string]string
}

// New builds the protocol from the venue's resolved instrument catalog.
func New(instruments []catalog.Instrument) *Protocol {
	p := &Protocol{codeToKey: make(map[string]string, len(instruments))}
	for _, inst := range instruments {
		p.codeToKey[inst.VenueCode] = inst.Base + "/KRW"
	}
	return p
}

// VenueCodes returns the raw Bithumb market codes to pass to venue.New.
func (p *Protocol) VenueCodes() []string {
	out := make([]string, 0, len(p.codeToKey))
	for code := range p.codeToKey {
		out = append(out, code)
	}
	return out
}

func (p *Protocol) Name() string { return "bithumb" }

// Subscribe mirrors Upbit's frame shape exactly.
func (p *Protocol) Subscribe(ctx context.Context, conn *websocket.Conn, instruments []string) error {
	chunks := venue.ChunksOf(instruments, ChunkSize)
	return venue.PaceChunks(ctx, chunks, func(chunk []string) error {
		frame := []any{
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

// Keepalive: Bithumb requires no application-level ping.
func (p *Protocol) Keepalive(ctx context.Context, conn *websocket.Conn) {}

type orderbookFrame struct {
	Type           string `json:"type"`
	Code           string `json:"code"`
	OrderbookUnits []struct {
		AskPrice float64 `json:"ask_price"`
	} `json:"orderbook_units"`
}

// HandleFrame requires the type field equal "orderbook", per the original
// Python client's explicit check (data.get("type") != "orderbook").
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
