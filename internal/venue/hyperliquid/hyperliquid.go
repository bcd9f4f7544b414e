// Package hyperliquid implements the Hyperliquid perpetual protocol: two
// per-coin subscriptions (bbo, activeAssetCtx) chunked at 40, and a
// client-initiated {"method":"ping"} sent every 30s — the one venue in this
// system where the keepalive is a cadence, not a reply.
package hyperliquid

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/quotehedge/contango-scan/internal/venue"
)

// ChunkSize is Hyperliquid's subscription chunk cap (spec §4.A).
const ChunkSize = 40

// PingInterval is the cadence of the client-initiated keepalive.
const PingInterval = 30 * time.Second

// Protocol implements venue.Protocol for Hyperliquid perpetuals.
type Protocol struct {
	coinToKey map[string]string
}

// New builds the protocol from the venue's resolved instrument catalog.
// Hyperliquid's venue code is already the canonical coin symbol, so this
// map is closer to an identity than the other venues', but is kept for
// symmetry with the Protocol interface and in case future catalog entries
// carry a distinct venue-local spelling.
func New(instruments []catalog.Instrument) *Protocol {
	p := &Protocol{coinToKey: make(map[string]string, len(instruments))}
	for _, inst := range instruments {
		p.coinToKey[inst.VenueCode] = inst.Base
	}
	return p
}

// VenueCodes returns the raw Hyperliquid coin list to pass to venue.New.
func (p *Protocol) VenueCodes() []string {
	out := make([]string, 0, len(p.coinToKey))
	for coin := range p.coinToKey {
		out = append(out, coin)
	}
	return out
}

func (p *Protocol) Name() string { return "hyperliquid" }

type subscribeMessage struct {
	Method       string       `json:"method"`
	Subscription subscription `json:"subscription"`
}

type subscription struct {
	Type string `json:"type"`
	Coin string `json:"coin"`
}

// Subscribe sends one "subscribe" message per coin per subscription type,
// chunked at ChunkSize with a pace sleep between chunks — bbo for every
// chunk first, then activeAssetCtx for every chunk, matching the original
// client's two full passes over the coin list.
func (p *Protocol) Subscribe(ctx context.Context, conn *websocket.Conn, instruments []string) error {
	for _, subType := range []string{"bbo", "activeAssetCtx"} {
		chunks := venue.ChunksOf(instruments, ChunkSize)
		err := venue.PaceChunks(ctx, chunks, func(chunk []string) error {
			for _, coin := range chunk {
				msg := subscribeMessage{
					Method:       "subscribe",
					Subscription: subscription{Type: subType, Coin: coin},
				}
				if err := venue.SendJSON(conn, msg); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Keepalive sends {"method":"ping"} every PingInterval until ctx is
// cancelled or a write fails.
func (p *Protocol) Keepalive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(map[string]string{"method": "ping"}); err != nil {
				return
			}
		}
	}
}

type messageFrame struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type bboData struct {
	Coin string     `json:"coin"`
	BBO  [][]string `json:"bbo"`
}

type ctxData struct {
	Coin string `json:"coin"`
	Ctx  struct {
		Funding string `json:"funding"`
	} `json:"ctx"`
}

// HandleFrame dispatches the bbo and activeAssetCtx channels; subscription
// acks and the server's own "pong" channel are dropped silently.
func (p *Protocol) HandleFrame(conn venue.Conn, raw []byte) (string, quote.Delta, bool) {
	var f messageFrame
	if json.Unmarshal(raw, &f) != nil {
		return "", quote.Delta{}, false
	}

	switch f.Channel {
	case "subscriptionResponse", "pong":
		return "", quote.Delta{}, false

	case "bbo":
		var d bboData
		if json.Unmarshal(f.Data, &d) != nil {
			return "", quote.Delta{}, false
		}
		key, ok := p.coinToKey[d.Coin]
		if !ok {
			return "", quote.Delta{}, false
		}
		delta := quote.Delta{}
		if len(d.BBO) > 0 && len(d.BBO[0]) > 0 {
			if bid, ok := parseFloat(d.BBO[0][0]); ok {
				delta.HasBid, delta.Bid = true, bid
			}
		}
		if len(d.BBO) > 1 && len(d.BBO[1]) > 0 {
			if ask, ok := parseFloat(d.BBO[1][0]); ok {
				delta.HasAsk, delta.Ask = true, ask
			}
		}
		if !delta.HasBid && !delta.HasAsk {
			return "", quote.Delta{}, false
		}
		return key, delta, true

	case "activeAssetCtx":
		var d ctxData
		if json.Unmarshal(f.Data, &d) != nil {
			return "", quote.Delta{}, false
		}
		key, ok := p.coinToKey[d.Coin]
		if !ok {
			return "", quote.Delta{}, false
		}
		funding, ok := parseFloat(d.Ctx.Funding)
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
	var f float64
	if json.Unmarshal([]byte(s), &f) != nil {
		return 0, false
	}
	return f, true
}
