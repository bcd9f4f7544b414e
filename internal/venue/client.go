// Package venue implements the generic per-venue stream-client reconnect
// loop described in spec §9 ("Per-venue parser polymorphism"): each venue
// differs only in its subscription frame builder and frame dispatcher; the
// connect/reconnect/dispatch loop itself is written once and reused.
package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quotehedge/contango-scan/internal/quote"
	"github.com/quotehedge/contango-scan/internal/ratelimit"
)

// ReconnectDelay is the fixed pause after a connection failure before
// redialing. No backoff, no jitter, no connection budget — per spec §4.A /
// §5, the loop is infinite by design so transient outages self-heal.
const ReconnectDelay = 3 * time.Second

// HandshakeTimeout bounds how long the initial WS dial may take.
const HandshakeTimeout = 30 * time.Second

// ReadDeadline bounds how long the client waits for the next frame before
// treating the connection as dead and reconnecting.
const ReadDeadline = 60 * time.Second

// Conn is the slice of *websocket.Conn a Protocol needs to reply to inbound
// frames in place (application-level ping/pong). Narrowing to an interface
// lets venue packages test HandleFrame against a fake instead of a live
// socket.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v any) error
}

// Protocol is the per-venue polymorphism seam: everything that differs
// between Upbit, Bithumb, OKX, Gate, and Hyperliquid lives behind this
// interface; Client's reconnect/dispatch loop is venue-agnostic.
type Protocol interface {
	// Name is the venue id used in the client's log fields.
	Name() string
	// Subscribe sends every subscription frame needed for instruments,
	// chunked and paced per the venue's own rules.
	Subscribe(ctx context.Context, conn *websocket.Conn, instruments []string) error
	// HandleFrame classifies one inbound frame and returns the instrument
	// key plus quote delta it represents. ok is false for frames the venue
	// client does not recognize or cannot parse — these are silently
	// dropped, never treated as a connection fault. conn is passed through
	// so venues with an application-level text ping/pong (OKX, Gate) can
	// reply in place without the generic loop knowing their wire shape.
	HandleFrame(conn Conn, raw []byte) (instrumentKey string, delta quote.Delta, ok bool)
	// Keepalive is invoked once per connection in its own goroutine; a venue
	// that needs a client-initiated ping (Hyperliquid) sends it here on its
	// own cadence until ctx is cancelled. The others (Upbit, Bithumb, and
	// OKX and Gate, which answer pings from HandleFrame) return immediately.
	Keepalive(ctx context.Context, conn *websocket.Conn)
}

// Client owns one long-lived WebSocket session and the write-half of its
// venue's quote cache slot.
type Client struct {
	proto       Protocol
	wsURL       string
	instruments []string
	cache       *quote.Cache
	log         zerolog.Logger
	onReconnect func()
}

// New builds a stream client for proto against wsURL, writing observed
// quotes into cache.
func New(proto Protocol, wsURL string, instruments []string, cache *quote.Cache, log zerolog.Logger) *Client {
	return &Client{
		proto:       proto,
		wsURL:       wsURL,
		instruments: instruments,
		cache:       cache,
		log:         log.With().Str("venue", proto.Name()).Logger(),
	}
}

// OnReconnect registers a callback invoked every time a new connection is
// established (after a successful Subscribe) — metrics wiring uses this to
// increment the reconnect counter.
func (c *Client) OnReconnect(fn func()) { c.onReconnect = fn }

// Run is the connect/reconnect loop: dial, subscribe, read until failure,
// sleep ReconnectDelay, repeat. It never returns except via ctx
// cancellation.
func (c *Client) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.runOnce(ctx); err != nil {
			c.log.Warn().Err(err).Msg("stream connection lost")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(ReconnectDelay):
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = HandshakeTimeout

	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := c.proto.Subscribe(ctx, conn, c.instruments); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	if c.onReconnect != nil {
		c.onReconnect()
	}

	keepaliveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.proto.Keepalive(keepaliveCtx, conn)

	for {
		if ctx.Err() != nil {
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(ReadDeadline))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		key, delta, ok := c.proto.HandleFrame(conn, raw)
		if !ok {
			continue
		}
		delta.Timestamp = time.Now()
		c.cache.Update(key, delta)
	}
}

// ChunksOf splits instruments into groups no larger than size, the shared
// subscription-chunking helper every venue's Subscribe uses.
func ChunksOf(instruments []string, size int) [][]string {
	if size <= 0 {
		return [][]string{instruments}
	}
	var chunks [][]string
	for i := 0; i < len(instruments); i += size {
		end := i + size
		if end > len(instruments) {
			end = len(instruments)
		}
		chunks = append(chunks, instruments[i:end])
	}
	return chunks
}

// SendJSON is a tiny helper paired with the fixed inter-chunk sleep.
func SendJSON(conn *websocket.Conn, v any) error {
	return conn.WriteJSON(v)
}

// PaceChunks calls send for every chunk, sleeping ratelimit.ChunkDelay
// between sends.
func PaceChunks(ctx context.Context, chunks [][]string, send func(chunk []string) error) error {
	for i, chunk := range chunks {
		if err := send(chunk); err != nil {
			return err
		}
		if i < len(chunks)-1 {
			if err := ratelimit.SleepBetweenChunks(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeFrame is a convenience wrapper most venue HandleFrame
// implementations use first to sniff the frame shape.
func DecodeFrame(raw []byte, v any) bool {
	return json.Unmarshal(raw, v) == nil
}
