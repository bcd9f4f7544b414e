// Package tradelog records the append-only trade-event log the auto-trader
// writes one line to per entry/exit.
package tradelog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event is one entry or exit record. All fields are JSON-tagged to match
// spec §6's persisted-state shape exactly; PnL/portions are only set on
// exit events, and are omitted on entry.
type Event struct {
	Event           string    `json:"event"` // "entry" | "exit"
	Timestamp       time.Time `json:"timestamp"`
	Base            string    `json:"base"`
	SpotExchange    string    `json:"spot_exchange"`
	FuturesExchange string    `json:"futures_exchange"`
	USD             float64   `json:"usd"`
	SpreadPct       float64   `json:"spread_pct"`
	NetPct          float64   `json:"net_pct"`
	FundingRate     float64   `json:"funding_rate"`
	PnLUSD          *float64  `json:"pnl_usd,omitempty"`
	Portions        []Portion `json:"portions,omitempty"`
	Execution       Execution `json:"execution"`
}

// Portion mirrors one hedge.ExitPortion for the log record.
type Portion struct {
	USD         float64 `json:"usd"`
	Qty         float64 `json:"qty"`
	RealizedPnL float64 `json:"realized_pnl"`
}

// Execution captures what the OrderExecutor actually did for this event.
type Execution struct {
	Mode       string `json:"mode"`
	FuturesID  string `json:"futures_order_id,omitempty"`
	SpotID     string `json:"spot_order_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// EventSink is the single-purpose descendant of the teacher's stream.EventBus
// shape: one method, no topics/partitions/consumer groups, because every
// consumer of this log is a human or an offline script reading the file.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

// FileEventSink appends one JSON line per event to a file opened
// append-only. It is the sole EventSink implementation (spec §4.P, §6).
type FileEventSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileEventSink opens (creating if absent) path for append-only writes.
func NewFileEventSink(path string) (*FileEventSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tradelog: open %s: %w", path, err)
	}
	return &FileEventSink{file: f, enc: json.NewEncoder(f)}, nil
}

// Publish appends event as one JSON line. Concurrent writers are not
// expected per spec §5, but the mutex keeps a single process's callers safe
// regardless.
func (s *FileEventSink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(event)
}

// Close releases the underlying file handle.
func (s *FileEventSink) Close() error {
	return s.file.Close()
}
