package tradelog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileEventSink_AppendsOneJSONLinePerEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trade_cycles.jsonl")

	sink, err := NewFileEventSink(path)
	require.NoError(t, err)
	defer sink.Close()

	pnl := 1.23
	require.NoError(t, sink.Publish(context.Background(), Event{
		Event: "entry", Timestamp: time.Now(), Base: "BTC",
		SpotExchange: "upbit", FuturesExchange: "okx", USD: 50,
		Execution: Execution{Mode: "DRY_RUN"},
	}))
	require.NoError(t, sink.Publish(context.Background(), Event{
		Event: "exit", Timestamp: time.Now(), Base: "BTC",
		SpotExchange: "upbit", FuturesExchange: "okx", USD: 50,
		PnLUSD: &pnl, Execution: Execution{Mode: "DRY_RUN"},
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)

	var first Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "entry", first.Event)

	var second Event
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Equal(t, "exit", second.Event)
	require.NotNil(t, second.PnLUSD)
	require.InDelta(t, 1.23, *second.PnLUSD, 1e-9)
}

func TestFileEventSink_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trade_cycles.jsonl")

	sink1, err := NewFileEventSink(path)
	require.NoError(t, err)
	require.NoError(t, sink1.Publish(context.Background(), Event{Event: "entry"}))
	require.NoError(t, sink1.Close())

	sink2, err := NewFileEventSink(path)
	require.NoError(t, err)
	defer sink2.Close()
	require.NoError(t, sink2.Publish(context.Background(), Event{Event: "exit"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lineCount := 0
	for _, b := range data {
		if b == '\n' {
			lineCount++
		}
	}
	require.Equal(t, 2, lineCount)
}
