package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/quotehedge/contango-scan/internal/breaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadAllPreservesOrderAndIsolatesFailures(t *testing.T) {
	loads := []VenueLoad{
		{Venue: "upbit", Breaker: breaker.New("upbit-loader-1"), Fetcher: stubFetcher{
			instruments: []Instrument{{VenueCode: "KRW-BTC", Base: "BTC"}},
		}},
		{Venue: "bithumb", Breaker: breaker.New("bithumb-loader-1"), Fetcher: stubFetcher{
			err: errors.New("rest down"),
		}},
		{Venue: "okx", Breaker: breaker.New("okx-loader-1"), Fetcher: stubFetcher{
			instruments: []Instrument{{VenueCode: "ETH-USDT-SWAP", Base: "ETH"}},
		}},
	}

	loader := NewLoader(len(loads))
	results := loader.LoadAll(context.Background(), loads)

	require.Len(t, results, 3)
	assert.Equal(t, "upbit", results[0].Venue)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "BTC", results[0].Instruments[0].Base)

	assert.Equal(t, "bithumb", results[1].Venue)
	assert.Error(t, results[1].Err)

	assert.Equal(t, "okx", results[2].Venue)
	require.NoError(t, results[2].Err)
	assert.Equal(t, "ETH", results[2].Instruments[0].Base)
}

func TestNewLoader_ClampsConcurrency(t *testing.T) {
	assert.Equal(t, 1, NewLoader(0).concurrency)
	assert.Equal(t, 8, NewLoader(100).concurrency)
	assert.Equal(t, 3, NewLoader(3).concurrency)
}
