package gate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_KeepsOnlyUSDTContracts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"BTC_USDT"},{"name":"BTC_USD"}]`))
	}))
	defer srv.Close()

	f := NewFetcher()
	f.url = srv.URL

	out, err := f.FetchInstruments(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "BTC_USDT", out[0].VenueCode)
	assert.Equal(t, "BTC", out[0].Base)
}

func TestFetcher_PropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher()
	f.url = srv.URL

	_, err := f.FetchInstruments(context.Background())
	assert.Error(t, err)
}
