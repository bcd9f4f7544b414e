package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quotehedge/contango-scan/internal/catalog"
)

// InfoURL is Hyperliquid's REST info endpoint; the "meta" request type
// returns the perpetual universe.
const InfoURL = "https://api.hyperliquid.xyz/info"

// Fetcher implements catalog.Fetcher against Hyperliquid's info endpoint.
// Hyperliquid has no separate venue code per instrument — the coin name
// itself is both the subscription key and the canonical base.
type Fetcher struct {
	http *http.Client
	url  string
}

// NewFetcher builds a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{http: &http.Client{Timeout: 10 * time.Second}, url: InfoURL}
}

type metaRequest struct {
	Type string `json:"type"`
}

type metaResponse struct {
	Universe []struct {
		Name string `json:"name"`
	} `json:"universe"`
}

// FetchInstruments implements catalog.Fetcher.
func (f *Fetcher) FetchInstruments(ctx context.Context) ([]catalog.Instrument, error) {
	body, err := json.Marshal(metaRequest{Type: "meta"})
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: encode meta request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: fetch meta: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hyperliquid: fetch meta: unexpected status %d", resp.StatusCode)
	}

	var meta metaResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode meta: %w", err)
	}

	out := make([]catalog.Instrument, 0, len(meta.Universe))
	for _, u := range meta.Universe {
		out = append(out, catalog.Instrument{VenueCode: u.Name, Base: u.Name})
	}
	return out, nil
}
