package bithumb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quotehedge/contango-scan/internal/catalog"
)

// MarketsURL is Bithumb's public market-list REST endpoint (the same
// Upbit-style v1 shape Bithumb adopted after its 2023 API rework).
const MarketsURL = "https://api.bithumb.com/v1/market/all"

// Fetcher implements catalog.Fetcher against Bithumb's REST API.
type Fetcher struct {
	http *http.Client
	url  string
}

// NewFetcher builds a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{http: &http.Client{Timeout: 10 * time.Second}, url: MarketsURL}
}

type marketEntry struct {
	Market string `json:"market"`
}

// FetchInstruments implements catalog.Fetcher.
func (f *Fetcher) FetchInstruments(ctx context.Context) ([]catalog.Instrument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("bithumb: build request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bithumb: fetch markets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bithumb: fetch markets: unexpected status %d", resp.StatusCode)
	}

	var entries []marketEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("bithumb: decode markets: %w", err)
	}

	out := make([]catalog.Instrument, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Market, "KRW-") {
			continue
		}
		base := strings.TrimPrefix(e.Market, "KRW-")
		out = append(out, catalog.Instrument{VenueCode: e.Market, Base: base})
	}
	return out, nil
}
