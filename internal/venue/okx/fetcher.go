package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quotehedge/contango-scan/internal/catalog"
)

// InstrumentsURL is OKX's public instruments REST endpoint, scoped to
// perpetual swaps (instType=SWAP).
const InstrumentsURL = "https://www.okx.com/api/v5/public/instruments?instType=SWAP"

// Fetcher implements catalog.Fetcher against OKX's REST API, keeping only
// USDT-settled swaps (spec §4.C / the original's settle-currency filter).
type Fetcher struct {
	http *http.Client
	url  string
}

// NewFetcher builds a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{http: &http.Client{Timeout: 10 * time.Second}, url: InstrumentsURL}
}

type instrumentsResponse struct {
	Code string              `json:"code"`
	Data []instrumentsRecord `json:"data"`
}

type instrumentsRecord struct {
	InstID   string `json:"instId"`
	BaseCcy  string `json:"baseCcy"`
	SettleCcy string `json:"settleCcy"`
	CtType   string `json:"ctType"`
}

// FetchInstruments implements catalog.Fetcher.
func (f *Fetcher) FetchInstruments(ctx context.Context) ([]catalog.Instrument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("okx: build request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("okx: fetch instruments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("okx: fetch instruments: unexpected status %d", resp.StatusCode)
	}

	var body instrumentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("okx: decode instruments: %w", err)
	}

	out := make([]catalog.Instrument, 0, len(body.Data))
	for _, r := range body.Data {
		if r.CtType != "linear" || r.SettleCcy != "USDT" {
			continue
		}
		out = append(out, catalog.Instrument{VenueCode: r.InstID, Base: r.BaseCcy})
	}
	return out, nil
}
