package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quotehedge/contango-scan/internal/catalog"
)

// ContractsURL is Gate.io's public USDT-settled perpetual contract list.
const ContractsURL = "https://api.gateio.ws/api/v4/futures/usdt/contracts"

// Fetcher implements catalog.Fetcher against Gate's REST API.
type Fetcher struct {
	http *http.Client
	url  string
}

// NewFetcher builds a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{http: &http.Client{Timeout: 10 * time.Second}, url: ContractsURL}
}

type contractEntry struct {
	Name string `json:"name"`
}

// FetchInstruments implements catalog.Fetcher. The contract's own "name"
// field is both the venue code and the source of its base symbol — Gate's
// USDT-settled perpetual names are always "<BASE>_USDT".
func (f *Fetcher) FetchInstruments(ctx context.Context) ([]catalog.Instrument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("gate: build request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gate: fetch contracts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gate: fetch contracts: unexpected status %d", resp.StatusCode)
	}

	var entries []contractEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("gate: decode contracts: %w", err)
	}

	out := make([]catalog.Instrument, 0, len(entries))
	for _, e := range entries {
		if !strings.HasSuffix(e.Name, "_USDT") {
			continue
		}
		base := strings.TrimSuffix(e.Name, "_USDT")
		out = append(out, catalog.Instrument{VenueCode: e.Name, Base: base})
	}
	return out, nil
}
