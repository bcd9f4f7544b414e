// Package executor defines the pluggable order-placement boundary the
// auto-trader drives per tranche, with a dry-run implementation and a
// credential-gated live implementation.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Side is the direction of a market order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ErrMissingCredentials is returned by NewLive when a venue's required
// environment variables are not set. It is fatal: no order is attempted.
var ErrMissingCredentials = errors.New("executor: missing credentials")

// Confirmation is the result of placing one order.
type Confirmation struct {
	Venue  string
	Symbol string
	Side   Side
	Qty    float64
	Mode   string // "DRY_RUN" or "LIVE"
	OrderID string
}

// OrderExecutor places a single market order for one leg of a tranche.
type OrderExecutor interface {
	Place(ctx context.Context, venue, symbol string, side Side, qty float64) (Confirmation, error)
}

// DryRun never sends a real order; it returns a synthetic confirmation.
// This is the default executor unless --live is passed.
type DryRun struct{}

// NewDryRun returns the dry-run executor.
func NewDryRun() *DryRun { return &DryRun{} }

// Place implements OrderExecutor by suppressing all side effects.
func (DryRun) Place(_ context.Context, venue, symbol string, side Side, qty float64) (Confirmation, error) {
	return Confirmation{Venue: venue, Symbol: symbol, Side: side, Qty: qty, Mode: "DRY_RUN"}, nil
}

// Credentials is one venue's live trading credential set, sourced from
// environment variables named <VENUE>_API_KEY / _API_SECRET / _API_PASSWORD.
type Credentials struct {
	APIKey      string
	APISecret   string
	APIPassword string // optional; not every venue requires one
}

// LiveDialer places one market order on a venue given its credentials.
// Concrete venue clients implement this; it is the seam a real exchange SDK
// (e.g. a ccxt-equivalent REST client) would plug into.
type LiveDialer interface {
	Place(ctx context.Context, creds Credentials, symbol string, side Side, qty float64) (orderID string, err error)
}

// Live is the credential-gated OrderExecutor used when --live is passed.
type Live struct {
	creds   map[string]Credentials
	dialers map[string]LiveDialer
}

// NewLive reads <VENUE>_API_KEY/_API_SECRET/_API_PASSWORD for every venue in
// venues, failing fast with ErrMissingCredentials if any required variable
// is absent (spec §4.I, §6, §7 — credential failure is fatal before any
// order is attempted).
func NewLive(venues []string, dialers map[string]LiveDialer) (*Live, error) {
	creds := make(map[string]Credentials, len(venues))
	for _, v := range venues {
		key := os.Getenv(envName(v, "API_KEY"))
		secret := os.Getenv(envName(v, "API_SECRET"))
		if key == "" || secret == "" {
			return nil, fmt.Errorf("%w: %s requires %s and %s", ErrMissingCredentials, v, envName(v, "API_KEY"), envName(v, "API_SECRET"))
		}
		creds[v] = Credentials{
			APIKey:      key,
			APISecret:   secret,
			APIPassword: os.Getenv(envName(v, "API_PASSWORD")),
		}
	}
	return &Live{creds: creds, dialers: dialers}, nil
}

func envName(venue, suffix string) string {
	return fmt.Sprintf("%s_%s", venueEnvPrefix(venue), suffix)
}

func venueEnvPrefix(venue string) string {
	out := make([]byte, len(venue))
	for i := 0; i < len(venue); i++ {
		c := venue[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// Place dispatches to the venue's registered LiveDialer using its resolved
// credentials.
func (l *Live) Place(ctx context.Context, venue, symbol string, side Side, qty float64) (Confirmation, error) {
	creds, ok := l.creds[venue]
	if !ok {
		return Confirmation{}, fmt.Errorf("%w: %s not configured", ErrMissingCredentials, venue)
	}
	dialer, ok := l.dialers[venue]
	if !ok {
		return Confirmation{}, fmt.Errorf("executor: no live dialer registered for venue %s", venue)
	}
	orderID, err := dialer.Place(ctx, creds, symbol, side, qty)
	if err != nil {
		return Confirmation{}, fmt.Errorf("executor: %s place failed: %w", venue, err)
	}
	return Confirmation{Venue: venue, Symbol: symbol, Side: side, Qty: qty, Mode: "LIVE", OrderID: orderID}, nil
}
