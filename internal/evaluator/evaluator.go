// Package evaluator joins spot-USD price maps against futures venue quote
// snapshots and emits a ranked list of contango opportunities.
package evaluator

import (
	"sort"
	"time"

	"github.com/quotehedge/contango-scan/internal/quote"
)

// FuturesVenue is one perpetual-futures source participating in the join.
type FuturesVenue struct {
	Name     string
	FeePct   float64 // taker fee as a fraction, e.g. 0.0005 for 5bps
	Snapshot map[string]quote.Quote
	// Symbol maps canonical base to this venue's display symbol for the
	// Opportunity Row; absent entries fall back to the base itself.
	Symbol map[string]string
}

// SpotVenue is one KRW spot source participating in the join, already
// projected to USD by internal/project.
type SpotVenue struct {
	Name    string
	FeePct  float64
	USDBase map[string]float64 // canonical base -> usd price
}

// Opportunity is the ephemeral row produced per evaluated combination.
type Opportunity struct {
	Base           string
	SpotVenue      string
	FuturesVenue   string
	SpotPriceUSD   float64
	FuturesPriceUSD float64
	Spread         float64
	Pct            float64
	FeesPct        float64
	NetPct         float64
	FundingRate    float64
	FuturesSymbol  string
	AfterCostLowPct  float64 // net_pct minus a further 0.2pp buffer
	AfterCostHighPct float64 // net_pct minus a further 0.4pp buffer
}

// Params gates which combinations survive the join.
type Params struct {
	MinSpreadPct            float64
	RequireNonnegativeFunding bool
}

// Evaluate performs the cartesian join described in spec §4.F: every
// (spot venue, futures venue, base) triple where both sides carry a usable
// price is a candidate; each gate below can drop it before it becomes a row.
func Evaluate(spots []SpotVenue, futures []FuturesVenue, params Params, now time.Time) []Opportunity {
	var rows []Opportunity

	for _, sv := range spots {
		for _, fv := range futures {
			for base, sp := range sv.USDBase {
				if sp <= 0 {
					continue
				}
				fq, ok := fv.Snapshot[base]
				if !ok || !fq.HasBid || fq.Bid <= 0 {
					continue
				}
				fp := fq.Bid

				spread := fp - sp
				if spread <= 0 {
					continue
				}
				pct := 100 * spread / sp
				if pct < params.MinSpreadPct {
					continue
				}
				if !fq.HasFunding {
					continue
				}
				funding := fq.FundingRate
				if params.RequireNonnegativeFunding && funding < 0 {
					continue
				}

				totalFeePct := (2*sv.FeePct + 2*fv.FeePct) * 100
				netPct := pct - totalFeePct

				symbol := base
				if s, ok := fv.Symbol[base]; ok && s != "" {
					symbol = s
				}

				rows = append(rows, Opportunity{
					Base:             base,
					SpotVenue:        sv.Name,
					FuturesVenue:     fv.Name,
					SpotPriceUSD:     sp,
					FuturesPriceUSD:  fp,
					Spread:           spread,
					Pct:              pct,
					FeesPct:          totalFeePct,
					NetPct:           netPct,
					FundingRate:      funding,
					FuturesSymbol:    symbol,
					AfterCostLowPct:  netPct - 0.2,
					AfterCostHighPct: netPct - 0.4,
				})
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Pct > rows[j].Pct
	})

	return rows
}
