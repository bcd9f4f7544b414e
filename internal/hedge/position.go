// Package hedge implements the per-triple FIFO tranche ledger: opening and
// unwinding delta-neutral (short futures + long spot) exposure in fixed USD
// slices, with realized-PnL accounting on partial unwind.
package hedge

import (
	"fmt"
	"time"
)

// MaxPerLegUSD is the per-position notional cap enforced by record_entry.
const MaxPerLegUSD = 2000.0

// zeroEpsilon is the tolerance used for all notional/PnL zero-detection
// (spec §3 lifecycle rule, §8 invariant). It is not a generic float
// tolerance — only zero-crossing checks use it.
const zeroEpsilon = 1e-9

// Key identifies a position by its triple of (spot venue, futures venue,
// canonical base).
type Key struct {
	SpotVenue    string
	FuturesVenue string
	Base         string
}

// Tranche is one fixed-USD slice opened at a point in time.
type Tranche struct {
	USD               float64
	EntryFuturesPrice float64
	EntrySpotPrice    float64
	Timestamp         time.Time
}

// Position is the live ledger for one (spot, futures, base) triple.
type Position struct {
	Key         Key
	NotionalUSD float64
	Tranches    []Tranche
}

// RemainingCapacity is MaxPerLegUSD minus the current notional, floored at 0.
func (p *Position) RemainingCapacity() float64 {
	rem := MaxPerLegUSD - p.NotionalUSD
	if rem < 0 {
		return 0
	}
	return rem
}

// EntryInput carries the prices a new tranche is opened at.
type EntryInput struct {
	FuturesPrice float64
	SpotPrice    float64
	Timestamp    time.Time
}

// RecordEntry clamps usdRequest to the remaining per-leg capacity, appends a
// tranche for the clamped amount, and returns how much was actually added.
// A non-positive remaining capacity is a no-op returning 0.
func (p *Position) RecordEntry(usdRequest float64, in EntryInput) float64 {
	remaining := p.RemainingCapacity()
	if remaining <= 0 || usdRequest <= 0 {
		return 0
	}

	added := usdRequest
	if added > remaining {
		added = remaining
	}

	p.Tranches = append(p.Tranches, Tranche{
		USD:               added,
		EntryFuturesPrice: in.FuturesPrice,
		EntrySpotPrice:    in.SpotPrice,
		Timestamp:         in.Timestamp,
	})
	p.NotionalUSD += added

	p.assertInvariant()
	return added
}

// ExitInput carries the prices the unwind is marked against.
type ExitInput struct {
	FuturesPrice float64
	SpotPrice    float64
}

// ExitPortion describes the realized result of consuming one tranche (or
// part of one) during an unwind.
type ExitPortion struct {
	USD               float64
	Qty               float64
	EntryFuturesPrice float64
	EntrySpotPrice    float64
	RealizedPnL       float64
}

// RecordExit clamps usdRequest to the live notional and walks tranches FIFO,
// consuming min(remaining request, tranche.USD) from each until the request
// is satisfied or tranches are exhausted. Returns the USD actually closed,
// the total realized PnL, and a per-portion breakdown.
func (p *Position) RecordExit(usdRequest float64, out ExitInput) (closedUSD float64, realizedPnL float64, portions []ExitPortion) {
	remaining := usdRequest
	if remaining > p.NotionalUSD {
		remaining = p.NotionalUSD
	}
	if remaining <= 0 {
		return 0, 0, nil
	}

	kept := p.Tranches[:0:0]
	for _, tr := range p.Tranches {
		if remaining <= 0 {
			kept = append(kept, tr)
			continue
		}

		portionUSD := tr.USD
		if portionUSD > remaining {
			portionUSD = remaining
		}

		qty := portionUSD / tr.EntryFuturesPrice
		pnl := qty * ((tr.EntryFuturesPrice - out.FuturesPrice) + (out.SpotPrice - tr.EntrySpotPrice))

		portions = append(portions, ExitPortion{
			USD:               portionUSD,
			Qty:               qty,
			EntryFuturesPrice: tr.EntryFuturesPrice,
			EntrySpotPrice:    tr.EntrySpotPrice,
			RealizedPnL:       pnl,
		})

		closedUSD += portionUSD
		realizedPnL += pnl
		remaining -= portionUSD

		leftover := tr.USD - portionUSD
		if leftover > zeroEpsilon {
			tr.USD = leftover
			kept = append(kept, tr)
		}
	}
	p.Tranches = kept
	p.NotionalUSD -= closedUSD

	p.assertInvariant()
	return closedUSD, realizedPnL, portions
}

// IsZero reports whether the position's notional has collapsed to within
// zeroEpsilon of zero, making it eligible for removal from the position set.
func (p *Position) IsZero() bool {
	return p.NotionalUSD <= zeroEpsilon
}

// assertInvariant panics if the sum of tranche USD diverges from the
// tracked notional by more than zeroEpsilon — this would indicate a bug in
// RecordEntry/RecordExit's bookkeeping, not a recoverable runtime condition.
func (p *Position) assertInvariant() {
	sum := 0.0
	for _, tr := range p.Tranches {
		sum += tr.USD
	}
	diff := p.NotionalUSD - sum
	if diff < 0 {
		diff = -diff
	}
	if diff > zeroEpsilon {
		panic(fmt.Sprintf("hedge: notional/tranche sum diverged: notional=%v sum=%v diff=%v", p.NotionalUSD, sum, diff))
	}
	if p.NotionalUSD < -zeroEpsilon || p.NotionalUSD > MaxPerLegUSD+zeroEpsilon {
		panic(fmt.Sprintf("hedge: notional out of bounds: %v", p.NotionalUSD))
	}
}
