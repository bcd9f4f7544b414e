// Package autotrader drives the periodic entry/exit loop: select the best
// eligible opportunity, open or unwind hedge tranches against it, invoke the
// order executor, and append trade-event log records.
package autotrader

import (
	"context"
	"time"

	"github.com/quotehedge/contango-scan/internal/evaluator"
	"github.com/quotehedge/contango-scan/internal/executor"
	"github.com/quotehedge/contango-scan/internal/hedge"
	"github.com/quotehedge/contango-scan/internal/tradelog"
)

// TrancheUSD is the fixed USD slice opened or closed per cycle, matching the
// Python original's TRANCHE_USD constant.
const TrancheUSD = 50.0

// Config gates entry/exit decisions.
type Config struct {
	EntryThresholdPct float64
	ExitThresholdPct  float64
}

// Loop owns the position book and wires the evaluator's opportunity feed to
// hedge entries/exits and the executor/trade log.
type Loop struct {
	Book     *hedge.Book
	Executor executor.OrderExecutor
	Sink     tradelog.EventSink
	Config   Config
}

// New builds a Loop with a fresh, empty position book.
func New(exec executor.OrderExecutor, sink tradelog.EventSink, cfg Config) *Loop {
	return &Loop{Book: hedge.NewBook(), Executor: exec, Sink: sink, Config: cfg}
}

// pickBest selects the single best row eligible for entry: pct at or above
// the entry threshold and a non-negative funding rate (spec §4.H step 2,
// §8 scenario 6). Rows are assumed already sorted descending by pct.
func pickBest(rows []evaluator.Opportunity, entryThresholdPct float64) (evaluator.Opportunity, bool) {
	for _, r := range rows {
		if r.Pct >= entryThresholdPct && r.FundingRate >= 0 {
			return r, true
		}
	}
	return evaluator.Opportunity{}, false
}

// RunOnce performs one evaluation cycle: entry logic against rows, then
// exit logic against every live position. rows must come from the
// evaluator with min_spread_pct = 0 (spec §4.H step 1).
func (l *Loop) RunOnce(ctx context.Context, rows []evaluator.Opportunity) {
	l.tryEntry(ctx, rows)
	l.tryExits(ctx, rows)
	l.Book.Prune()
}

func (l *Loop) tryEntry(ctx context.Context, rows []evaluator.Opportunity) {
	best, ok := pickBest(rows, l.Config.EntryThresholdPct)
	if !ok {
		return
	}

	key := hedge.Key{SpotVenue: best.SpotVenue, FuturesVenue: best.FuturesVenue, Base: best.Base}
	pos := l.Book.GetOrCreate(key)

	requested := TrancheUSD
	if cap := pos.RemainingCapacity(); cap < requested {
		requested = cap
	}
	if requested <= 0 {
		return
	}

	// Ordering of legs on entry: short futures first, then long spot.
	futConf, futErr := l.Executor.Place(ctx, best.FuturesVenue, best.FuturesSymbol, executor.Sell, requested/best.FuturesPriceUSD)
	var spotConf executor.Confirmation
	var spotErr error
	if futErr == nil {
		spotConf, spotErr = l.Executor.Place(ctx, best.SpotVenue, best.Base, executor.Buy, requested/best.SpotPriceUSD)
	}

	added := pos.RecordEntry(requested, hedge.EntryInput{
		FuturesPrice: best.FuturesPriceUSD,
		SpotPrice:    best.SpotPriceUSD,
		Timestamp:    time.Now(),
	})

	event := tradelog.Event{
		Event:           "entry",
		Timestamp:       time.Now(),
		Base:            best.Base,
		SpotExchange:    best.SpotVenue,
		FuturesExchange: best.FuturesVenue,
		USD:             added,
		SpreadPct:       best.Pct,
		NetPct:          best.NetPct,
		FundingRate:     best.FundingRate,
		Execution:       execSummary(futConf, spotConf, futErr, spotErr),
	}
	_ = l.Sink.Publish(ctx, event)
}

func (l *Loop) tryExits(ctx context.Context, rows []evaluator.Opportunity) {
	byKey := make(map[hedge.Key]evaluator.Opportunity, len(rows))
	for _, r := range rows {
		byKey[hedge.Key{SpotVenue: r.SpotVenue, FuturesVenue: r.FuturesVenue, Base: r.Base}] = r
	}

	for _, pos := range l.Book.All() {
		row, ok := byKey[pos.Key]
		if !ok {
			continue
		}
		if row.Pct > l.Config.ExitThresholdPct || pos.NotionalUSD <= 0 {
			continue
		}

		requested := TrancheUSD
		if requested > pos.NotionalUSD {
			requested = pos.NotionalUSD
		}

		// Ordering of legs on exit: cover futures first, then sell spot.
		futConf, futErr := l.Executor.Place(ctx, pos.Key.FuturesVenue, row.FuturesSymbol, executor.Buy, requested/row.FuturesPriceUSD)
		var spotConf executor.Confirmation
		var spotErr error
		if futErr == nil {
			spotConf, spotErr = l.Executor.Place(ctx, pos.Key.SpotVenue, pos.Key.Base, executor.Sell, requested/row.SpotPriceUSD)
		}

		closed, pnl, portions := pos.RecordExit(requested, hedge.ExitInput{
			FuturesPrice: row.FuturesPriceUSD,
			SpotPrice:    row.SpotPriceUSD,
		})

		event := tradelog.Event{
			Event:           "exit",
			Timestamp:       time.Now(),
			Base:            pos.Key.Base,
			SpotExchange:    pos.Key.SpotVenue,
			FuturesExchange: pos.Key.FuturesVenue,
			USD:             closed,
			SpreadPct:       row.Pct,
			NetPct:          row.NetPct,
			FundingRate:     row.FundingRate,
			PnLUSD:          &pnl,
			Portions:        toLogPortions(portions),
			Execution:       execSummary(futConf, spotConf, futErr, spotErr),
		}
		_ = l.Sink.Publish(ctx, event)
	}
}

func toLogPortions(portions []hedge.ExitPortion) []tradelog.Portion {
	out := make([]tradelog.Portion, len(portions))
	for i, p := range portions {
		out[i] = tradelog.Portion{USD: p.USD, Qty: p.Qty, RealizedPnL: p.RealizedPnL}
	}
	return out
}

func execSummary(futConf, spotConf executor.Confirmation, futErr, spotErr error) tradelog.Execution {
	e := tradelog.Execution{Mode: futConf.Mode}
	if e.Mode == "" {
		e.Mode = spotConf.Mode
	}
	e.FuturesID = futConf.OrderID
	e.SpotID = spotConf.OrderID
	switch {
	case futErr != nil:
		e.Error = futErr.Error()
	case spotErr != nil:
		e.Error = spotErr.Error()
	}
	return e
}
