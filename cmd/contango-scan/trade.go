package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quotehedge/contango-scan/internal/autotrader"
	"github.com/quotehedge/contango-scan/internal/config"
	"github.com/quotehedge/contango-scan/internal/evaluator"
	"github.com/quotehedge/contango-scan/internal/executor"
	"github.com/quotehedge/contango-scan/internal/hedge"
	"github.com/quotehedge/contango-scan/internal/metrics"
	"github.com/quotehedge/contango-scan/internal/rate"
	"github.com/quotehedge/contango-scan/internal/tradelog"
)

func newTradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Run the auto-trader loop: open and unwind hedge tranches",
		RunE:  runTrade,
	}
	cmd.Flags().Float64("interval", 15, "seconds between trade-decision ticks")
	cmd.Flags().Float64("entry-threshold", 1.0, "minimum spread percent to open a tranche")
	cmd.Flags().Float64("exit-threshold", 0.2, "spread percent at or below which a position unwinds")
	cmd.Flags().Bool("live", false, "send real orders (requires <VENUE>_API_KEY/_API_SECRET env vars)")
	cmd.Flags().String("futures", "okx,gate,hyper", "comma list of futures venues (okx,gate,hyper)")
	cmd.Flags().Bool("no-upbit", false, "disable the Upbit spot stream")
	cmd.Flags().Bool("no-bithumb", false, "disable the Bithumb spot stream")
	cmd.Flags().String("log-path", "trade_cycles.jsonl", "append-only trade-event log path")
	return cmd
}

func runTrade(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetFloat64("interval")
	entryThreshold, _ := cmd.Flags().GetFloat64("entry-threshold")
	exitThreshold, _ := cmd.Flags().GetFloat64("exit-threshold")
	live, _ := cmd.Flags().GetBool("live")
	futuresCSV, _ := cmd.Flags().GetString("futures")
	noUpbit, _ := cmd.Flags().GetBool("no-upbit")
	noBithumb, _ := cmd.Flags().GetBool("no-bithumb")
	logPath, _ := cmd.Flags().GetString("log-path")

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("contango-scan: %w", err)
	}
	if !cmd.Flags().Changed("interval") {
		interval = cfg.Trader.IntervalSeconds
	}
	if !cmd.Flags().Changed("entry-threshold") {
		entryThreshold = cfg.Trader.EntryThresholdPct
	}
	if !cmd.Flags().Changed("exit-threshold") {
		exitThreshold = cfg.Trader.ExitThresholdPct
	}

	if interval < 0.1 {
		return fmt.Errorf("contango-scan: --interval must be >= 0.1")
	}

	ctx, cancel := signalContext()
	defer cancel()

	spotFetchers := spotFetchersFor(noUpbit, noBithumb, cfg.Venues)
	if len(spotFetchers) == 0 {
		return fmt.Errorf("contango-scan: no spot venues enabled (check --no-upbit/--no-bithumb)")
	}
	futuresFetchers, err := futuresFetchersFor(futuresCSV, cfg.Venues)
	if err != nil {
		return err
	}
	if len(futuresFetchers) == 0 {
		return fmt.Errorf("contango-scan: --futures resolved to zero venues")
	}

	venueIDs := make([]string, 0, len(spotFetchers)+len(futuresFetchers))
	for _, vf := range spotFetchers {
		venueIDs = append(venueIDs, vf.id)
	}
	for _, vf := range futuresFetchers {
		venueIDs = append(venueIDs, vf.id)
	}

	var exec executor.OrderExecutor
	if live {
		liveExec, err := executor.NewLive(venueIDs, liveDialers(venueIDs))
		if err != nil {
			return fmt.Errorf("contango-scan: %w", err)
		}
		exec = liveExec
		log.Warn().Msg("live trading enabled: orders will be attempted against real venue credentials")
	} else {
		exec = executor.NewDryRun()
	}

	fileSink, err := tradelog.NewFileEventSink(logPath)
	if err != nil {
		return fmt.Errorf("contango-scan: %w", err)
	}
	defer fileSink.Close()

	reg := metrics.New()
	promReg := prometheus.NewRegistry()
	reg.MustRegister(promReg)

	sink := metricsSink{inner: fileSink, reg: reg}

	spotRunning := startRunning(ctx, log.Logger, reg, spotFetchers)
	if len(spotRunning) == 0 {
		return fmt.Errorf("contango-scan: every spot venue's catalog load failed")
	}
	futuresRunning := startRunning(ctx, log.Logger, reg, futuresFetchers)
	if len(futuresRunning) == 0 {
		return fmt.Errorf("contango-scan: every futures venue's catalog load failed")
	}

	loop := autotrader.New(exec, sink, autotrader.Config{
		EntryThresholdPct: entryThreshold,
		ExitThresholdPct:  exitThreshold,
	})

	snapStore := openSnapshotStore(ctx)
	if snapStore != nil {
		if restored, err := snapStore.Restore(ctx); err != nil {
			log.Error().Err(err).Msg("hedge snapshot restore failed, starting with an empty book")
		} else if positions := restored.All(); len(positions) > 0 {
			loop.Book = restored
			log.Info().Int("positions", len(positions)).Msg("restored hedge positions from snapshot store")
		}
	}

	rateCache := rate.NewWithTTL(time.Duration(cfg.Venues.USDRateTTLSeconds) * time.Second)
	ticker := time.NewTicker(time.Duration(interval * float64(time.Second)))
	defer ticker.Stop()

	for {
		now := time.Now()
		spots := spotOpportunityInputs(spotRunning, rateCache, log.Logger, now)
		futures := futuresOpportunityInputs(futuresRunning)
		rows := evaluator.Evaluate(spots, futures, evaluator.Params{MinSpreadPct: 0}, now)

		reg.Opportunities.Add(float64(len(rows)))
		sampleQuoteAge(reg, spotRunning, now)
		sampleQuoteAge(reg, futuresRunning, now)

		runCycle(ctx, loop, rows, snapStore, reg)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runCycle drives one RunOnce and mirrors every touched position (including
// ones that just pruned to zero) to the optional snapshot store.
func runCycle(ctx context.Context, loop *autotrader.Loop, rows []evaluator.Opportunity, snapStore *hedge.SnapshotStore, reg *metrics.Registry) {
	before := loop.Book.All()
	beforeKeys := make(map[hedge.Key]bool, len(before))
	for _, p := range before {
		beforeKeys[p.Key] = true
	}

	loop.RunOnce(ctx, rows)

	after := loop.Book.All()
	afterKeys := make(map[hedge.Key]bool, len(after))
	for _, p := range after {
		afterKeys[p.Key] = true
		reg.HedgeNotional.WithLabelValues(p.Key.SpotVenue, p.Key.FuturesVenue, p.Key.Base).Set(p.NotionalUSD)
		if snapStore != nil {
			if err := snapStore.Write(ctx, p); err != nil {
				log.Warn().Err(err).Msg("hedge snapshot write failed")
			}
		}
	}
	if snapStore == nil {
		return
	}
	for k := range beforeKeys {
		if afterKeys[k] {
			continue
		}
		reg.HedgeNotional.WithLabelValues(k.SpotVenue, k.FuturesVenue, k.Base).Set(0)
		if err := snapStore.Write(ctx, &hedge.Position{Key: k}); err != nil {
			log.Warn().Err(err).Msg("hedge snapshot delete failed")
		}
	}
}

// openSnapshotStore builds a Redis-backed SnapshotStore when REDIS_ADDR is
// set, or returns nil for an in-memory-only run (spec §4.Q: optional,
// best-effort).
func openSnapshotStore(ctx context.Context) *hedge.SnapshotStore {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	client := hedge.NewClient(addr, os.Getenv("REDIS_PASSWORD"), 0)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis unreachable, running without position snapshotting")
		return nil
	}
	return hedge.NewSnapshotStore(client)
}
