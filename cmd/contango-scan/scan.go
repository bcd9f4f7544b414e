package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quotehedge/contango-scan/internal/config"
	"github.com/quotehedge/contango-scan/internal/evaluator"
	"github.com/quotehedge/contango-scan/internal/hedge"
	"github.com/quotehedge/contango-scan/internal/httpapi"
	"github.com/quotehedge/contango-scan/internal/metrics"
	"github.com/quotehedge/contango-scan/internal/rate"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Stream venues and print ranked contango opportunities",
		RunE:  runScan,
	}
	cmd.Flags().Float64("interval", 15, "seconds between evaluation ticks")
	cmd.Flags().Float64("min-pct", 0, "minimum spread percent for a row to be kept")
	cmd.Flags().Int("top", 10, "number of ranked rows to print per tick")
	cmd.Flags().Bool("once", false, "evaluate a single tick then exit")
	cmd.Flags().String("futures", "okx,gate,hyper", "comma list of futures venues (okx,gate,hyper)")
	cmd.Flags().Bool("no-upbit", false, "disable the Upbit spot stream")
	cmd.Flags().Bool("no-bithumb", false, "disable the Bithumb spot stream")
	cmd.Flags().Bool("serve", false, "also start the HTTP monitor server")
	cmd.Flags().String("addr", ":8090", "HTTP monitor server bind address, with --serve")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetFloat64("interval")
	minPct, _ := cmd.Flags().GetFloat64("min-pct")
	top, _ := cmd.Flags().GetInt("top")
	once, _ := cmd.Flags().GetBool("once")
	futuresCSV, _ := cmd.Flags().GetString("futures")
	noUpbit, _ := cmd.Flags().GetBool("no-upbit")
	noBithumb, _ := cmd.Flags().GetBool("no-bithumb")
	serve, _ := cmd.Flags().GetBool("serve")
	addr, _ := cmd.Flags().GetString("addr")

	if interval < 0.1 {
		return fmt.Errorf("contango-scan: --interval must be >= 0.1")
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("contango-scan: %w", err)
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

	reg := metrics.New()
	promReg := prometheus.NewRegistry()
	reg.MustRegister(promReg)

	spotRunning := startRunning(ctx, log.Logger, reg, spotFetchers)
	if len(spotRunning) == 0 {
		return fmt.Errorf("contango-scan: every spot venue's catalog load failed")
	}
	futuresRunning := startRunning(ctx, log.Logger, reg, futuresFetchers)
	if len(futuresRunning) == 0 {
		return fmt.Errorf("contango-scan: every futures venue's catalog load failed")
	}

	rateCache := rate.NewWithTTL(time.Duration(cfg.Venues.USDRateTTLSeconds) * time.Second)
	store := &opportunityStore{}
	startedAt := time.Now()

	var server *httpapi.Server
	if serve {
		all := append(append([]runningVenue{}, spotRunning...), futuresRunning...)
		state := httpapi.State{
			StartedAt:     startedAt,
			VenueHealth:   func() []httpapi.VenueHealth { return venueHealth(all, time.Now()) },
			Opportunities: store.Get,
			Positions:     func() []*hedge.Position { return nil },
		}
		server = httpapi.New(addr, state, promReg)
		go func() {
			if err := server.ListenAndServe(); err != nil {
				log.Error().Err(err).Msg("http monitor server stopped")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	ticker := time.NewTicker(time.Duration(interval * float64(time.Second)))
	defer ticker.Stop()

	for {
		now := time.Now()
		spots := spotOpportunityInputs(spotRunning, rateCache, log.Logger, now)
		futures := futuresOpportunityInputs(futuresRunning)
		rows := evaluator.Evaluate(spots, futures, evaluator.Params{MinSpreadPct: minPct}, now)

		reg.Opportunities.Add(float64(len(rows)))
		store.Set(rows)
		sampleQuoteAge(reg, spotRunning, now)
		sampleQuoteAge(reg, futuresRunning, now)

		printOpportunities(rows, top)

		if once {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
