// Command contango-scan streams KRW spot and USDT-perp futures quotes,
// ranks cross-venue contango opportunities, and optionally drives a
// delta-neutral auto-trader against them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "contango-scan"
	version = "v0.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Cross-venue KRW/USDT contango scanner and auto-trader",
		Version: version,
		Long: `contango-scan streams Upbit/Bithumb KRW order books alongside OKX/Gate/
Hyperliquid USDT-perp futures, converts KRW spot prices to USD via each
venue's own USDT/KRW ticker, and ranks the resulting spot/futures spreads.
The trade subcommand additionally opens and unwinds delta-neutral hedge
tranches against the ranked opportunities.`,
	}
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().String("config", "config.yaml", "path to config.yaml (optional; compiled-in defaults apply if absent)")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newTradeCmd())
	rootCmd.AddCommand(newCatalogCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("contango-scan exited with error")
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, the shared
// clean-shutdown seam for scan/trade's long-running loops.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
