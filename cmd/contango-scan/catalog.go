package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quotehedge/contango-scan/internal/breaker"
	"github.com/quotehedge/contango-scan/internal/catalog"
	"github.com/quotehedge/contango-scan/internal/config"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Resolve and print the tradable instrument count per venue",
		Long: `Runs the REST catalog load for every compiled-in venue (or a single
venue via --venue) and prints the resolved instrument count. Diagnostic
only — scan and trade load their own catalogs internally at startup.`,
		RunE: runCatalog,
	}
	cmd.Flags().String("venue", "", "limit to a single venue id (upbit, bithumb, okx, gate, hyperliquid); empty runs all")
	return cmd
}

func runCatalog(cmd *cobra.Command, args []string) error {
	only, _ := cmd.Flags().GetString("venue")

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("contango-scan: %w", err)
	}

	fetchers := append(spotFetchersFor(false, false, cfg.Venues), mustAllFuturesFetchers(cfg.Venues)...)
	if only != "" {
		filtered := fetchers[:0]
		for _, vf := range fetchers {
			if vf.id == only {
				filtered = append(filtered, vf)
			}
		}
		fetchers = filtered
		if len(fetchers) == 0 {
			return fmt.Errorf("contango-scan: unknown venue %q", only)
		}
	}

	ctx := context.Background()
	loader := catalog.NewLoader(len(fetchers))
	loads := make([]catalog.VenueLoad, len(fetchers))
	for i, vf := range fetchers {
		loads[i] = catalog.VenueLoad{Venue: vf.id, Breaker: breaker.New(vf.id + "-catalog-diag"), Fetcher: vf.fetcher}
	}
	results := loader.LoadAll(ctx, loads)

	for _, res := range results {
		if res.Err != nil {
			log.Error().Err(res.Err).Str("venue", res.Venue).Msg("catalog load failed")
			fmt.Printf("%-12s ERROR: %v\n", res.Venue, res.Err)
			continue
		}
		fmt.Printf("%-12s %d instruments\n", res.Venue, len(res.Instruments))
	}
	return nil
}

// mustAllFuturesFetchers resolves every compiled-in futures venue; it never
// errors because "okx,gate,hyper" are the registry's own known tokens.
func mustAllFuturesFetchers(cfg config.VenuesConfig) []venueFetcher {
	out, err := futuresFetchersFor("okx,gate,hyper", cfg)
	if err != nil {
		panic(err)
	}
	return out
}
