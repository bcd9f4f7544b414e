package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
venues:
  usd_rate_ttl_seconds: 45
trader:
  interval_seconds: 10
  entry_threshold_pct: 1.5
  exit_threshold_pct: 0.3
  tranche_usd: 100
  max_per_leg_usd: 5000
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Venues.USDRateTTLSeconds)
	assert.Equal(t, 1.5, cfg.Trader.EntryThresholdPct)
	assert.Equal(t, 5000.0, cfg.Trader.MaxPerLegUSD)
}

func TestValidate_RejectsNonPositiveTranche(t *testing.T) {
	cfg := Default()
	cfg.Trader.TrancheUSD = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsSubMinimumInterval(t *testing.T) {
	cfg := Default()
	cfg.Trader.IntervalSeconds = 0.01
	assert.Error(t, cfg.Validate())
}
