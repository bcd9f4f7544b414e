// Package config loads the scanner's YAML configuration: venue wire
// parameters and trader thresholds. The file is optional — every field has
// a compiled-in default matching the Python original's module-level
// constants, so the scanner runs unconfigured out of the box.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VenueConfig overrides one venue's fee/URL/chunk parameters.
type VenueConfig struct {
	TakerFee  float64 `yaml:"taker_fee"`
	WSURL     string  `yaml:"ws_url"`
	ChunkSize int     `yaml:"chunk_size"`
}

// VenuesConfig is the venue section of config.yaml.
type VenuesConfig struct {
	USDRateTTLSeconds int                    `yaml:"usd_rate_ttl_seconds"`
	Overrides         map[string]VenueConfig `yaml:"overrides"`
}

// TraderConfig is the auto-trader section of config.yaml.
type TraderConfig struct {
	IntervalSeconds   float64 `yaml:"interval_seconds"`
	EntryThresholdPct float64 `yaml:"entry_threshold_pct"`
	ExitThresholdPct  float64 `yaml:"exit_threshold_pct"`
	TrancheUSD        float64 `yaml:"tranche_usd"`
	MaxPerLegUSD       float64 `yaml:"max_per_leg_usd"`
}

// Config is the top-level document.
type Config struct {
	Venues VenuesConfig `yaml:"venues"`
	Trader TraderConfig `yaml:"trader"`
}

// Default matches the Python original's constants
// (USD_RATE_TTL=30s, TRANCHE_USD=50, MAX_PER_LEG_USD=2000).
func Default() Config {
	return Config{
		Venues: VenuesConfig{
			USDRateTTLSeconds: 30,
			Overrides:         map[string]VenueConfig{},
		},
		Trader: TraderConfig{
			IntervalSeconds:   15,
			EntryThresholdPct: 1.0,
			ExitThresholdPct:  0.2,
			TrancheUSD:        50,
			MaxPerLegUSD:      2000,
		},
	}
}

// Load reads path, falling back to Default() if the file does not exist.
// A present-but-malformed file is always an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces non-negative thresholds, positive tranche/cap sizes and
// TTL, and non-negative override chunk sizes and fees (a zero override field
// keeps the compiled-in value).
func (c Config) Validate() error {
	if c.Trader.EntryThresholdPct < 0 {
		return fmt.Errorf("config: trader.entry_threshold_pct must be >= 0")
	}
	if c.Trader.ExitThresholdPct < 0 {
		return fmt.Errorf("config: trader.exit_threshold_pct must be >= 0")
	}
	if c.Trader.IntervalSeconds < 0.1 {
		return fmt.Errorf("config: trader.interval_seconds must be >= 0.1")
	}
	if c.Trader.TrancheUSD <= 0 {
		return fmt.Errorf("config: trader.tranche_usd must be positive")
	}
	if c.Trader.MaxPerLegUSD <= 0 {
		return fmt.Errorf("config: trader.max_per_leg_usd must be positive")
	}
	if c.Venues.USDRateTTLSeconds <= 0 {
		return fmt.Errorf("config: venues.usd_rate_ttl_seconds must be positive")
	}
	for id, v := range c.Venues.Overrides {
		if v.ChunkSize < 0 {
			return fmt.Errorf("config: venues.overrides[%s].chunk_size must be >= 0", id)
		}
		if v.TakerFee < 0 {
			return fmt.Errorf("config: venues.overrides[%s].taker_fee must be >= 0", id)
		}
	}
	return nil
}
