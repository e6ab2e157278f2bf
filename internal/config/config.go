// Package config loads the service's YAML configuration, following the
// teacher's read-file-then-unmarshal-then-validate shape from
// internal/config/providers.go.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration recognized by the service (spec §6).
type Config struct {
	DailyLimit   int     `yaml:"daily_limit"`
	SafetyMargin float64 `yaml:"safety_margin"`
	WarmEvery    int     `yaml:"warm_every"`
	ColdEvery    int     `yaml:"cold_every"`

	Scanner ScannerConfig `yaml:"scanner"`
	Journal JournalConfig `yaml:"journal"`

	Upstream UpstreamConfig `yaml:"upstream"`

	Watchlist string `yaml:"watchlist"` // comma-separated tickers
	Timeframe string `yaml:"timeframe"` // OHLC timeframe requested per cycle, e.g. "D"

	Broadcast BroadcastConfig `yaml:"broadcast"`
	Cache     CacheConfig     `yaml:"cache"`

	DataDir string `yaml:"data_dir"`

	LogLevel string `yaml:"log_level"`
}

// BroadcastConfig tunes internal/broadcast's Server (spec §4.J, §6).
type BroadcastConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CacheConfig configures the optional Redis-backed read cache fronting
// /snapshot. Addr left empty disables the cache entirely.
type CacheConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ScannerConfig tunes internal/scanner (spec §4.H, §6).
type ScannerConfig struct {
	MinConfidence int `yaml:"min_confidence"`
	MaxCandidates int `yaml:"max_candidates"`
	CooldownMs    int `yaml:"cooldown_ms"`
}

// JournalConfig tunes internal/journal (spec §4.I, §6).
type JournalConfig struct {
	CooldownMs     int     `yaml:"cooldown_ms"`
	MaxPerTicker   int     `yaml:"max_per_ticker"`
	VersionBudget  float64 `yaml:"version_budget"`
	AccountBudget  float64 `yaml:"account_budget"`
	ActiveVersion  string  `yaml:"active_version"`
}

// UpstreamConfig configures the two vendor clients (spec §4.A, §6).
type UpstreamConfig struct {
	FlowVendor VendorConfig `yaml:"flow_vendor"`
	TickVendor VendorConfig `yaml:"tick_vendor"`
}

// VendorConfig is one vendor's connection and rate-limit parameters.
type VendorConfig struct {
	BaseURL           string `yaml:"base_url"`
	BearerToken       string `yaml:"bearer_token"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	WSURL             string `yaml:"ws_url"`
}

// Defaults matches the spec §6 "Configuration" table defaults exactly.
func Defaults() Config {
	return Config{
		DailyLimit:   15000,
		SafetyMargin: 0.90,
		WarmEvery:    5,
		ColdEvery:    15,
		Scanner: ScannerConfig{
			MinConfidence: 40,
			MaxCandidates: 5,
			CooldownMs:    1_800_000,
		},
		Journal: JournalConfig{
			CooldownMs:    7_200_000,
			MaxPerTicker:  3,
			VersionBudget: 25_000,
			AccountBudget: 100_000,
			ActiveVersion: "v1.0",
		},
		Upstream: UpstreamConfig{
			FlowVendor: VendorConfig{RequestsPerMinute: 100},
			TickVendor: VendorConfig{RequestsPerMinute: 100},
		},
		Timeframe: "D",
		Broadcast: BroadcastConfig{Host: "127.0.0.1", Port: 8090},
		DataDir:   "data",
		LogLevel:  "info",
	}
}

// Tickers splits Watchlist on commas, trimming whitespace and dropping empty
// entries.
func (c *Config) Tickers() []string {
	var out []string
	for _, t := range strings.Split(c.Watchlist, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Load reads and validates a YAML config file, applying Defaults() for any
// field the file omits; a field the file sets, even to zero, overrides its
// default.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate ensures the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.DailyLimit <= 0 {
		return fmt.Errorf("daily_limit must be positive, got %d", c.DailyLimit)
	}
	if c.SafetyMargin <= 0 || c.SafetyMargin > 1 {
		return fmt.Errorf("safety_margin must be in (0,1], got %f", c.SafetyMargin)
	}
	if c.WarmEvery <= 0 || c.ColdEvery <= 0 {
		return fmt.Errorf("warm_every and cold_every must be positive")
	}
	if c.Journal.VersionBudget <= 0 || c.Journal.AccountBudget <= 0 {
		return fmt.Errorf("journal budgets must be positive")
	}
	if c.Journal.VersionBudget > c.Journal.AccountBudget {
		return fmt.Errorf("journal.version_budget (%f) cannot exceed journal.account_budget (%f)",
			c.Journal.VersionBudget, c.Journal.AccountBudget)
	}
	return nil
}
