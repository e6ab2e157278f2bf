package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sawpanic/tradesignal/internal/logging"
	"github.com/sawpanic/tradesignal/internal/upstream"
)

var healthJSON bool

func init() {
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check upstream vendor reachability and data directory writability",
		RunE:  runHealth,
	}
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "print the report as JSON instead of text")
	rootCmd.AddCommand(healthCmd)
}

// healthReport is the result of one health command invocation. Grounded on
// cmd/cryptorun/cmd_health.go's ComponentHealth shape, trimmed to the two
// things this service actually depends on at startup: the two upstream
// vendors and the on-disk data directory.
type healthReport struct {
	Overall    string                     `json:"overall"`
	CheckedAt  time.Time                  `json:"checkedAt"`
	Components map[string]componentHealth `json:"components"`
}

type componentHealth struct {
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"-"`
	LatencyMs int64         `json:"latencyMs"`
	Error     string        `json:"error,omitempty"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, nil)

	tickers := cfg.Tickers()
	probeTicker := "SPY"
	if len(tickers) > 0 {
		probeTicker = tickers[0]
	}

	report := healthReport{CheckedAt: time.Now(), Components: map[string]componentHealth{}}
	report.Overall = "HEALTHY"

	// RESTClient swallows persistent upstream failures into (nil, nil) per
	// spec §7 class 1-2, so a nil result counts as unhealthy here even
	// though FetchQuote/FetchOHLC themselves never return an error for it.
	flow := upstream.NewFlowVendor(cfg.Upstream.FlowVendor.BaseURL, cfg.Upstream.FlowVendor.BearerToken, cfg.Upstream.FlowVendor.RequestsPerMinute)
	report.Components["flow_vendor"] = probe(func() error {
		q, err := flow.FetchQuote(cmd.Context(), probeTicker)
		if err == nil && q == nil {
			err = fmt.Errorf("no data returned for %s", probeTicker)
		}
		return err
	})

	tick := upstream.NewTickVendor(cfg.Upstream.TickVendor.BaseURL, cfg.Upstream.TickVendor.BearerToken, cfg.Upstream.TickVendor.RequestsPerMinute)
	report.Components["tick_vendor"] = probe(func() error {
		candles, err := tick.FetchOHLC(cmd.Context(), probeTicker, cfg.Timeframe)
		if err == nil && len(candles) == 0 {
			err = fmt.Errorf("no candles returned for %s", probeTicker)
		}
		return err
	})

	report.Components["data_dir"] = probe(func() error {
		return os.MkdirAll(cfg.DataDir, 0o755)
	})

	for _, c := range report.Components {
		if !c.Healthy {
			report.Overall = "DEGRADED"
		}
	}

	if healthJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("overall: %s\n", report.Overall)
	for name, c := range report.Components {
		status := "ok"
		if !c.Healthy {
			status = "FAIL: " + c.Error
		}
		fmt.Printf("  %-12s %-8s %s\n", name, c.Latency.Round(time.Millisecond), status)
	}
	return nil
}

func probe(fn func() error) componentHealth {
	start := time.Now()
	err := fn()
	ch := componentHealth{Healthy: err == nil, Latency: time.Since(start)}
	ch.LatencyMs = ch.Latency.Milliseconds()
	if err != nil {
		ch.Error = err.Error()
	}
	return ch
}
