package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sawpanic/tradesignal/internal/alerts"
	"github.com/sawpanic/tradesignal/internal/journal"
	"github.com/sawpanic/tradesignal/internal/logging"
	"github.com/sawpanic/tradesignal/internal/orchestrator"
	"github.com/sawpanic/tradesignal/internal/scanner"
	"github.com/sawpanic/tradesignal/internal/scheduler"
	"github.com/sawpanic/tradesignal/internal/state"
	"github.com/sawpanic/tradesignal/internal/upstream"
)

func init() {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scanner pass against the configured watchlist and print discoveries",
		Long: `scan runs spec §4.H's market-wide harvest + reduced-pipeline re-score once,
without starting the broadcast server or the full nine-step cycle, and
prints the resulting discoveries as JSON. Useful for a quick one-shot look
without standing up the whole service.`,
		RunE: runScan,
	}
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, nil)

	tickers := cfg.Tickers()
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers configured; set watchlist in %s", configPath)
	}

	flow := upstream.NewFlowVendor(cfg.Upstream.FlowVendor.BaseURL, cfg.Upstream.FlowVendor.BearerToken, cfg.Upstream.FlowVendor.RequestsPerMinute)
	tick := upstream.NewTickVendor(cfg.Upstream.TickVendor.BaseURL, cfg.Upstream.TickVendor.BearerToken, cfg.Upstream.TickVendor.RequestsPerMinute)

	scan := scanner.New(scanner.Config{
		MinConfidence: cfg.Scanner.MinConfidence,
		MaxCandidates: cfg.Scanner.MaxCandidates,
	})
	j := journal.New(journal.Config{
		MaxPerTicker: cfg.Journal.MaxPerTicker, VersionBudget: cfg.Journal.VersionBudget, AccountBudget: cfg.Journal.AccountBudget,
	})
	governor := scheduler.NewGovernor(cfg.DailyLimit, cfg.SafetyMargin, cfg.WarmEvery, cfg.ColdEvery, scheduler.Counters{})

	orch := orchestrator.New(orchestrator.Config{
		Watchlist: tickers, ActiveSignalVersion: cfg.Journal.ActiveVersion, Timeframe: cfg.Timeframe,
	}, flow, tick, state.New(), governor, scan, j, alerts.NewEngine(), nil, nil)

	discoveries := orch.RunScan(cmd.Context(), tickers)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(discoveries)
}
