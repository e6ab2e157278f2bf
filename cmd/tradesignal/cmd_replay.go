package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/tradesignal/internal/backtest"
	"github.com/sawpanic/tradesignal/internal/logging"
	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/upstream"
)

var (
	replayOutputDir string
	replayHold      time.Duration
)

func init() {
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Walk-forward replay the configured watchlist through the signal pipeline",
		Long: `replay fetches each watchlist ticker's available OHLC history from the
configured tick vendor and walks it bar-by-bar through the same
technicals/signal/journal pipeline the live service uses (internal/backtest),
writing results.jsonl and report.md to --out.`,
		RunE: runReplay,
	}
	replayCmd.Flags().StringVar(&replayOutputDir, "out", "replay-output", "directory to write results.jsonl and report.md to")
	replayCmd.Flags().DurationVar(&replayHold, "hold", 24*time.Hour, "hold period recorded in the replay config (trades still open at replay end are not force-closed)")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, nil)

	tickers := cfg.Tickers()
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers configured; set watchlist in %s", configPath)
	}

	tick := upstream.NewTickVendor(cfg.Upstream.TickVendor.BaseURL, cfg.Upstream.TickVendor.BearerToken, cfg.Upstream.TickVendor.RequestsPerMinute)

	series := make(map[string][]model.Candle, len(tickers))
	for _, ticker := range tickers {
		candles, err := tick.FetchOHLC(cmd.Context(), ticker, cfg.Timeframe)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("fetch OHLC failed, dropping from replay")
			continue
		}
		if len(candles) < model.MinCandlesRequired {
			log.Warn().Str("ticker", ticker).Int("candles", len(candles)).Msg("too few candles for replay, dropping")
			continue
		}
		series[ticker] = candles
	}
	if len(series) == 0 {
		return fmt.Errorf("no ticker had enough history to replay")
	}

	result, err := backtest.Run(cmd.Context(), backtest.Config{
		SignalVersion: cfg.Journal.ActiveVersion,
		HoldPeriod:    replayHold,
		JournalCfg: backtest.JournalConfig{
			Cooldown:      time.Duration(cfg.Journal.CooldownMs) * time.Millisecond,
			MaxPerTicker:  cfg.Journal.MaxPerTicker,
			VersionBudget: cfg.Journal.VersionBudget,
			AccountBudget: cfg.Journal.AccountBudget,
		},
	}, series)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	w := backtest.NewWriter(replayOutputDir)
	if err := w.WriteResults(result); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := w.WriteReport(result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	log.Info().Int("windows", result.Metrics.TotalWindows).
		Int("opened", result.Metrics.OpenedTrades).
		Float64("winRate", result.Metrics.WinRate).
		Str("out", replayOutputDir).
		Msg("replay complete")
	return nil
}
