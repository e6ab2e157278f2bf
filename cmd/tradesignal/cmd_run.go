package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/tradesignal/internal/alerts"
	"github.com/sawpanic/tradesignal/internal/broadcast"
	"github.com/sawpanic/tradesignal/internal/cache"
	"github.com/sawpanic/tradesignal/internal/config"
	"github.com/sawpanic/tradesignal/internal/journal"
	"github.com/sawpanic/tradesignal/internal/logging"
	"github.com/sawpanic/tradesignal/internal/orchestrator"
	"github.com/sawpanic/tradesignal/internal/persistence"
	"github.com/sawpanic/tradesignal/internal/scanner"
	"github.com/sawpanic/tradesignal/internal/scheduler"
	"github.com/sawpanic/tradesignal/internal/state"
	"github.com/sawpanic/tradesignal/internal/upstream"
	"github.com/sawpanic/tradesignal/internal/upstream/stream"
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the poll-score-broadcast service",
		Long: `run loads persisted state, starts the broadcast server, and repeats the
nine-step orchestrator cycle (spec §4.D) at the session-appropriate cadence
until interrupted.`,
		RunE: runRun,
	}
	rootCmd.AddCommand(runCmd)
}

// runRun is the `run` subcommand's entry point, also the root command's
// default action. Grounded on cmd/cryptorun/main.go's daemon bootstrap,
// generalized from its menu/metrics-server startup to this service's
// load-state -> build-deps -> serve -> poll-forever sequence (spec §4.K
// load order, §4.D cycle loop).
func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, nil)

	tickers := cfg.Tickers()
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers configured; set watchlist in %s", configPath)
	}

	statePath := filepath.Join(cfg.DataDir, "state-cache.json")
	journalPath := filepath.Join(cfg.DataDir, "trade-journal.json")
	versionPath := filepath.Join(cfg.DataDir, "signal-versions.json")
	earningsPath := filepath.Join(cfg.DataDir, "earnings-cache.json")
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	snap, counters, err := persistence.LoadState(statePath)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	trades, err := persistence.LoadJournal(journalPath)
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}
	activeVersion, err := persistence.LoadActiveSignalVersion(versionPath, cfg.Journal.ActiveVersion)
	if err != nil {
		return fmt.Errorf("load signal version: %w", err)
	}
	earnings, err := persistence.LoadEarningsCache(earningsPath)
	if err != nil {
		return fmt.Errorf("load earnings cache: %w", err)
	}

	store := state.New()
	store.Restore(snap)

	governor := scheduler.NewGovernor(cfg.DailyLimit, cfg.SafetyMargin, cfg.WarmEvery, cfg.ColdEvery, counters)

	flow := upstream.NewFlowVendor(cfg.Upstream.FlowVendor.BaseURL, cfg.Upstream.FlowVendor.BearerToken, cfg.Upstream.FlowVendor.RequestsPerMinute)
	tick := upstream.NewTickVendor(cfg.Upstream.TickVendor.BaseURL, cfg.Upstream.TickVendor.BearerToken, cfg.Upstream.TickVendor.RequestsPerMinute)

	scan := scanner.New(scanner.Config{
		MinConfidence: cfg.Scanner.MinConfidence,
		MaxCandidates: cfg.Scanner.MaxCandidates,
		Cooldown:      time.Duration(cfg.Scanner.CooldownMs) * time.Millisecond,
	})

	j := journal.New(journal.Config{
		Cooldown:      time.Duration(cfg.Journal.CooldownMs) * time.Millisecond,
		MaxPerTicker:  cfg.Journal.MaxPerTicker,
		VersionBudget: cfg.Journal.VersionBudget,
		AccountBudget: cfg.Journal.AccountBudget,
	})
	j.Restore(trades)

	alertEngine := alerts.NewEngine()

	hub := broadcast.NewHub()
	server, err := broadcast.NewServer(broadcast.ServerConfig{
		Host: cfg.Broadcast.Host, Port: cfg.Broadcast.Port,
		ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, IdleTimeout: 60 * time.Second,
	}, hub, store)
	if err != nil {
		return fmt.Errorf("start broadcast server: %w", err)
	}
	if cfg.Cache.Addr != "" {
		rc, err := cache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, "tradesignal")
		if err != nil {
			log.Warn().Err(err).Msg("read cache unavailable, /snapshot will bypass it")
		} else {
			server.SetReadCache(rc)
			defer rc.Close()
		}
	}

	orch := orchestrator.New(orchestrator.Config{
		Watchlist: tickers, ActiveSignalVersion: activeVersion, Timeframe: cfg.Timeframe,
	}, flow, tick, store, governor, scan, j, alertEngine, earnings, hub)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("broadcast server stopped")
		}
	}()

	if cfg.Upstream.TickVendor.WSURL != "" {
		tickStream := stream.NewConn("tick-vendor", cfg.Upstream.TickVendor.WSURL,
			tick.SubscribeBuilder(cfg.Upstream.TickVendor.BearerToken), tick.OnTrade)
		tickStream.SetTickers(tickers)
		go tickStream.Run(ctx)
	}

	persist := func() {
		if err := persistence.SaveState(statePath, store.Snapshot(), governor.Snapshot()); err != nil {
			log.Error().Err(err).Msg("save state")
		}
		if err := persistence.SaveJournal(journalPath, j); err != nil {
			log.Error().Err(err).Msg("save journal")
		}
		if err := persistence.SaveActiveSignalVersion(versionPath, activeVersion); err != nil {
			log.Error().Err(err).Msg("save signal version")
		}
	}
	defer persist()

	log.Info().Strs("tickers", tickers).Msg("entering poll loop")
	for {
		if err := orch.RunCycle(ctx); err != nil {
			log.Error().Err(err).Msg("cycle failed")
		}
		persist()

		session := scheduler.CurrentSession(time.Now())
		cadence := scheduler.Cadence(session)
		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown requested")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("broadcast server shutdown")
			}
			return nil
		case <-time.After(cadence):
		}
	}
}

// loadConfig reads configPath, falling back to config.Defaults() when the
// file doesn't exist so `tradesignal run` works out of the box against the
// default watchlist-less config (callers still need a watchlist set).
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		cfg := config.Defaults()
		return &cfg, nil
	}
	return config.Load(configPath)
}
