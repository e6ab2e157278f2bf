package backtest

import (
	"context"
	"fmt"

	"github.com/sawpanic/tradesignal/internal/journal"
	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/signal"
	"github.com/sawpanic/tradesignal/internal/technicals"
)

// minConfidence is the replay's fixed admission floor, matching the
// orchestrator's autoOpenConfidence (spec §4.D) so a replay's open/skip
// decisions are directly comparable to a live run's.
const minConfidence = 70.0

// Run walks series bar-by-bar in lockstep across every ticker, scoring each
// ticker through the same technicals+signal pipeline the orchestrator uses
// and offering qualifying signals to a fresh journal.Journal. series values
// must be ordered ascending by Timestamp; this assumes an aligned trading
// calendar across tickers (every series has one candle per session) — a
// replay across exchanges or tickers with gaps would need to align series
// by timestamp first, which is out of scope for this walk-forward loop.
func Run(ctx context.Context, cfg Config, series map[string][]model.Candle) (*Result, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("backtest: no series provided")
	}

	minLen := -1
	for ticker, candles := range series {
		if len(candles) < model.MinCandlesRequired {
			return nil, fmt.Errorf("backtest: ticker %s has %d candles, need at least %d", ticker, len(candles), model.MinCandlesRequired)
		}
		if minLen == -1 || len(candles) < minLen {
			minLen = len(candles)
		}
	}

	j := journal.New(journal.Config{
		Cooldown:      cfg.JournalCfg.Cooldown,
		MaxPerTicker:  cfg.JournalCfg.MaxPerTicker,
		VersionBudget: cfg.JournalCfg.VersionBudget,
		AccountBudget: cfg.JournalCfg.AccountBudget,
	})

	result := &Result{}
	var firstTicker string
	for t := range series {
		firstTicker = t
		break
	}
	result.StartTime = series[firstTicker][model.MinCandlesRequired-1].Timestamp
	result.EndTime = series[firstTicker][minLen-1].Timestamp

	for i := model.MinCandlesRequired - 1; i < minLen; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		window := WindowResult{Timestamp: series[firstTicker][i].Timestamp}
		lastPrices := make(map[string]float64, len(series))

		for ticker, candles := range series {
			bar := candles[i]
			lastPrices[ticker] = bar.Close

			history := candles[:i+1]
			tech, err := technicals.Analyze(ticker, "D", history)
			if err != nil {
				continue
			}

			quote := model.Quote{
				Ticker: ticker, Last: bar.Close, Bid: bar.Close, Ask: bar.Close,
				Open: bar.Open, High: bar.High, Low: bar.Low, Volume: bar.Volume,
				PrevClose: candles[i-1].Close, UpdatedAt: bar.Timestamp,
			}
			if quote.PrevClose > 0 {
				quote.ChangePercent = (quote.Last - quote.PrevClose) / quote.PrevClose * 100
			}

			in := signal.Inputs{Quote: quote, Technicals: tech, Regime: model.RegimeUnknown}
			features := signal.BuildFeatures(in)
			res := signal.Score(ticker, features, model.RegimeUnknown, nil, bar.Timestamp)

			cand := CandidateResult{Ticker: ticker, Direction: string(res.Direction), Confidence: res.Confidence}

			setup := signal.GenerateSetup(res.Direction, quote.Last, tech.ATR, tech.Pivots, res.Confidence, model.Midday)
			if res.Direction != model.Neutral && res.Confidence >= minConfidence && setup != nil {
				_, admission := j.Open(journal.OpenRequest{
					Ticker: ticker, SignalVersion: cfg.SignalVersion, Setup: *setup,
					FillPrice: quote.Last, Confidence: res.Confidence, InSession: true, Now: bar.Timestamp,
				}, &features)
				cand.Opened = admission.Passed
				if !admission.Passed && len(admission.Reasons) > 0 {
					cand.RejectReason = admission.Reasons[0]
				}
			}
			window.Candidates = append(window.Candidates, cand)
		}

		j.CheckOutcomes(lastPrices, window.Timestamp)
		result.Windows = append(result.Windows, window)
	}

	stats := j.Stats()
	result.Metrics = MetricsSummary{
		TotalWindows:    len(result.Windows),
		OpenedTrades:    stats.TotalTrades,
		ClosedTrades:    stats.ClosedTrades,
		Wins:            stats.Wins,
		Losses:          stats.Losses,
		WinRate:         stats.WinRate,
		TotalPnL:        stats.TotalPnL,
	}
	for _, w := range result.Windows {
		result.Metrics.TotalCandidates += len(w.Candidates)
	}

	return result, nil
}
