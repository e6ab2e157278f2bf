// Package scanner implements the market-wide candidate harvest and
// reduced-pipeline scoring of spec §4.H. Grounded on the teacher's
// internal/catalyst (weighted, time-decayed aggregation across multiple
// event sources into one signal per symbol) and internal/universe
// (candidate list filtering and bounding ahead of an expensive scan pass).
package scanner

import (
	"math"
	"strings"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/state"
)

// Harvest weights mirror spec §4.H's per-source point values.
const (
	weightSweep          = 2.0
	weightFlowPremium500k = 1.0
	weightFlowPremium1M   = 2.0
	weightDarkPoolNotional5M = 3.0
	weightNews           = 0.5
)

// DenyList is the fixed set of index/ETF tickers the scanner never surfaces,
// regardless of harvest weight (spec §4.H).
var DenyList = map[string]bool{
	"SPY": true, "QQQ": true, "IWM": true, "DIA": true,
	"VIX": true, "VXX": true, "UVXY": true, "SVXY": true,
	"VOO": true, "VTI": true, "ARKK": true, "GLD": true, "SLV": true,
}

// Harvest accumulates a weighted count per ticker across the market-wide
// feeds in snap, excluding watchlisted tickers and DenyList entries.
func Harvest(snap state.Snapshot, watchlist []string) map[string]float64 {
	onWatchlist := make(map[string]bool, len(watchlist))
	for _, t := range watchlist {
		onWatchlist[strings.ToUpper(t)] = true
	}

	scores := make(map[string]float64)
	add := func(ticker string, weight float64) {
		ticker = strings.ToUpper(ticker)
		if ticker == "" || onWatchlist[ticker] || DenyList[ticker] {
			return
		}
		scores[ticker] += weight
	}

	for _, f := range snap.OptionsFlow {
		if f.Execution == model.ExecSweep {
			add(f.Ticker, weightSweep)
		}
		switch {
		case f.Premium >= 1_000_000:
			add(f.Ticker, weightFlowPremium1M)
		case f.Premium >= 500_000:
			add(f.Ticker, weightFlowPremium500k)
		}
	}

	for _, d := range snap.DarkPoolRecent {
		if d.Premium >= 5_000_000 {
			add(d.Ticker, weightDarkPoolNotional5M)
		}
	}

	for _, n := range snap.News {
		add(n.Ticker, weightNews)
	}

	for _, ticker := range snap.TopNetImpact {
		add(ticker, weightSweep)
	}

	for ticker, q := range snap.Quotes {
		add(ticker, math.Abs(q.ChangePercent)*0.1)
	}

	return scores
}
