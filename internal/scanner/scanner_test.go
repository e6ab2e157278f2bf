package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/state"
	"github.com/stretchr/testify/require"
)

func TestHarvest_ExcludesWatchlistAndDenyList(t *testing.T) {
	snap := state.Empty()
	snap.OptionsFlow = []model.FlowItem{
		{Ticker: "GME", Premium: 600_000, Execution: model.ExecSweep},
		{Ticker: "AAPL", Premium: 600_000}, // on watchlist
		{Ticker: "SPY", Premium: 2_000_000, Execution: model.ExecSweep},
	}

	got := Harvest(snap, []string{"AAPL"})

	require.Contains(t, got, "GME")
	require.NotContains(t, got, "AAPL")
	require.NotContains(t, got, "SPY")
}

func TestHarvest_WeightsAccumulateAcrossSources(t *testing.T) {
	snap := state.Empty()
	snap.OptionsFlow = []model.FlowItem{
		{Ticker: "GME", Premium: 1_200_000, Execution: model.ExecSweep},
	}
	snap.DarkPoolRecent = []model.DarkPoolPrint{
		{Ticker: "GME", Premium: 6_000_000},
	}
	snap.News = []state.NewsItem{{Ticker: "GME", Headline: "x"}}

	got := Harvest(snap, nil)

	// sweep(2) + premium>1M(2) + dark pool notional>5M(3) + news(0.5) = 7.5
	require.InDelta(t, 7.5, got["GME"], 1e-9)
}

func TestScanner_Run_FiltersByConfidenceAndAppliesCooldown(t *testing.T) {
	snap := state.Empty()
	snap.OptionsFlow = []model.FlowItem{
		{Ticker: "GME", Premium: 1_200_000, Execution: model.ExecSweep},
		{Ticker: "AMC", Premium: 600_000},
	}

	s := New(Config{MinConfidence: 50, MaxCandidates: 5, Cooldown: 30 * time.Minute})
	s.delay = time.Millisecond
	now := time.Now()

	calls := map[string]int{}
	score := func(ctx context.Context, ticker string) (float64, error) {
		calls[ticker]++
		if ticker == "GME" {
			return 80, nil
		}
		return 20, nil
	}

	discoveries := s.Run(context.Background(), snap, nil, score, now)
	require.Len(t, discoveries, 1)
	require.Equal(t, "GME", discoveries[0].Ticker)

	// Re-running immediately should skip both tickers: GME and AMC were
	// both scanned (and thus cooldown-stamped) in the first pass.
	discoveries2 := s.Run(context.Background(), snap, nil, score, now.Add(time.Minute))
	require.Empty(t, discoveries2)
	require.Equal(t, 1, calls["GME"])
	require.Equal(t, 1, calls["AMC"])
}

func TestScanner_Run_RespectsMaxCandidates(t *testing.T) {
	snap := state.Empty()
	snap.OptionsFlow = []model.FlowItem{
		{Ticker: "AAA", Premium: 600_000},
		{Ticker: "BBB", Premium: 600_000},
		{Ticker: "CCC", Premium: 600_000},
	}

	s := New(Config{MinConfidence: 0, MaxCandidates: 1, Cooldown: 30 * time.Minute})
	var scored []string
	score := func(ctx context.Context, ticker string) (float64, error) {
		scored = append(scored, ticker)
		return 100, nil
	}

	discoveries := s.Run(context.Background(), snap, nil, score, time.Now())
	require.Len(t, discoveries, 1)
	require.Len(t, scored, 1)
}
