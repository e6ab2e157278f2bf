package journal

import (
	"testing"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Cooldown:      2 * time.Hour,
		MaxPerTicker:  3,
		VersionBudget: 25_000,
		AccountBudget: 100_000,
	}
}

func longSetup() model.TradeSetup {
	return model.TradeSetup{
		Direction: model.Long,
		Entry:     100,
		Target1:   104,
		Target2:   108,
		Stop:      96,
		Horizon:   model.HorizonDayTrade,
	}
}

func TestOpen_AdmitsFirstTradeAndTracksExposure(t *testing.T) {
	j := New(testConfig())
	now := time.Now()

	trade, result := j.Open(OpenRequest{
		Ticker: "AAPL", SignalVersion: "v1.0", Setup: longSetup(),
		FillPrice: 100, Confidence: 80, InSession: true, Now: now,
	}, nil)

	require.True(t, result.Passed)
	require.NotNil(t, trade)
	require.Equal(t, model.Pending, trade.Status)
	require.Greater(t, trade.Shares, 0.0)
}

func TestOpen_RejectsOutsideTradingSession(t *testing.T) {
	j := New(testConfig())
	_, result := j.Open(OpenRequest{
		Ticker: "AAPL", SignalVersion: "v1.0", Setup: longSetup(),
		FillPrice: 100, Confidence: 80, InSession: false, Now: time.Now(),
	}, nil)

	require.False(t, result.Passed)
	require.Contains(t, result.Reasons[0], "market closed")
}

func TestOpen_RejectsReentryWithinCooldown(t *testing.T) {
	j := New(testConfig())
	now := time.Now()

	_, r1 := j.Open(OpenRequest{
		Ticker: "AAPL", SignalVersion: "v1.0", Setup: longSetup(),
		FillPrice: 100, Confidence: 80, InSession: true, Now: now,
	}, nil)
	require.True(t, r1.Passed)

	_, r2 := j.Open(OpenRequest{
		Ticker: "AAPL", SignalVersion: "v1.0", Setup: longSetup(),
		FillPrice: 101, Confidence: 80, InSession: true, Now: now.Add(time.Minute),
	}, nil)
	require.False(t, r2.Passed)
}

func TestOpen_ClampsSharesToRemainingVersionBudget(t *testing.T) {
	cfg := testConfig()
	cfg.VersionBudget = 300 // tiny budget forces a clamp
	j := New(cfg)

	_, result := j.Open(OpenRequest{
		Ticker: "AAPL", SignalVersion: "v1.0", Setup: longSetup(),
		FillPrice: 100, Confidence: 80, InSession: true, Now: time.Now(),
	}, nil)

	require.True(t, result.Passed)
	require.LessOrEqual(t, result.Shares*100, 300.0)
}

func TestRescaleToFill_PreservesPercentDistanceFromEntry(t *testing.T) {
	stop, t1, t2 := rescaleToFill(100, 110, 96, 104, 108)
	// original stop is -4% from entry; rescaled stop must be -4% from fill.
	require.InDelta(t, 110*0.96, stop, 1e-6)
	require.InDelta(t, 110*1.04, t1, 1e-6)
	require.InDelta(t, 110*1.08, t2, 1e-6)
}

func TestRescaleToFill_NoopWithinThreshold(t *testing.T) {
	stop, t1, t2 := rescaleToFill(100, 100.05, 96, 104, 108)
	require.Equal(t, 96.0, stop)
	require.Equal(t, 104.0, t1)
	require.Equal(t, 108.0, t2)
}

func TestCheckOutcomes_GracePeriodBlocksEarlyEvaluation(t *testing.T) {
	j := New(testConfig())
	now := time.Now()
	j.trades = []model.PaperTrade{{
		ID: "t1", Ticker: "AAPL", Direction: model.Long,
		Fill: 100, Shares: 10, Target1: 104, Target2: 108, Stop: 96,
		OpenTime: now, Status: model.Pending,
	}}

	closed := j.CheckOutcomes(map[string]float64{"AAPL": 50}, now.Add(time.Minute))
	require.Empty(t, closed)
	require.Equal(t, model.Pending, j.trades[0].Status)
}

func TestCheckOutcomes_LongHitsStopAfterGrace(t *testing.T) {
	j := New(testConfig())
	now := time.Now()
	j.trades = []model.PaperTrade{{
		ID: "t1", Ticker: "AAPL", Direction: model.Long, SignalVersion: "v1.0",
		Fill: 100, Shares: 10, Target1: 104, Target2: 108, Stop: 96,
		OpenTime: now, Status: model.Pending,
	}}
	j.exposure["v1.0"] = 1000

	closed := j.CheckOutcomes(map[string]float64{"AAPL": 95}, now.Add(10*time.Minute))
	require.Len(t, closed, 1)
	require.Equal(t, model.LossStop, closed[0].Status)
	require.NotNil(t, closed[0].PnLPercent)
	require.Less(t, *closed[0].PnLPercent, 0.0)
	require.Equal(t, 0.0, j.exposure["v1.0"])
}

func TestCheckOutcomes_LongHitsTarget2(t *testing.T) {
	j := New(testConfig())
	now := time.Now()
	j.trades = []model.PaperTrade{{
		ID: "t1", Ticker: "AAPL", Direction: model.Long,
		Fill: 100, Shares: 10, Target1: 104, Target2: 108, Stop: 96,
		OpenTime: now, Status: model.Pending,
	}}

	closed := j.CheckOutcomes(map[string]float64{"AAPL": 110}, now.Add(10*time.Minute))
	require.Len(t, closed, 1)
	require.Equal(t, model.WinT2, closed[0].Status)
}

func TestCloseIntradayTrades_ForceClosesIntradayHorizonOnly(t *testing.T) {
	j := New(testConfig())
	now := time.Now()
	j.trades = []model.PaperTrade{
		{ID: "t1", Ticker: "AAPL", Direction: model.Long, Fill: 100, Shares: 10,
			Horizon: model.HorizonScalp, Status: model.Pending},
		{ID: "t2", Ticker: "MSFT", Direction: model.Long, Fill: 100, Shares: 10,
			Horizon: model.HorizonSwing13, Status: model.Pending},
	}

	closed := j.CloseIntradayTrades(map[string]float64{"AAPL": 105, "MSFT": 105}, now)
	require.Len(t, closed, 1)
	require.Equal(t, "AAPL", closed[0].Ticker)
	require.Equal(t, model.WinEod, closed[0].Status)
	require.Equal(t, model.Pending, j.trades[1].Status)
}

func TestGetTrainingData_ExcludesExpiredAndOpenTrades(t *testing.T) {
	j := New(testConfig())
	features := [model.FeatureVectorSize]float64{}
	win := 1.0
	loss := -1.0
	j.trades = []model.PaperTrade{
		{ID: "t1", Ticker: "AAPL", Status: model.WinT1, Features: &features, PnLPercent: &win},
		{ID: "t2", Ticker: "MSFT", Status: model.LossStop, Features: &features, PnLPercent: &loss},
		{ID: "t3", Ticker: "GME", Status: model.Expired, Features: &features},
		{ID: "t4", Ticker: "TSLA", Status: model.Pending, Features: &features},
	}

	data := j.GetTrainingData()
	require.Len(t, data, 2)
	for _, d := range data {
		switch d.Ticker {
		case "AAPL":
			require.Equal(t, 1, d.Label)
		case "MSFT":
			require.Equal(t, 0, d.Label)
		default:
			t.Fatalf("unexpected ticker in training data: %s", d.Ticker)
		}
	}
}
