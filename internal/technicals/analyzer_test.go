package technicals

import (
	"testing"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

// risingCandles builds n daily bars whose closes climb linearly from start
// to end with constant volume, high/low padded slightly around the body.
func risingCandles(n int, start, end, volume float64) []model.Candle {
	candles := make([]model.Candle, n)
	step := (end - start) / float64(n-1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		close := start + step*float64(i)
		open := close - step*0.5
		candles[i] = model.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      open,
			Close:     close,
			High:      close + 0.5,
			Low:       open - 0.5,
			Volume:    volume,
		}
	}
	return candles
}

func TestAnalyze_RisingSeriesIsBullish(t *testing.T) {
	candles := risingCandles(60, 100, 160, 1_000_000)

	got, err := Analyze("AAPL", "1D", candles)
	require.NoError(t, err)

	require.Greater(t, got.RSI, 70.0)
	require.Equal(t, model.Bullish, got.Bias)
	require.Greater(t, got.MACD.Histogram, 0.0)
}

func TestAnalyze_PurityInvariant(t *testing.T) {
	candles := risingCandles(45, 50, 40, 500_000)

	a, errA := Analyze("MSFT", "1D", candles)
	b, errB := Analyze("MSFT", "1D", candles)

	require.NoError(t, errA)
	require.NoError(t, errB)
	require.Equal(t, a, b)
}

func TestAnalyze_InsufficientDataReturnsError(t *testing.T) {
	candles := risingCandles(10, 100, 110, 1_000_000)

	_, err := Analyze("TSLA", "1D", candles)
	require.Error(t, err)
}

func TestAnalyze_FallingSeriesIsBearish(t *testing.T) {
	candles := risingCandles(60, 160, 100, 1_000_000)

	got, err := Analyze("NVDA", "1D", candles)
	require.NoError(t, err)

	require.Less(t, got.RSI, 30.0)
	require.Equal(t, model.Bearish, got.Bias)
	// A linear ramp gives SMA-seeded EMAs a constant spread, so the MACD
	// line is flat and the histogram is zero up to rounding.
	require.InDelta(t, 0.0, got.MACD.Histogram, 1e-9)
}
