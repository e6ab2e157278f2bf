package technicals

import (
	"testing"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

func TestADX_StrongUptrendIsStrongBullish(t *testing.T) {
	n := 60
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)*2
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}

	result := ADX(highs, lows, closes, 14)
	require.Equal(t, model.TrendStrong, result.Strength)
	require.Equal(t, model.Bullish, result.Direction)
	require.Greater(t, result.PlusDI, result.MinusDI)
}

func TestADX_InsufficientDataIsNoTrend(t *testing.T) {
	result := ADX([]float64{1, 2, 3}, []float64{1, 2, 3}, []float64{1, 2, 3}, 14)
	require.Equal(t, model.TrendNone, result.Strength)
}

func TestADX_ThresholdsMatchSpec(t *testing.T) {
	require.Equal(t, 30.0, adxStrongThreshold)
	require.Equal(t, 20.0, adxWeakThreshold)
}
