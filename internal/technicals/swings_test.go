package technicals

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwingPoints_FindsCenteredFractal(t *testing.T) {
	n := 21
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := range highs {
		highs[i] = 100
		lows[i] = 90
	}
	highs[10] = 110 // strict max within lookback 5 on both sides
	lows[10] = 80   // strict min within lookback 5 on both sides

	points := SwingPoints(highs, lows)

	var foundHigh, foundLow bool
	for _, p := range points {
		if p.Index == 10 && p.High && p.Price == 110 {
			foundHigh = true
		}
		if p.Index == 10 && !p.High && p.Price == 80 {
			foundLow = true
		}
	}
	require.True(t, foundHigh)
	require.True(t, foundLow)
}

func TestFibonacciLevels_RetracementAndExtension(t *testing.T) {
	levels := FibonacciLevels(200, 100)

	var sawRetracement, sawExtension bool
	for _, l := range levels {
		if l.Ratio == 0.618 {
			require.InDelta(t, 138.2, l.Price, 1e-9)
			require.False(t, l.Extension)
			sawRetracement = true
		}
		if l.Ratio == 1.618 {
			require.True(t, l.Extension)
			sawExtension = true
		}
	}
	require.True(t, sawRetracement)
	require.True(t, sawExtension)
}

func TestLatestSwings_ReturnsMostRecentOfEachType(t *testing.T) {
	highs := make([]float64, 21)
	lows := make([]float64, 21)
	for i := range highs {
		highs[i] = 100
		lows[i] = 90
	}
	highs[5] = 110
	lows[15] = 80

	high, low := LatestSwings(highs, lows)
	require.NotNil(t, high)
	require.NotNil(t, low)
	require.Equal(t, 5, high.Index)
	require.Equal(t, 15, low.Index)
}
