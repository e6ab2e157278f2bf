package technicals

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSMA_TrailingAverage(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	require.Equal(t, 4.0, SMA(closes, 3)) // avg(3,4,5)
}

func TestEMA_SeededBySMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	series := EMA(closes, 3)
	require.Equal(t, SMA(closes[:3], 3), series[0])
	require.Len(t, series, len(closes)-3+1)
}

func TestRSI_AllGainsIsOneHundred(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	last := RSILast(closes, 14)
	require.Equal(t, 100.0, last)
}

func TestRSI_AllLossesIsZero(t *testing.T) {
	closes := []float64{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	last := RSILast(closes, 14)
	require.Equal(t, 0.0, last)
}

func TestBollingerBands_PositionClippedToUnitRange(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	_, _, _, position, _ := BollingerBands(closes, 20, 2)
	require.Equal(t, 0.0, position) // zero stdev: upper==lower, position defaults to 0
}

func TestClassicPivots_Formulas(t *testing.T) {
	pp, r1, r2, r3, s1, s2, s3 := ClassicPivots(110, 90, 100)
	require.InDelta(t, 100.0, pp, 1e-9)
	require.InDelta(t, 110.0, r1, 1e-9)
	require.InDelta(t, 90.0, s1, 1e-9)
	require.InDelta(t, 120.0, r2, 1e-9)
	require.InDelta(t, 80.0, s2, 1e-9)
	require.InDelta(t, 130.0, r3, 1e-9)
	require.InDelta(t, 70.0, s3, 1e-9)
}
