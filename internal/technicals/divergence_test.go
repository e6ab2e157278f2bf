package technicals

import (
	"testing"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRSIDivergences_RegularBullish(t *testing.T) {
	swings := []model.SwingPoint{
		{Index: 10, Price: 50, High: false},
		{Index: 20, Price: 45, High: false}, // price lower low
	}
	rsiAt := map[int]float64{10: 30, 20: 35} // RSI higher low

	got := RSIDivergences(swings, rsiAt)
	require.Contains(t, got, model.RegularBullish)
}

func TestRSIDivergences_RegularBearish(t *testing.T) {
	swings := []model.SwingPoint{
		{Index: 10, Price: 50, High: true},
		{Index: 20, Price: 55, High: true}, // price higher high
	}
	rsiAt := map[int]float64{10: 70, 20: 65} // RSI lower high

	got := RSIDivergences(swings, rsiAt)
	require.Contains(t, got, model.RegularBearish)
}

func TestRSIDivergences_SkipsSwingsWithoutRSI(t *testing.T) {
	swings := []model.SwingPoint{
		{Index: 10, Price: 50, High: false},
		{Index: 20, Price: 45, High: false},
	}
	got := RSIDivergences(swings, map[int]float64{})
	require.Empty(t, got)
}
