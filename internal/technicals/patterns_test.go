package technicals

import (
	"testing"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDetectGaps_ThresholdIsHalfPercent(t *testing.T) {
	candles := []model.Candle{
		{Timestamp: time.Now(), Open: 100, Close: 100},
		{Timestamp: time.Now(), Open: 100.6, Close: 101}, // +0.6% gap up
		{Timestamp: time.Now(), Open: 100.8, Close: 100},
		{Timestamp: time.Now(), Open: 99.4, Close: 99}, // -0.6% gap down
	}
	gaps := DetectGaps(candles)
	require.Len(t, gaps, 2)
	require.Equal(t, model.GapUp, gaps[0].Type)
	require.Equal(t, model.GapDown, gaps[1].Type)
}

func TestDetectCandlePatterns_Hammer(t *testing.T) {
	candles := []model.Candle{
		{Open: 100, Close: 101, High: 101.2, Low: 95}, // long lower wick, small body
	}
	patterns := DetectCandlePatterns(candles)
	require.Contains(t, patterns, model.PatternHammer)
}

func TestDetectCandlePatterns_BullishEngulfing(t *testing.T) {
	candles := []model.Candle{
		{Open: 105, Close: 100, High: 106, Low: 99},  // red
		{Open: 99, Close: 106, High: 107, Low: 98},   // green, engulfs
	}
	patterns := DetectCandlePatterns(candles)
	require.Contains(t, patterns, model.PatternBullishEngulfing)
}

func TestDetectCandlePatterns_Doji(t *testing.T) {
	candles := []model.Candle{
		{Open: 100, Close: 100.02, High: 102, Low: 98},
	}
	patterns := DetectCandlePatterns(candles)
	require.Contains(t, patterns, model.PatternDoji)
}
