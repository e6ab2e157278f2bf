package alerts

import (
	"testing"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

func TestEvalOptionFlow_BelowThresholdReturnsNil(t *testing.T) {
	got := EvalOptionFlow(model.FlowItem{Ticker: "AAPL", Premium: 1000}, model.Midday, time.Now())
	require.Nil(t, got)
}

func TestEvalOptionFlow_AboveThresholdFires(t *testing.T) {
	got := EvalOptionFlow(model.FlowItem{Ticker: "AAPL", Premium: 600_000, Direction: model.Bullish}, model.Midday, time.Now())
	require.NotNil(t, got)
	require.Equal(t, "UNUSUAL_OPTIONS_FLOW", got.Type)
}

func TestEvalRSIExtreme_Overbought(t *testing.T) {
	got := EvalRSIExtreme("AAPL", model.Technicals{RSI: 85}, model.Midday, time.Now())
	require.NotNil(t, got)
	require.Equal(t, model.Bearish, got.Direction)
}

func TestEvalRSIExtreme_MidRangeReturnsNil(t *testing.T) {
	got := EvalRSIExtreme("AAPL", model.Technicals{RSI: 50}, model.Midday, time.Now())
	require.Nil(t, got)
}

func TestCooldown_SuppressesWithinWindow(t *testing.T) {
	c := NewCooldown()
	now := time.Now()

	require.True(t, c.Allow("AAPL", "RSI_EXTREME", now))
	require.False(t, c.Allow("AAPL", "RSI_EXTREME", now.Add(time.Minute)))
	require.True(t, c.Allow("AAPL", "RSI_EXTREME", now.Add(31*time.Minute)))
}

func TestEngine_Evaluate_FiltersNilAndCooldown(t *testing.T) {
	e := NewEngine()
	now := time.Now()

	in := TickerInputs{
		Ticker:     "AAPL",
		Technicals: model.Technicals{RSI: 85, EMA9: 10, EMA20: 9, EMA50: 8, MACD: model.MACDValue{Histogram: 1}},
	}

	first := e.Evaluate(in, model.Midday, now)
	require.NotEmpty(t, first)

	second := e.Evaluate(in, model.Midday, now.Add(time.Minute))
	require.Empty(t, second, "identical alerts within cooldown window must be suppressed")
}
