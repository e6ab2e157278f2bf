// Package alerts implements the stateless alert evaluators and the
// per-(ticker,type) cooldown gate of spec §4.G. Grounded on the teacher's
// named-gate-check shape in internal/gates/entry.go (each check is an
// independent, self-describing pass/fail) adapted from hard entry gates
// into emitted alert events.
package alerts

import (
	"fmt"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
)

// optionFlowPremiumThreshold is the minimum single-print premium that
// triggers an UNUSUAL_OPTIONS_FLOW alert (spec §4.G).
const optionFlowPremiumThreshold = 500_000.0

// EvalOptionFlow fires on a single options print whose premium clears the
// threshold.
func EvalOptionFlow(item model.FlowItem, session model.Session, now time.Time) *model.Alert {
	if item.Premium < optionFlowPremiumThreshold {
		return nil
	}
	severity := model.SeverityMedium
	if item.Premium >= optionFlowPremiumThreshold*4 {
		severity = model.SeverityHigh
	}
	return &model.Alert{
		Ticker:    item.Ticker,
		Session:   session,
		Type:      "UNUSUAL_OPTIONS_FLOW",
		Direction: item.Direction,
		Severity:  severity,
		Message:   fmt.Sprintf("%s %s premium $%.0f", item.Ticker, item.Contract, item.Premium),
		Timestamp: now,
	}
}

// rsiOverbought and rsiOversold are the RSI-extreme alert thresholds.
const (
	rsiOverbought = 80.0
	rsiOversold   = 20.0
)

// EvalRSIExtreme fires an RSI_EXTREME alert when RSI clears either bound.
func EvalRSIExtreme(ticker string, t model.Technicals, session model.Session, now time.Time) *model.Alert {
	switch {
	case t.RSI >= rsiOverbought:
		return &model.Alert{
			Ticker: ticker, Session: session, Type: "RSI_EXTREME", Direction: model.Bearish,
			Severity: model.SeverityMedium, Message: fmt.Sprintf("%s RSI %.1f overbought", ticker, t.RSI), Timestamp: now,
		}
	case t.RSI <= rsiOversold:
		return &model.Alert{
			Ticker: ticker, Session: session, Type: "RSI_EXTREME", Direction: model.Bullish,
			Severity: model.SeverityMedium, Message: fmt.Sprintf("%s RSI %.1f oversold", ticker, t.RSI), Timestamp: now,
		}
	}
	return nil
}

// EvalEMAMACDConfirmation fires a TREND_CONFIRMATION alert when EMA
// alignment and MACD histogram agree in direction (spec §4.G).
func EvalEMAMACDConfirmation(ticker string, t model.Technicals, session model.Session, now time.Time) *model.Alert {
	emaBullish := t.EMA9 > t.EMA20 && t.EMA20 > t.EMA50
	emaBearish := t.EMA9 < t.EMA20 && t.EMA20 < t.EMA50

	switch {
	case emaBullish && t.MACD.Histogram > 0:
		return &model.Alert{
			Ticker: ticker, Session: session, Type: "TREND_CONFIRMATION", Direction: model.Bullish,
			Severity: model.SeverityLow, Message: fmt.Sprintf("%s EMA stack and MACD both bullish", ticker), Timestamp: now,
		}
	case emaBearish && t.MACD.Histogram < 0:
		return &model.Alert{
			Ticker: ticker, Session: session, Type: "TREND_CONFIRMATION", Direction: model.Bearish,
			Severity: model.SeverityLow, Message: fmt.Sprintf("%s EMA stack and MACD both bearish", ticker), Timestamp: now,
		}
	}
	return nil
}

// volumeSpikeRatio is the volume/average ratio that triggers VOLUME_SPIKE.
const volumeSpikeRatio = 3.0

// EvalVolumeSpike fires when today's volume clears volumeSpikeRatio times
// the 20-day average.
func EvalVolumeSpike(ticker string, volume, avgVolume20d float64, session model.Session, now time.Time) *model.Alert {
	if avgVolume20d <= 0 || volume/avgVolume20d < volumeSpikeRatio {
		return nil
	}
	return &model.Alert{
		Ticker: ticker, Session: session, Type: "VOLUME_SPIKE", Direction: model.Neutral,
		Severity: model.SeverityMedium,
		Message:  fmt.Sprintf("%s volume %.1fx 20d average", ticker, volume/avgVolume20d),
		Timestamp: now,
	}
}

// EvalGap fires a PRICE_GAP alert for the most recent bar's gap, if any.
func EvalGap(ticker string, gaps []model.Gap, lastIndex int, session model.Session, now time.Time) *model.Alert {
	for _, g := range gaps {
		if g.Index != lastIndex {
			continue
		}
		direction := model.Bullish
		if g.Type == model.GapDown {
			direction = model.Bearish
		}
		return &model.Alert{
			Ticker: ticker, Session: session, Type: "PRICE_GAP", Direction: direction,
			Severity: model.SeverityLow,
			Message:  fmt.Sprintf("%s gapped %.2f%%", ticker, g.PctSize),
			Timestamp: now,
		}
	}
	return nil
}

// darkPoolPrintThreshold is the minimum single-print premium that triggers
// a LARGE_DARK_POOL_PRINT alert.
const darkPoolPrintThreshold = 1_000_000.0

// EvalDarkPoolPrint fires on a single off-lit print whose premium clears
// the threshold.
func EvalDarkPoolPrint(print model.DarkPoolPrint, bid, ask float64, session model.Session, now time.Time) *model.Alert {
	if print.Premium < darkPoolPrintThreshold {
		return nil
	}
	direction := model.InferDarkPoolDirection(print.Price, bid, ask)
	return &model.Alert{
		Ticker: print.Ticker, Session: session, Type: "LARGE_DARK_POOL_PRINT", Direction: direction,
		Severity: model.SeverityHigh,
		Message:  fmt.Sprintf("%s dark pool print $%.0f at $%.2f", print.Ticker, print.Premium, print.Price),
		Timestamp: now,
	}
}
