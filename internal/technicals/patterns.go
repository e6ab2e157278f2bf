package technicals

import (
	"math"

	"github.com/sawpanic/tradesignal/internal/model"
)

// gapThresholdPct is the minimum open-vs-prior-close move classified as a gap (spec §4.E).
const gapThresholdPct = 0.5

// DetectGaps scans consecutive candles for open-vs-prior-close moves at or
// above gapThresholdPct.
func DetectGaps(candles []model.Candle) []model.Gap {
	var gaps []model.Gap
	for i := 1; i < len(candles); i++ {
		prevClose := candles[i-1].Close
		if prevClose == 0 {
			continue
		}
		pct := (candles[i].Open - prevClose) / prevClose * 100
		switch {
		case pct >= gapThresholdPct:
			gaps = append(gaps, model.Gap{Index: i, Type: model.GapUp, PctSize: pct})
		case pct <= -gapThresholdPct:
			gaps = append(gaps, model.Gap{Index: i, Type: model.GapDown, PctSize: -pct})
		}
	}
	return gaps
}

// bodySize and wick helpers operate on a single candle.
func body(c model.Candle) float64      { return math.Abs(c.Close - c.Open) }
func fullRange(c model.Candle) float64 { return c.High - c.Low }
func upperWick(c model.Candle) float64 {
	return c.High - math.Max(c.Open, c.Close)
}
func lowerWick(c model.Candle) float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

// DetectCandlePatterns classifies the final bar (and, for multi-bar
// patterns, the final two or three bars) of the series (spec §4.E).
func DetectCandlePatterns(candles []model.Candle) []model.CandlePattern {
	n := len(candles)
	if n == 0 {
		return nil
	}
	var out []model.CandlePattern
	last := candles[n-1]

	if isDoji(last) {
		out = append(out, model.PatternDoji)
	}
	if isHammer(last) {
		out = append(out, model.PatternHammer)
	}
	if isShootingStar(last) {
		out = append(out, model.PatternShootingStar)
	}

	if n >= 2 {
		prev := candles[n-2]
		if isBullishEngulfing(prev, last) {
			out = append(out, model.PatternBullishEngulfing)
		}
		if isBearishEngulfing(prev, last) {
			out = append(out, model.PatternBearishEngulfing)
		}
	}

	if n >= 3 {
		a, b, c := candles[n-3], candles[n-2], candles[n-1]
		if isMorningStar(a, b, c) {
			out = append(out, model.PatternMorningStar)
		}
		if isEveningStar(a, b, c) {
			out = append(out, model.PatternEveningStar)
		}
	}
	return out
}

// isDoji: body is a small fraction of the bar's full range.
func isDoji(c model.Candle) bool {
	r := fullRange(c)
	if r == 0 {
		return false
	}
	return body(c)/r < 0.1
}

// isHammer: small body in the upper third, lower wick at least 2x the body.
func isHammer(c model.Candle) bool {
	b := body(c)
	r := fullRange(c)
	if r == 0 || b == 0 {
		return false
	}
	return lowerWick(c) >= 2*b && upperWick(c) < b
}

// isShootingStar: small body in the lower third, upper wick at least 2x the body.
func isShootingStar(c model.Candle) bool {
	b := body(c)
	r := fullRange(c)
	if r == 0 || b == 0 {
		return false
	}
	return upperWick(c) >= 2*b && lowerWick(c) < b
}

// isBullishEngulfing: prior bar red, current bar green and its body engulfs
// the prior bar's body.
func isBullishEngulfing(prev, cur model.Candle) bool {
	prevRed := prev.Close < prev.Open
	curGreen := cur.Close > cur.Open
	return prevRed && curGreen && cur.Open <= prev.Close && cur.Close >= prev.Open
}

// isBearishEngulfing: prior bar green, current bar red and its body engulfs
// the prior bar's body.
func isBearishEngulfing(prev, cur model.Candle) bool {
	prevGreen := prev.Close > prev.Open
	curRed := cur.Close < cur.Open
	return prevGreen && curRed && cur.Open >= prev.Close && cur.Close <= prev.Open
}

// isMorningStar: long red, small-body gap-down middle bar, long green
// closing above the midpoint of bar one.
func isMorningStar(a, b, c model.Candle) bool {
	aRed := a.Close < a.Open
	cGreen := c.Close > c.Open
	smallMiddle := body(b) < body(a)*0.5 && body(b) < body(c)*0.5
	closesAboveMid := c.Close > (a.Open+a.Close)/2
	return aRed && cGreen && smallMiddle && closesAboveMid
}

// isEveningStar: long green, small-body gap-up middle bar, long red closing
// below the midpoint of bar one.
func isEveningStar(a, b, c model.Candle) bool {
	aGreen := a.Close > a.Open
	cRed := c.Close < c.Open
	smallMiddle := body(b) < body(a)*0.5 && body(b) < body(c)*0.5
	closesBelowMid := c.Close < (a.Open+a.Close)/2
	return aGreen && cRed && smallMiddle && closesBelowMid
}
