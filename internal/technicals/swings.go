package technicals

import "github.com/sawpanic/tradesignal/internal/model"

// swingLookback is the fractal confirmation window on each side (spec §4.E).
const swingLookback = 5

// SwingPoints finds fractal swing highs/lows: a bar whose high (low) is the
// strict max (min) of the lookback window on both sides.
func SwingPoints(highs, lows []float64) []model.SwingPoint {
	n := len(highs)
	var out []model.SwingPoint
	for i := swingLookback; i < n-swingLookback; i++ {
		if isSwingHigh(highs, i) {
			out = append(out, model.SwingPoint{Index: i, Price: highs[i], High: true})
		}
		if isSwingLow(lows, i) {
			out = append(out, model.SwingPoint{Index: i, Price: lows[i], High: false})
		}
	}
	return out
}

func isSwingHigh(highs []float64, i int) bool {
	for j := i - swingLookback; j <= i+swingLookback; j++ {
		if j == i {
			continue
		}
		if highs[j] >= highs[i] {
			return false
		}
	}
	return true
}

func isSwingLow(lows []float64, i int) bool {
	for j := i - swingLookback; j <= i+swingLookback; j++ {
		if j == i {
			continue
		}
		if lows[j] <= lows[i] {
			return false
		}
	}
	return true
}

// LatestSwings returns the most recent confirmed swing high and low, or nil
// if none found in the series.
func LatestSwings(highs, lows []float64) (high, low *model.SwingPoint) {
	points := SwingPoints(highs, lows)
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		if p.High && high == nil {
			h := p
			high = &h
		}
		if !p.High && low == nil {
			l := p
			low = &l
		}
		if high != nil && low != nil {
			break
		}
	}
	return
}

// fibRatios are the retracement and extension ratios computed off the most
// recent swing range (spec §4.E).
var fibRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786, 1.272, 1.618}

// FibonacciLevels derives retracement/extension levels from a swing's high
// and low. Extension levels (ratio > 1) are flagged.
func FibonacciLevels(swingHigh, swingLow float64) []model.FibLevel {
	diff := swingHigh - swingLow
	levels := make([]model.FibLevel, 0, len(fibRatios))
	for _, r := range fibRatios {
		levels = append(levels, model.FibLevel{
			Ratio:     r,
			Price:     swingHigh - diff*r,
			Extension: r > 1,
		})
	}
	return levels
}
