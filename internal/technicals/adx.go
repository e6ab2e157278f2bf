package technicals

import "github.com/sawpanic/tradesignal/internal/model"

// adxStrongThreshold and adxWeakThreshold bucket the smoothed ADX reading
// (spec §4.E): ADX>=30 STRONG, 20<=ADX<30 WEAK, else NO_TREND.
const (
	adxStrongThreshold = 30.0
	adxWeakThreshold   = 20.0
)

// ADX computes the Wilder DM/TR-smoothed ADX(period) along with +DI/-DI,
// returning the single most recent reading (spec §4.E).
func ADX(highs, lows, closes []float64, period int) model.ADXResult {
	n := len(highs)
	if n < period*2+1 {
		return model.ADXResult{Strength: model.TrendNone}
	}

	plusDM := make([]float64, 0, n-1)
	minusDM := make([]float64, 0, n-1)
	tr := make([]float64, 0, n-1)

	for i := 1; i < n; i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]

		switch {
		case upMove > downMove && upMove > 0:
			plusDM = append(plusDM, upMove)
			minusDM = append(minusDM, 0)
		case downMove > upMove && downMove > 0:
			plusDM = append(plusDM, 0)
			minusDM = append(minusDM, downMove)
		default:
			plusDM = append(plusDM, 0)
			minusDM = append(minusDM, 0)
		}
		tr = append(tr, trueRange(highs[i], lows[i], closes[i-1]))
	}

	smoothedPlusDM := wilderSmoothSeries(plusDM, period)
	smoothedMinusDM := wilderSmoothSeries(minusDM, period)
	smoothedTR := wilderSmoothSeries(tr, period)

	m := len(smoothedTR)
	if m == 0 {
		return model.ADXResult{Strength: model.TrendNone}
	}

	dx := make([]float64, m)
	for i := 0; i < m; i++ {
		var plusDI, minusDI float64
		if smoothedTR[i] != 0 {
			plusDI = 100 * smoothedPlusDM[i] / smoothedTR[i]
			minusDI = 100 * smoothedMinusDM[i] / smoothedTR[i]
		}
		sum := plusDI + minusDI
		if sum != 0 {
			dx[i] = 100 * absf(plusDI-minusDI) / sum
		}
	}

	adxSeries := wilderSmoothSeries(dx, period)
	if len(adxSeries) == 0 {
		return model.ADXResult{Strength: model.TrendNone}
	}

	lastTR := smoothedTR[m-1]
	var plusDI, minusDI float64
	if lastTR != 0 {
		plusDI = 100 * smoothedPlusDM[m-1] / lastTR
		minusDI = 100 * smoothedMinusDM[m-1] / lastTR
	}

	adxVal := adxSeries[len(adxSeries)-1]
	result := model.ADXResult{
		ADX:     adxVal,
		PlusDI:  plusDI,
		MinusDI: minusDI,
	}
	switch {
	case adxVal >= adxStrongThreshold:
		result.Strength = model.TrendStrong
	case adxVal >= adxWeakThreshold:
		result.Strength = model.TrendWeak
	default:
		result.Strength = model.TrendNone
	}
	switch {
	case plusDI > minusDI:
		result.Direction = model.Bullish
	case minusDI > plusDI:
		result.Direction = model.Bearish
	default:
		result.Direction = model.Neutral
	}
	return result
}

// wilderSmoothSeries applies Wilder's first-value-is-sum, recursive-from-there
// smoothing used by DM/TR/ADX (spec §4.E).
func wilderSmoothSeries(xs []float64, period int) []float64 {
	if len(xs) < period {
		return nil
	}
	sum := 0.0
	for _, x := range xs[:period] {
		sum += x
	}
	out := make([]float64, 0, len(xs)-period+1)
	out = append(out, sum)
	prev := sum
	for i := period; i < len(xs); i++ {
		next := prev - prev/float64(period) + xs[i]
		out = append(out, next)
		prev = next
	}
	return out
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
