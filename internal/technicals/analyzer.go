package technicals

import (
	"github.com/sawpanic/tradesignal/internal/model"
)

// biasMargin is the minimum bull-minus-bear point margin needed to call a
// directional bias; anything inside the band is NEUTRAL (spec §4.E).
const biasMargin = 1.0

// volumeSpikeRatio is the last-bar-vs-trailing-20-bar-average volume ratio
// that counts as a spike for the bias score (spec §4.E "volume spike +1 to
// leader").
const volumeSpikeRatio = 1.5

// biasADXThreshold gates the ADX-alignment bias category directly on the
// raw ADX reading rather than the STRONG/WEAK/NO_TREND bucket (spec §4.E).
const biasADXThreshold = 25.0

// Analyze computes the full Technicals snapshot for one ticker/timeframe
// from an ascending-by-time candle series. It is a pure function: the same
// candles always produce an identical result (spec §8 purity invariant).
// Series shorter than model.MinCandlesRequired return the zero value with
// ErrInsufficientData.
func Analyze(ticker, timeframe string, candles []model.Candle) (model.Technicals, error) {
	if len(candles) < model.MinCandlesRequired {
		return model.Technicals{}, ErrInsufficientData{Have: len(candles), Want: model.MinCandlesRequired}
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	t := model.Technicals{Ticker: ticker, Timeframe: timeframe}

	t.EMA9 = EMALast(closes, 9)
	t.EMA20 = EMALast(closes, 20)
	t.EMA50 = EMALast(closes, 50)
	t.SMA200 = SMA(closes, 200)

	t.RSI = RSILast(closes, 14)
	macd := MACDLast(closes)
	t.MACD = model.MACDValue(macd)
	t.ATR = ATRLast(highs, lows, closes, 14)

	upper, middle, lower, position, bandwidth := BollingerBands(closes, 20, 2)
	t.Bollinger = model.Bollinger{Upper: upper, Middle: middle, Lower: lower, Position: position, Bandwidth: bandwidth}

	last := candles[len(candles)-1]
	pp, r1, r2, r3, s1, s2, s3 := ClassicPivots(last.High, last.Low, last.Close)
	t.Pivots = model.Pivots{PP: pp, R1: r1, R2: r2, R3: r3, S1: s1, S2: s2, S3: s3}

	t.Gaps = DetectGaps(candles)
	t.CandlePatterns = DetectCandlePatterns(candles)
	t.ADX = ADX(highs, lows, closes, 14)

	swingHigh, swingLow := LatestSwings(highs, lows)
	t.SwingHigh = swingHigh
	t.SwingLow = swingLow
	if swingHigh != nil && swingLow != nil {
		t.Fibonacci = FibonacciLevels(swingHigh.Price, swingLow.Price)
	}

	swings := SwingPoints(highs, lows)
	t.RSIDivergences = RSIDivergences(swings, rsiByIndex(closes, 14))

	t.BullPoints, t.BearPoints = scoreBias(t, last, volumeSpike(candles))
	t.Bias = classifyBias(t.BullPoints, t.BearPoints)

	return t, nil
}

// volumeSpike reports whether the most recent bar's volume ran hot against
// the trailing 20-bar average (spec §4.E "volume spike +1 to leader").
func volumeSpike(candles []model.Candle) bool {
	n := len(candles)
	lookback := 20
	if n <= lookback {
		return false
	}
	var sum float64
	for _, c := range candles[n-1-lookback : n-1] {
		sum += c.Volume
	}
	avg := sum / float64(lookback)
	if avg <= 0 {
		return false
	}
	return candles[n-1].Volume/avg > volumeSpikeRatio
}

// rsiByIndex maps each candle index that has a computed RSI(period) value to
// that value, for divergence comparison against swing-point indices.
func rsiByIndex(closes []float64, period int) map[int]float64 {
	series := RSI(closes, period)
	out := make(map[int]float64, len(series))
	for i, v := range series {
		out[period+i] = v
	}
	return out
}

// scoreBias accumulates weighted bull/bear points from the technical
// readings (spec §4.E "bias is a point accumulation, not a single rule"):
// RSI bands ±1, RSI extremes ±1, EMA alignment ±2, MACD-histogram sign ±1,
// volume spike +1 to whichever side currently leads, ADX≥25 aligns to DI
// direction ±1, RSI divergences ±2 regular / ±1 hidden.
func scoreBias(t model.Technicals, last model.Candle, volSpike bool) (bull, bear float64) {
	if last.Close > t.EMA9 && t.EMA9 > t.EMA20 && t.EMA20 > t.EMA50 {
		bull += 2
	}
	if last.Close < t.EMA9 && t.EMA9 < t.EMA20 && t.EMA20 < t.EMA50 {
		bear += 2
	}

	// RSI bands.
	switch {
	case t.RSI > 50:
		bull += 1
	case t.RSI < 50:
		bear += 1
	}

	// RSI extremes.
	switch {
	case t.RSI > 70:
		bull += 1
	case t.RSI < 30:
		bear += 1
	}

	if t.MACD.Histogram > 0 {
		bull += 1
	} else if t.MACD.Histogram < 0 {
		bear += 1
	}

	if t.ADX.ADX >= biasADXThreshold {
		if t.ADX.Direction == model.Bullish {
			bull += 1
		} else if t.ADX.Direction == model.Bearish {
			bear += 1
		}
	}

	for _, d := range t.RSIDivergences {
		switch d {
		case model.RegularBullish:
			bull += 2
		case model.RegularBearish:
			bear += 2
		case model.HiddenBullish:
			bull += 1
		case model.HiddenBearish:
			bear += 1
		}
	}

	if volSpike {
		if bull > bear {
			bull += 1
		} else if bear > bull {
			bear += 1
		}
	}

	return bull, bear
}

func classifyBias(bull, bear float64) model.Bias {
	switch {
	case bull > bear+biasMargin:
		return model.Bullish
	case bear > bull+biasMargin:
		return model.Bearish
	default:
		return model.Neutral
	}
}
