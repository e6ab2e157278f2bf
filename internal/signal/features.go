// Package signal implements the fixed-layout feature vector, weighted
// bull/bear scoring, squeeze scoring, and trade-setup generation of the
// signal engine (spec §4.F). Grounded on the teacher's
// internal/scoring/calculator.go weight-table-times-factor shape and its
// orthogonalizing residual clamp pattern (internal/scoring/residuals_*.go).
package signal

import (
	"math"

	"github.com/sawpanic/tradesignal/internal/model"
)

// Inputs bundles every raw reading the feature builder needs for one ticker.
type Inputs struct {
	Quote      model.Quote
	Technicals model.Technicals
	PrevRSI    float64 // RSI one bar back, for the slope feature
	PrevMACDHistogram float64
	PrevATR    float64

	CallPremium float64
	PutPremium  float64
	IVRank      float64
	IVSkew      float64

	DarkPoolNetBias float64 // -1..1, net of recent prints' InferDarkPoolDirection
	ShortInterestPctFloat float64
	GammaProximity  float64 // -1..1, signed distance to nearest GEX wall
	FibProximity    float64 // -1..1, signed distance to nearest fib level
	AvgVolume20d    float64
	SocialSentiment float64 // -1..1

	Regime model.MarketRegime
}

// clip bounds x to [lo, hi].
func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// BuildFeatures populates the fixed 25-slot feature vector from raw inputs.
// Each directional slot is normalized to roughly [-1, 1] so the weight
// table in weights.go carries all the scale information (spec §4.F).
func BuildFeatures(in Inputs) [model.FeatureVectorSize]float64 {
	var f [model.FeatureVectorSize]float64
	t := in.Technicals

	f[model.FeatRSI] = clip((t.RSI-50)/50, -1, 1)
	f[model.FeatMACDHist] = clip(t.MACD.Histogram/emaScale(in.Quote.Last), -1, 1)
	f[model.FeatEMAAlign] = emaAlignment(t)
	f[model.FeatBBPosition] = clip(t.Bollinger.Position*2-1, -1, 1)
	f[model.FeatATR] = clip(safeDiv(t.ATR, in.Quote.Last), 0, 1)

	totalPremium := in.CallPremium + in.PutPremium
	if totalPremium > 0 {
		f[model.FeatCallPutRatio] = clip((in.CallPremium-in.PutPremium)/totalPremium, -1, 1)
	}

	f[model.FeatDPDirection] = clip(in.DarkPoolNetBias, -1, 1)
	f[model.FeatIVRank] = clip((in.IVRank-50)/50, -1, 1)
	f[model.FeatShortInterest] = clip(in.ShortInterestPctFloat/30, 0, 1)

	if in.AvgVolume20d > 0 {
		f[model.FeatVolumeSpike] = clip(in.Quote.Volume/in.AvgVolume20d-1, -1, 2)
	}

	f[model.FeatBBBandwidth] = clip(t.Bollinger.Bandwidth/20, 0, 1)

	if in.Quote.VWAP > 0 {
		f[model.FeatVWAPDev] = clip((in.Quote.Last-in.Quote.VWAP)/in.Quote.VWAP*10, -1, 1)
	}

	f[model.FeatRegime] = regimeLean(in.Regime)
	f[model.FeatGammaProximity] = clip(in.GammaProximity, -1, 1)
	f[model.FeatIVSkew] = clip(in.IVSkew, -1, 1)
	f[model.FeatCandleScore] = candleScore(t.CandlePatterns)
	f[model.FeatSentiment] = clip(in.SocialSentiment, -1, 1)

	if t.ADX.Strength != model.TrendNone {
		adxDir := 1.0
		if t.ADX.Direction == model.Bearish {
			adxDir = -1.0
		} else if t.ADX.Direction == model.Neutral {
			adxDir = 0
		}
		f[model.FeatADX] = clip(adxDir*t.ADX.ADX/50, -1, 1)
	}

	f[model.FeatRSIDivergence] = divergenceScore(t.RSIDivergences)
	f[model.FeatFibProximity] = clip(in.FibProximity, -1, 1)
	f[model.FeatRSISlope] = clip((t.RSI-in.PrevRSI)/10, -1, 1)
	f[model.FeatMACDAccel] = clip((t.MACD.Histogram-in.PrevMACDHistogram)/emaScale(in.Quote.Last), -1, 1)
	f[model.FeatATRChange] = clip(safeDiv(t.ATR-in.PrevATR, in.PrevATR), -1, 1)

	f[model.FeatRSIxEMA] = clip(f[model.FeatRSI]*f[model.FeatEMAAlign], -1, 1)
	f[model.FeatVolxMACD] = clip(f[model.FeatVolumeSpike]*f[model.FeatMACDHist], -1, 1)

	return f
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// emaScale keeps the MACD-derived features' normalization proportional to
// the ticker's own price level instead of a fixed dollar band.
func emaScale(price float64) float64 {
	if price <= 0 {
		return 1
	}
	return price * 0.01
}

func emaAlignment(t model.Technicals) float64 {
	switch {
	case t.EMA9 > t.EMA20 && t.EMA20 > t.EMA50:
		return 1
	case t.EMA9 < t.EMA20 && t.EMA20 < t.EMA50:
		return -1
	default:
		return 0
	}
}

func regimeLean(r model.MarketRegime) float64 {
	switch r {
	case model.RegimeTrendingUp:
		return 1
	case model.RegimeTrendingDown:
		return -1
	default:
		return 0
	}
}

func candleScore(patterns []model.CandlePattern) float64 {
	score := 0.0
	for _, p := range patterns {
		switch p {
		case model.PatternHammer, model.PatternBullishEngulfing, model.PatternMorningStar:
			score += 1
		case model.PatternShootingStar, model.PatternBearishEngulfing, model.PatternEveningStar:
			score -= 1
		}
	}
	return clip(score, -1, 1)
}

func divergenceScore(divs []model.DivergenceType) float64 {
	score := 0.0
	for _, d := range divs {
		switch d {
		case model.RegularBullish, model.HiddenBullish:
			score += 1
		case model.RegularBearish, model.HiddenBearish:
			score -= 1
		}
	}
	return clip(score, -1, 1)
}
