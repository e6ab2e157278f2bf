package signal

import (
	"math"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/regime"
)

// featureGroup assigns each feature slot to one of the regime's five
// weight-table buckets (spec §4.F "regime modulates the weight table").
func featureGroup(i int) string {
	switch i {
	case model.FeatCallPutRatio, model.FeatIVRank, model.FeatIVSkew:
		return "option_flow"
	case model.FeatDPDirection:
		return "dark_pool"
	case model.FeatGammaProximity:
		return "gamma_walls"
	case model.FeatShortInterest, model.FeatVolumeSpike:
		return "short_squeeze"
	default:
		return "momentum"
	}
}

func groupMultiplier(w regime.FactorWeights, group string) float64 {
	switch group {
	case "option_flow":
		return w.OptionFlow
	case "dark_pool":
		return w.DarkPool
	case "gamma_walls":
		return w.GammaWalls
	case "short_squeeze":
		return w.ShortSqueeze
	default:
		return w.Momentum
	}
}

// ensembleAlpha is the rule-engine's share of the blended confidence
// (spec §4.F "ensemble blending"); the remainder goes to the ML calibrator
// score when one is supplied.
const ensembleAlpha = 0.7

// directionThreshold is the minimum |bull-bear| margin needed to call a
// direction; anything inside the band is NEUTRAL (spec §4.F).
const directionThreshold = 0.5

// Score runs the weighted bull/bear accumulation over the feature vector,
// clips the rule-based confidence, and optionally blends in an external ML
// calibrator score. mlScore of nil skips blending entirely (spec §4.F:
// "absent an ML score, confidence is the rule engine's own clip").
func Score(ticker string, f [model.FeatureVectorSize]float64, mr model.MarketRegime, mlScore *float64, now time.Time) model.SignalResult {
	weights := regime.WeightsFor(mr)

	var bull, bear float64
	signals := make([]model.NamedSignal, 0, model.FeatureVectorSize)

	for i, v := range f {
		w := BaseWeights[i] * groupMultiplier(weights, featureGroup(i))
		contribution := v * w

		named := model.NamedSignal{Name: featureName(i)}
		if contribution > 0 {
			bull += contribution
			named.Bull = contribution
		} else if contribution < 0 {
			bear += -contribution
			named.Bear = -contribution
		}
		signals = append(signals, named)
	}

	ruleConfidence := clip(50+50*(bull-bear)/TotalWeight(), 0, 95)

	confidence := ruleConfidence
	if mlScore != nil {
		confidence = math.Round(ensembleAlpha*ruleConfidence + (1-ensembleAlpha)**mlScore)
	}

	direction := model.Neutral
	switch {
	case bull-bear >= directionThreshold:
		direction = model.Bullish
	case bear-bull >= directionThreshold:
		direction = model.Bearish
	}

	return model.SignalResult{
		Ticker:     ticker,
		Direction:  direction,
		Confidence: confidence,
		BullScore:  bull,
		BearScore:  bear,
		Features:   f,
		Signals:    signals,
		ComputedAt: now,
	}
}

var featureNames = [model.FeatureVectorSize]string{
	model.FeatRSI:            "rsi",
	model.FeatMACDHist:       "macd_histogram",
	model.FeatEMAAlign:       "ema_alignment",
	model.FeatBBPosition:     "bollinger_position",
	model.FeatATR:            "atr",
	model.FeatCallPutRatio:   "call_put_ratio",
	model.FeatDPDirection:    "dark_pool_direction",
	model.FeatIVRank:         "iv_rank",
	model.FeatShortInterest:  "short_interest",
	model.FeatVolumeSpike:    "volume_spike",
	model.FeatBBBandwidth:    "bollinger_bandwidth",
	model.FeatVWAPDev:        "vwap_deviation",
	model.FeatRegime:         "market_regime",
	model.FeatGammaProximity: "gamma_proximity",
	model.FeatIVSkew:         "iv_skew",
	model.FeatCandleScore:    "candle_pattern",
	model.FeatSentiment:      "social_sentiment",
	model.FeatADX:            "adx",
	model.FeatRSIDivergence:  "rsi_divergence",
	model.FeatFibProximity:   "fib_proximity",
	model.FeatRSISlope:       "rsi_slope",
	model.FeatMACDAccel:      "macd_acceleration",
	model.FeatATRChange:      "atr_change",
	model.FeatRSIxEMA:        "rsi_x_ema",
	model.FeatVolxMACD:       "volume_x_macd",
}

func featureName(i int) string {
	return featureNames[i]
}
