package signal

import "github.com/sawpanic/tradesignal/internal/model"

// BaseWeights is the fixed per-feature weight table applied before any
// regime modulation (spec §4.F). Grounded on the teacher's per-factor
// weight tables in internal/scoring/residuals_technical.go and
// weights_regime.go.
var BaseWeights = [model.FeatureVectorSize]float64{
	model.FeatRSI:            1.2,
	model.FeatMACDHist:       1.3,
	model.FeatEMAAlign:       1.5,
	model.FeatBBPosition:     0.8,
	model.FeatATR:            0.3,
	model.FeatCallPutRatio:   1.4,
	model.FeatDPDirection:    1.1,
	model.FeatIVRank:         0.7,
	model.FeatShortInterest:  0.6,
	model.FeatVolumeSpike:    1.0,
	model.FeatBBBandwidth:    0.4,
	model.FeatVWAPDev:        0.9,
	model.FeatRegime:         1.0,
	model.FeatGammaProximity: 0.9,
	model.FeatIVSkew:         0.5,
	model.FeatCandleScore:    0.8,
	model.FeatSentiment:      0.6,
	model.FeatADX:            1.2,
	model.FeatRSIDivergence:  1.1,
	model.FeatFibProximity:   0.7,
	model.FeatRSISlope:       0.8,
	model.FeatMACDAccel:      0.9,
	model.FeatATRChange:      0.3,
	model.FeatRSIxEMA:        0.6,
	model.FeatVolxMACD:       0.6,
}

// TotalWeight is the sum of the base weight table, the normalizer W in the
// confidence clip formula clip(50 + 50*(bull-bear)/W, 0, 95) (spec §4.F).
func TotalWeight() float64 {
	total := 0.0
	for _, w := range BaseWeights {
		total += w
	}
	return total
}
