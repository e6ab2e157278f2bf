package signal

import "github.com/sawpanic/tradesignal/internal/model"

// SqueezeInputs bundles the three tiered conditions of the squeeze composite
// (spec §4.F).
type SqueezeInputs struct {
	ShortVolumeRatio      float64 // short volume / total volume, today
	FTDs                  float64 // most recent fails-to-deliver quantity
	ShortInterestPctFloat float64 // SI as a percentage of float
}

// squeezeThresholds are the per-factor cutoffs contributing +1 or +2 points
// to the 0-6 composite (spec §4.F).
const (
	squeezeShortVolRatioHigh = 0.5
	squeezeShortVolRatioMid  = 0.4
	squeezeFTDsHigh          = 1_000_000.0
	squeezeFTDsMid           = 500_000.0
	squeezeSIPctFloatHigh    = 20.0
	squeezeSIPctFloatMid     = 10.0
	squeezeBadDataCeiling    = 100.0
)

// ComputeSqueezeScore tallies the three-factor squeeze composite and buckets
// it into a label (spec §4.F):
//
//	≥5: EXTREME
//	≥4: HIGH
//	≥3: ELEVATED
//	≥2: MODERATE
//	else: LOW
func ComputeSqueezeScore(ticker string, in SqueezeInputs) model.SqueezeScore {
	siPct := in.ShortInterestPctFloat
	if siPct > squeezeBadDataCeiling {
		siPct = 0
	}

	score := 0
	switch {
	case in.ShortVolumeRatio > squeezeShortVolRatioHigh:
		score += 2
	case in.ShortVolumeRatio > squeezeShortVolRatioMid:
		score++
	}
	switch {
	case in.FTDs > squeezeFTDsHigh:
		score += 2
	case in.FTDs > squeezeFTDsMid:
		score++
	}
	switch {
	case siPct > squeezeSIPctFloatHigh:
		score += 2
	case siPct > squeezeSIPctFloatMid:
		score++
	}

	return model.SqueezeScore{Ticker: ticker, Score: score, Label: squeezeLabel(score)}
}

func squeezeLabel(score int) model.SqueezeLabel {
	switch {
	case score >= 5:
		return model.SqueezeExtreme
	case score >= 4:
		return model.SqueezeHigh
	case score >= 3:
		return model.SqueezeElevated
	case score >= 2:
		return model.SqueezeModerate
	default:
		return model.SqueezeLow
	}
}
