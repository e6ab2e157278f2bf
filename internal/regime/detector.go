// Package regime fuses VIX, SPY trend, and market breadth into the
// MarketRegime classification consumed by the signal engine's weight
// tables (spec §4.F). Grounded on the teacher's majority-voting detector
// in internal/regime/detector.go, adapted from its three-state
// (TrendingBull/Choppy/HighVol) scheme to the five-state scheme of
// model.MarketRegime.
package regime

import (
	"context"

	"github.com/sawpanic/tradesignal/internal/model"
)

// Inputs supplies the three market-wide signals the classifier votes over.
type Inputs interface {
	VIXLevel(ctx context.Context) (float64, error)
	SPYTrendPercent20d(ctx context.Context) (float64, error)
	BreadthAbove20MA(ctx context.Context) (float64, error) // 0.0-1.0
}

// Thresholds are the vote cutoffs (spec §4.F open question, resolved: see DESIGN.md).
type Thresholds struct {
	HighVIX           float64 // VIX above this votes VOLATILE
	TrendPercent      float64 // |SPY 20d trend%| above this votes TRENDING_*
	BreadthBullish    float64 // breadth above this votes TRENDING_UP
	BreadthBearish    float64 // breadth below this votes TRENDING_DOWN
}

// DefaultThresholds mirrors common desk heuristics: VIX>25 is elevated fear,
// a 5% 20-day SPY move is a directional trend, breadth above 60%/below 40%
// confirms participation.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighVIX:        25.0,
		TrendPercent:   5.0,
		BreadthBullish: 0.60,
		BreadthBearish: 0.40,
	}
}

// Classifier runs the majority vote over Inputs and tracks stability.
type Classifier struct {
	inputs     Inputs
	thresholds Thresholds
	lastRegime model.MarketRegime
	stableFor  int
}

// NewClassifier builds a Classifier with the default thresholds.
func NewClassifier(inputs Inputs) *Classifier {
	return &Classifier{inputs: inputs, thresholds: DefaultThresholds(), lastRegime: model.RegimeUnknown}
}

// NewClassifierWithThresholds builds a Classifier with custom thresholds.
func NewClassifierWithThresholds(inputs Inputs, t Thresholds) *Classifier {
	return &Classifier{inputs: inputs, thresholds: t, lastRegime: model.RegimeUnknown}
}

// Result is one regime classification.
type Result struct {
	Regime     model.MarketRegime
	Confidence float64 // winner's share of the votes cast (two, or three when VIX votes VOLATILE)
	VIX        float64
	SPYTrend   float64
	Breadth    float64
	StableFor  int // consecutive cycles this regime has held
}

// Classify fetches the three signals and performs majority voting
// (spec §4.F). The cadence at which this is called belongs to the
// orchestrator, not the classifier — unlike the teacher's self-scheduling
// API wrapper, this type has no internal timer.
func (c *Classifier) Classify(ctx context.Context) (Result, error) {
	vix, err := c.inputs.VIXLevel(ctx)
	if err != nil {
		return Result{}, err
	}
	trend, err := c.inputs.SPYTrendPercent20d(ctx)
	if err != nil {
		return Result{}, err
	}
	breadth, err := c.inputs.BreadthAbove20MA(ctx)
	if err != nil {
		return Result{}, err
	}

	votes := c.votes(vix, trend, breadth)
	regime, confidence := majority(votes)

	if regime == c.lastRegime {
		c.stableFor++
	} else {
		c.stableFor = 1
		c.lastRegime = regime
	}

	return Result{
		Regime:     regime,
		Confidence: confidence,
		VIX:        vix,
		SPYTrend:   trend,
		Breadth:    breadth,
		StableFor:  c.stableFor,
	}, nil
}

func (c *Classifier) votes(vix, trend, breadth float64) []model.MarketRegime {
	var votes []model.MarketRegime

	if vix >= c.thresholds.HighVIX {
		votes = append(votes, model.RegimeVolatile)
	}

	switch {
	case trend >= c.thresholds.TrendPercent:
		votes = append(votes, model.RegimeTrendingUp)
	case trend <= -c.thresholds.TrendPercent:
		votes = append(votes, model.RegimeTrendingDown)
	default:
		votes = append(votes, model.RegimeRangebound)
	}

	switch {
	case breadth >= c.thresholds.BreadthBullish:
		votes = append(votes, model.RegimeTrendingUp)
	case breadth <= c.thresholds.BreadthBearish:
		votes = append(votes, model.RegimeTrendingDown)
	default:
		votes = append(votes, model.RegimeRangebound)
	}

	return votes
}

// majority returns the plurality winner and its vote share. VOLATILE, when
// present, is a standing override: an elevated-VIX vote always wins because
// it reflects tail risk the directional votes don't capture.
func majority(votes []model.MarketRegime) (model.MarketRegime, float64) {
	if len(votes) == 0 {
		return model.RegimeUnknown, 0
	}

	for _, v := range votes {
		if v == model.RegimeVolatile {
			return model.RegimeVolatile, 1.0 / float64(len(votes))
		}
	}

	counts := map[model.MarketRegime]int{}
	for _, v := range votes {
		counts[v]++
	}

	best := model.RegimeUnknown
	bestCount := 0
	for regime, n := range counts {
		if n > bestCount {
			bestCount = n
			best = regime
		}
	}
	return best, float64(bestCount) / float64(len(votes))
}
