package alerts

import (
	"time"

	"github.com/google/uuid"
	"github.com/sawpanic/tradesignal/internal/model"
)

// Engine runs every evaluator for a ticker's latest readings and
// cooldown-gates the results before they reach the alert ring (spec §4.G).
type Engine struct {
	cooldown *Cooldown
}

// NewEngine builds an Engine with a fresh cooldown tracker.
func NewEngine() *Engine {
	return &Engine{cooldown: NewCooldown()}
}

// TickerInputs bundles one ticker's readings for one evaluation pass.
type TickerInputs struct {
	Ticker       string
	Technicals   model.Technicals
	Volume       float64
	AvgVolume20d float64
	Bid, Ask     float64
	LatestGapIdx int
	NewFlow      []model.FlowItem
	NewDarkPool  []model.DarkPoolPrint
}

// Evaluate runs all evaluators for one ticker and returns the alerts that
// survive the cooldown gate, each stamped with a fresh ID.
func (e *Engine) Evaluate(in TickerInputs, session model.Session, now time.Time) []model.Alert {
	var candidates []*model.Alert

	candidates = append(candidates, EvalRSIExtreme(in.Ticker, in.Technicals, session, now))
	candidates = append(candidates, EvalEMAMACDConfirmation(in.Ticker, in.Technicals, session, now))
	candidates = append(candidates, EvalVolumeSpike(in.Ticker, in.Volume, in.AvgVolume20d, session, now))
	candidates = append(candidates, EvalGap(in.Ticker, in.Technicals.Gaps, in.LatestGapIdx, session, now))

	for _, item := range in.NewFlow {
		candidates = append(candidates, EvalOptionFlow(item, session, now))
	}
	for _, print := range in.NewDarkPool {
		candidates = append(candidates, EvalDarkPoolPrint(print, in.Bid, in.Ask, session, now))
	}

	var out []model.Alert
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if !e.cooldown.Allow(c.Ticker, c.Type, now) {
			continue
		}
		c.ID = uuid.NewString()
		out = append(out, *c)
	}
	return out
}
