package regime

import "github.com/sawpanic/tradesignal/internal/model"

// FactorWeights are the per-feature multipliers the signal engine applies
// before summing bull/bear points (spec §4.F "regime modulates the weight
// table, not the feature set"). Grounded on the teacher's WeightPreset
// table-per-regime shape in internal/regime/weights.go.
type FactorWeights struct {
	Momentum   float64 // RSI/EMA/MACD-derived technical score
	OptionFlow float64
	DarkPool   float64
	GammaWalls float64
	ShortSqueeze float64
}

// Presets is the full set of regime-specific weight tables.
var Presets = map[model.MarketRegime]FactorWeights{
	model.RegimeTrendingUp: {
		Momentum: 1.20, OptionFlow: 1.00, DarkPool: 0.90, GammaWalls: 0.80, ShortSqueeze: 0.90,
	},
	model.RegimeTrendingDown: {
		Momentum: 1.20, OptionFlow: 1.00, DarkPool: 0.90, GammaWalls: 0.80, ShortSqueeze: 1.10,
	},
	model.RegimeVolatile: {
		Momentum: 0.80, OptionFlow: 1.10, DarkPool: 1.10, GammaWalls: 1.30, ShortSqueeze: 1.20,
	},
	model.RegimeRangebound: {
		Momentum: 0.90, OptionFlow: 1.00, DarkPool: 1.00, GammaWalls: 1.10, ShortSqueeze: 1.00,
	},
	model.RegimeUnknown: {
		Momentum: 1.00, OptionFlow: 1.00, DarkPool: 1.00, GammaWalls: 1.00, ShortSqueeze: 1.00,
	},
}

// WeightsFor returns the factor weight table for a regime, falling back to
// the neutral UNKNOWN table if the regime is unrecognized.
func WeightsFor(r model.MarketRegime) FactorWeights {
	if w, ok := Presets[r]; ok {
		return w
	}
	return Presets[model.RegimeUnknown]
}
