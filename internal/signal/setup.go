package signal

import "github.com/sawpanic/tradesignal/internal/model"

// atrStopMult and atrTargetMults size the setup off the ATR when no pivot
// level sits closer (spec §4.F): target1 = price+ATR, target2 = price+2·ATR,
// stop = price−0.5·ATR, giving riskReward = ATR/(0.5·ATR) = 2.0.
const (
	atrStopMult    = 0.5
	atrTarget1Mult = 1.0
	atrTarget2Mult = 2.0
)

// GenerateSetup builds the entry/targets/stop for a directional signal.
// Stop and targets prefer the nearest classic pivot level in the
// appropriate direction, falling back to an ATR-derived distance when no
// pivot sits inside the ATR band (spec §4.F).
func GenerateSetup(direction model.Bias, last, atr float64, pivots model.Pivots, confidence float64, session model.Session) *model.TradeSetup {
	if direction == model.Neutral || atr <= 0 {
		return nil
	}

	var d model.Direction
	var entry, target1, target2, stop float64

	switch direction {
	case model.Bullish:
		d = model.Long
		entry = last
		stop = nearestBelow(last-atr*atrStopMult, pivots.S1, last)
		target1 = nearestAbove(last+atr*atrTarget1Mult, pivots.R1, last)
		target2 = nearestAbove(last+atr*atrTarget2Mult, pivots.R2, last)
	case model.Bearish:
		d = model.Short
		entry = last
		stop = nearestAbove(last+atr*atrStopMult, pivots.R1, last)
		target1 = nearestBelow(last-atr*atrTarget1Mult, pivots.S1, last)
		target2 = nearestBelow(last-atr*atrTarget2Mult, pivots.S2, last)
	}

	var risk, reward float64
	if d == model.Long {
		risk = entry - stop
		reward = target1 - entry
	} else {
		risk = stop - entry
		reward = entry - target1
	}

	riskReward := 0.0
	if risk > 0 {
		riskReward = reward / risk
	}

	return &model.TradeSetup{
		Direction:  d,
		Entry:      entry,
		Target1:    target1,
		Target2:    target2,
		Stop:       stop,
		RiskReward: riskReward,
		Confidence: confidence,
		Horizon:    classifyHorizon(entry, target1),
		Session:    session,
	}
}

// nearestBelow picks whichever of the ATR-derived level or the pivot level
// is closer to (but still below) ref, preferring the pivot when it sits
// within the ATR band.
func nearestBelow(atrLevel, pivotLevel, ref float64) float64 {
	if pivotLevel < ref && pivotLevel > atrLevel {
		return pivotLevel
	}
	return atrLevel
}

func nearestAbove(atrLevel, pivotLevel, ref float64) float64 {
	if pivotLevel > ref && pivotLevel < atrLevel {
		return pivotLevel
	}
	return atrLevel
}

// classifyHorizon buckets the setup by its target1-implied expected move
// (spec §4.F): >5% Swing 3-5d, >2% Swing 1-3d, >0.8% Day Trade, else Scalp.
func classifyHorizon(entry, target1 float64) model.Horizon {
	if entry == 0 {
		return model.HorizonScalp
	}
	movePct := (target1 - entry) / entry * 100
	if movePct < 0 {
		movePct = -movePct
	}

	switch {
	case movePct > 5:
		return model.HorizonSwing35
	case movePct > 2:
		return model.HorizonSwing13
	case movePct > 0.8:
		return model.HorizonDayTrade
	default:
		return model.HorizonScalp
	}
}
