package journal

import (
	"math"

	"github.com/sawpanic/tradesignal/internal/model"
)

// minSharesFor returns the minimum share count for a fill price (spec §4.I).
func minSharesFor(price float64) float64 {
	switch {
	case price < 100:
		return 10
	case price < 500:
		return 5
	default:
		return 2
	}
}

// kellyFraction is the classic f* = p - q/b Kelly criterion, clamped to
// never go negative (a negative edge sizes to zero, not a short bias here).
func kellyFraction(winRate, payoffRatio float64) float64 {
	if payoffRatio <= 0 {
		return 0
	}
	f := winRate - (1-winRate)/payoffRatio
	return math.Max(0, f)
}

func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// sizeFraction returns the fraction of Config.VersionBudget to allocate,
// using half-Kelly once at least 10 closed (non-EXPIRED) trades exist for
// signalVersion, and a confidence-scaled 10-40% fallback otherwise (spec §4.I).
func sizeFraction(closed []model.PaperTrade, confidence float64) float64 {
	var decided []model.PaperTrade
	for _, tr := range closed {
		if tr.Status.Closed() && tr.Status != model.Expired && tr.PnLPercent != nil {
			decided = append(decided, tr)
		}
	}

	if len(decided) < 10 {
		return clip(0.10+0.30*confidence/100, 0.10, 0.40)
	}

	var wins, losses int
	var sumWin, sumLoss float64
	for _, tr := range decided {
		pct := *tr.PnLPercent
		if pct >= 0 {
			wins++
			sumWin += pct
		} else {
			losses++
			sumLoss += -pct
		}
	}

	winRate := float64(wins) / float64(len(decided))
	if losses == 0 || wins == 0 {
		return clip(0.10+0.30*confidence/100, 0.10, 0.40)
	}
	avgWin := sumWin / float64(wins)
	avgLoss := sumLoss / float64(losses)
	payoff := avgWin / avgLoss

	half := kellyFraction(winRate, payoff) / 2
	return clip(half*(confidence/100), 0.10, 0.50)
}

// sizeShares computes the whole-share count to open, applying the minimum
// share floor for fill price. closed must already be filtered to the
// relevant signalVersion.
func sizeShares(cfg Config, closed []model.PaperTrade, confidence, fillPrice float64) float64 {
	fraction := sizeFraction(closed, confidence)
	notional := fraction * cfg.VersionBudget
	shares := math.Floor(notional / fillPrice)
	if min := minSharesFor(fillPrice); shares < min {
		shares = min
	}
	return shares
}
