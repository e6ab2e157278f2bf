package journal

import "github.com/sawpanic/tradesignal/internal/model"

// fallbackRiskDollars is used for pnlTotal when a trade's share count is
// unknown (spec §4.I "P&L").
const fallbackRiskDollars = 2000.0

// pnlPercent is the direction-signed relative return from fill to price.
func pnlPercent(direction model.Direction, fill, price float64) float64 {
	if direction == model.Short {
		return (fill - price) / fill
	}
	return (price - fill) / fill
}

// pnlPoints is the direction-signed point move from fill to price.
func pnlPoints(direction model.Direction, fill, price float64) float64 {
	if direction == model.Short {
		return fill - price
	}
	return price - fill
}

// pnlTotal converts points into dollars, falling back to a fixed risk
// amount when shares is unknown.
func pnlTotal(points, shares float64) float64 {
	if shares <= 0 {
		if points >= 0 {
			return fallbackRiskDollars
		}
		return -fallbackRiskDollars
	}
	return points * shares
}
