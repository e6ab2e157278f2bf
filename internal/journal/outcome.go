package journal

import (
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
)

// outcomeGracePeriod blocks outcome evaluation for this long after open, to
// avoid a stale first print falsely triggering stop/target (spec §4.I).
const outcomeGracePeriod = 5 * time.Minute

// outcomeMaxAge is the age past which a still-open trade expires.
const outcomeMaxAge = 5 * 24 * time.Hour

// CheckOutcomes evaluates every open trade against its latest last price
// and closes (or updates the unrealized P&L of) each one. lastPrice is
// keyed by ticker. Returns the trades that closed this pass.
func (j *Journal) CheckOutcomes(lastPrice map[string]float64, now time.Time) []model.PaperTrade {
	j.mu.Lock()
	defer j.mu.Unlock()

	var closed []model.PaperTrade
	for i := range j.trades {
		tr := &j.trades[i]
		if tr.Status != model.Pending {
			continue
		}
		if now.Sub(tr.OpenTime) < outcomeGracePeriod {
			continue
		}
		price, ok := lastPrice[tr.Ticker]
		if !ok {
			continue
		}

		status, decided := evaluateStatus(*tr, price, now)
		if !decided {
			j.updateUnrealized(tr, price)
			continue
		}

		j.closeTrade(tr, status, price, now)
		closed = append(closed, *tr)
	}
	return closed
}

// evaluateStatus applies the stop/target1/target2/age ladder of spec §4.I,
// using only the latest price (never session high/low).
func evaluateStatus(tr model.PaperTrade, price float64, now time.Time) (model.TradeStatus, bool) {
	age := now.Sub(tr.OpenTime)

	if tr.Direction == model.Short {
		switch {
		case price >= tr.Stop:
			return model.LossStop, true
		case price <= tr.Target2:
			return model.WinT2, true
		case price <= tr.Target1:
			return model.WinT1, true
		}
	} else {
		switch {
		case price <= tr.Stop:
			return model.LossStop, true
		case price >= tr.Target2:
			return model.WinT2, true
		case price >= tr.Target1:
			return model.WinT1, true
		}
	}

	if age > outcomeMaxAge {
		return model.Expired, true
	}
	return "", false
}

func (j *Journal) updateUnrealized(tr *model.PaperTrade, price float64) {
	pct := pnlPercent(tr.Direction, tr.Fill, price)
	pts := pnlPoints(tr.Direction, tr.Fill, price)
	tr.UnrealizedPercent = &pct
	tr.UnrealizedPoints = &pts
}

// closeTrade finalizes tr's P&L, releases its exposure, and marks it closed.
// Caller must hold j.mu.
func (j *Journal) closeTrade(tr *model.PaperTrade, status model.TradeStatus, exitPrice float64, closeTime time.Time) {
	pct := pnlPercent(tr.Direction, tr.Fill, exitPrice)
	pts := pnlPoints(tr.Direction, tr.Fill, exitPrice)
	total := pnlTotal(pts, tr.Shares)

	tr.Status = status
	exit := exitPrice
	ct := closeTime
	tr.ExitPrice = &exit
	tr.CloseTime = &ct
	tr.PnLPercent = &pct
	tr.PnLPoints = &pts
	tr.PnLTotal = &total
	tr.UnrealizedPercent = nil
	tr.UnrealizedPoints = nil

	j.exposure[tr.SignalVersion] -= tr.Shares * tr.Fill
	if j.exposure[tr.SignalVersion] < 0 {
		j.exposure[tr.SignalVersion] = 0
	}
}
