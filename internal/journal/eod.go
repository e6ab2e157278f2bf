package journal

import (
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
)

// CloseIntradayTrades force-closes every PENDING trade whose horizon is
// intraday at the daily EOD sweep (spec §4.I, 16:00 ET). WIN_EOD/LOSS_EOD is
// decided on price vs the trade's fill (Open Question #1 decision), matching
// how every other close computes P&L.
func (j *Journal) CloseIntradayTrades(lastPrice map[string]float64, now time.Time) []model.PaperTrade {
	j.mu.Lock()
	defer j.mu.Unlock()

	var closed []model.PaperTrade
	for i := range j.trades {
		tr := &j.trades[i]
		if tr.Status != model.Pending || !tr.Horizon.IsIntraday() {
			continue
		}
		price, ok := lastPrice[tr.Ticker]
		if !ok {
			continue
		}

		status := model.LossEod
		if pnlPoints(tr.Direction, tr.Fill, price) >= 0 {
			status = model.WinEod
		}
		j.closeTrade(tr, status, price, now)
		closed = append(closed, *tr)
	}
	return closed
}
