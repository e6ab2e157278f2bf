package journal

import (
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
)

// OpenRequest bundles the inputs needed to attempt opening one paper trade.
type OpenRequest struct {
	Ticker        string
	SignalVersion string
	Setup         model.TradeSetup
	FillPrice     float64
	Confidence    float64
	InSession     bool
	Now           time.Time
}

// Open runs the full admission chain, sizes the position, rescales the
// setup to the actual fill, and appends a new PENDING trade on success.
// It returns (nil, result) when the chain rejects the candidate.
func (j *Journal) Open(req OpenRequest, features *[model.FeatureVectorSize]float64) (*model.PaperTrade, AdmissionResult) {
	j.mu.RLock()
	var closedForVersion []model.PaperTrade
	for _, tr := range j.trades {
		if tr.SignalVersion == req.SignalVersion {
			closedForVersion = append(closedForVersion, tr)
		}
	}
	j.mu.RUnlock()

	desiredShares := sizeShares(j.cfg, closedForVersion, req.Confidence, req.FillPrice)

	result := j.evaluateAdmission(req.Ticker, req.Setup.Direction, req.SignalVersion, req.FillPrice, desiredShares, req.InSession, req.Now)
	if !result.Passed {
		return nil, result
	}

	stop, target1, target2 := rescaleToFill(req.Setup.Entry, req.FillPrice, req.Setup.Stop, req.Setup.Target1, req.Setup.Target2)

	trade := model.PaperTrade{
		ID:            newTradeID(),
		Ticker:        req.Ticker,
		Direction:     req.Setup.Direction,
		SignalVersion: req.SignalVersion,
		Fill:          req.FillPrice,
		Shares:        result.Shares,
		Target1:       target1,
		Target2:       target2,
		Stop:          stop,
		OpenTime:      req.Now,
		Status:        model.Pending,
		Horizon:       req.Setup.Horizon,
		Features:      features,
	}

	j.mu.Lock()
	j.trades = append(j.trades, trade)
	j.exposure[req.SignalVersion] += result.Shares * req.FillPrice
	j.mu.Unlock()

	return &trade, result
}
