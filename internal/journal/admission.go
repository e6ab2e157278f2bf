package journal

import (
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
)

// GateCheck is one named pass/fail step in the admission chain, in the
// teacher's internal/gates/entry.go shape: a self-describing record of what
// was checked, not just whether it passed.
type GateCheck struct {
	Name        string
	Passed      bool
	Description string
}

// AdmissionResult is the outcome of running the full ordered admission
// chain for one candidate open (spec §4.I).
type AdmissionResult struct {
	Passed  bool
	Checks  []GateCheck
	Shares  float64 // final, possibly budget-clamped share count
	Reasons []string
}

func (r *AdmissionResult) record(name string, passed bool, desc string) {
	r.Checks = append(r.Checks, GateCheck{Name: name, Passed: passed, Description: desc})
	if !passed {
		r.Passed = false
		r.Reasons = append(r.Reasons, desc)
	}
}

// evaluateAdmission runs the five ordered gates of spec §4.I against the
// journal's current state and returns the (possibly share-clamped) result.
// desiredShares is the Kelly-sized share count before any budget clamp.
func (j *Journal) evaluateAdmission(ticker string, direction model.Direction, signalVersion string, fillPrice, desiredShares float64, inSession bool, now time.Time) AdmissionResult {
	j.mu.RLock()
	defer j.mu.RUnlock()

	result := AdmissionResult{Passed: true, Shares: desiredShares}

	result.record("trading_session", inSession,
		fmt.Sprintf("market closed at %s", now.Format(time.Kitchen)))

	var lastOpen time.Time
	var openCountForTicker int
	for _, tr := range j.trades {
		if tr.Ticker != ticker || tr.SignalVersion != signalVersion {
			continue
		}
		if tr.Direction == direction && tr.OpenTime.After(lastOpen) {
			lastOpen = tr.OpenTime
		}
		if tr.Status == model.Pending {
			openCountForTicker++
		}
	}

	cooldownOK := lastOpen.IsZero() || now.Sub(lastOpen) >= j.cfg.Cooldown
	result.record("reentry_cooldown", cooldownOK,
		fmt.Sprintf("%s %s reopened inside %s cooldown", ticker, direction, j.cfg.Cooldown))

	perTickerOK := openCountForTicker < j.cfg.MaxPerTicker
	result.record("per_ticker_limit", perTickerOK,
		fmt.Sprintf("%s already has %d open positions (limit %d)", ticker, openCountForTicker, j.cfg.MaxPerTicker))

	notional := desiredShares * fillPrice

	versionRemaining := j.cfg.VersionBudget - j.exposure[signalVersion]
	if notional > versionRemaining {
		result.Shares = math.Floor(versionRemaining / fillPrice)
		notional = result.Shares * fillPrice
	}
	versionOK := result.Shares >= 1
	result.record("version_budget", versionOK,
		fmt.Sprintf("%s version budget exhausted ($%.0f remaining)", signalVersion, versionRemaining))

	globalRemaining := j.cfg.AccountBudget - j.globalExposure()
	if notional > globalRemaining {
		result.Shares = math.Floor(globalRemaining / fillPrice)
	}
	globalOK := result.Shares >= 1
	result.record("account_budget", globalOK,
		fmt.Sprintf("account budget exhausted ($%.0f remaining)", globalRemaining))

	if result.Shares < 1 {
		result.Passed = false
	}
	return result
}
