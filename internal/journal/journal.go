// Package journal implements the paper-trading journal of spec §4.I: an
// ordered admission-gate chain, fill rescale, Kelly-sized position opening,
// an outcome checker, an end-of-day sweep, and a training-data export.
// Grounded on the teacher's internal/gates/entry.go (independent named gate
// checks accumulated into pass/fail reasons) and internal/gates/policy_matrix.go
// (single coordinator owning several independent policy concerns under one
// mutex).
package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sawpanic/tradesignal/internal/model"
)

// Config tunes one Journal instance (spec §4.I, §6).
type Config struct {
	Cooldown      time.Duration
	MaxPerTicker  int
	VersionBudget float64
	AccountBudget float64
}

// Journal owns the full set of paper trades and per-version exposure
// accounting. Single-writer (the orchestrator's outcome-check and admission
// steps), many-reader (broadcast shell, training export).
type Journal struct {
	cfg Config

	mu       sync.RWMutex
	trades   []model.PaperTrade
	exposure map[string]float64 // signalVersion -> notional in use
}

// New builds an empty Journal.
func New(cfg Config) *Journal {
	return &Journal{cfg: cfg, exposure: make(map[string]float64)}
}

// Trades returns a snapshot copy of every trade, open and closed.
func (j *Journal) Trades() []model.PaperTrade {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]model.PaperTrade, len(j.trades))
	copy(out, j.trades)
	return out
}

// OpenTrades returns the trades still in TradeStatus Pending.
func (j *Journal) OpenTrades() []model.PaperTrade {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []model.PaperTrade
	for _, tr := range j.trades {
		if tr.Status == model.Pending {
			out = append(out, tr)
		}
	}
	return out
}

func (j *Journal) globalExposure() float64 {
	var total float64
	for _, used := range j.exposure {
		total += used
	}
	return total
}

func newTradeID() string {
	return uuid.NewString()
}

// Stats is the aggregate summary persisted alongside the trade list (spec
// §4.K/§6 "data/trade-journal.json": `{trades:[…], stats:{…}}`).
type Stats struct {
	TotalTrades  int
	OpenTrades   int
	ClosedTrades int
	Wins         int
	Losses       int
	WinRate      float64
	TotalPnL     float64
}

// Stats computes the current aggregate over every trade the journal holds.
func (j *Journal) Stats() Stats {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var s Stats
	s.TotalTrades = len(j.trades)
	for _, tr := range j.trades {
		if !tr.Status.Closed() {
			s.OpenTrades++
			continue
		}
		s.ClosedTrades++
		switch tr.Status {
		case model.WinT1, model.WinT2, model.WinEod:
			s.Wins++
		case model.LossStop, model.LossEod:
			s.Losses++
		}
		if tr.PnLTotal != nil {
			s.TotalPnL += *tr.PnLTotal
		}
	}
	if decided := s.Wins + s.Losses; decided > 0 {
		s.WinRate = float64(s.Wins) / float64(decided)
	}
	return s
}

// Restore replaces the journal's trade list with a previously persisted
// set and rebuilds per-version exposure from the still-open trades within
// it, rather than trusting a separately persisted exposure figure that
// could have drifted — callers load this once at startup before the
// orchestrator's first cycle (spec §4.K).
func (j *Journal) Restore(trades []model.PaperTrade) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades = append([]model.PaperTrade(nil), trades...)
	j.exposure = make(map[string]float64)
	for _, tr := range j.trades {
		if !tr.Status.Closed() {
			j.exposure[tr.SignalVersion] += tr.Shares * tr.Fill
		}
	}
}
