// Package scheduler derives the current market session and polling tier
// from wall-clock time, and governs the daily upstream call budget.
// Adapted from the teacher's cron-job scheduler (Job/JobConfig/Status
// shape) generalized from periodic jobs to session-cadence + tier
// derivation (spec §4.B).
package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/tradesignal/internal/model"
)

var newYork *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	newYork = loc
}

// sessionWindow is a clock-time range (minutes since midnight, ET) with a
// base cadence, per the table in spec §4.B.
type sessionWindow struct {
	session  model.Session
	startMin int
	endMin   int
	cadence  time.Duration
}

// windows covers the full day; PRE_MARKET..AFTER_HOURS are the ordered
// trading windows, OVERNIGHT is whatever remains.
var windows = []sessionWindow{
	{model.PreMarket, 8*60 + 30, 9*60 + 0, 10 * time.Minute},
	{model.OpenRush, 9*60 + 1, 9*60 + 20, 5 * time.Minute},
	{model.PowerOpen, 9*60 + 21, 10*60 + 0, 1 * time.Minute},
	{model.Midday, 10*60 + 1, 15*60 + 0, 10 * time.Minute},
	{model.PowerHour, 15*60 + 1, 16*60 + 15, 5 * time.Minute},
	{model.AfterHours, 16*60 + 16, 17*60 + 0, 10 * time.Minute},
}

// usHolidays are recognized market holidays (month-day) in ET. A minimal
// fixed-date set; floating holidays are intentionally not modeled here — a
// fuller holiday calendar is operational config, not core pipeline logic.
var usHolidays = map[string]bool{
	"01-01": true, // New Year's Day
	"07-04": true, // Independence Day
	"12-25": true, // Christmas
}

// CurrentSession returns the session for the given instant in America/New_York
// time. Weekends and recognized holidays degrade to OVERNIGHT (spec §4.B).
func CurrentSession(now time.Time) model.Session {
	et := now.In(newYork)

	if et.Weekday() == time.Saturday || et.Weekday() == time.Sunday {
		return model.Overnight
	}
	if usHolidays[et.Format("01-02")] {
		return model.Overnight
	}

	minutes := et.Hour()*60 + et.Minute()
	for _, w := range windows {
		if minutes >= w.startMin && minutes <= w.endMin {
			return w.session
		}
	}
	return model.Overnight
}

// Cadence returns the base polling interval for session s.
func Cadence(s model.Session) time.Duration {
	for _, w := range windows {
		if w.session == s {
			return w.cadence
		}
	}
	return 60 * time.Minute // OVERNIGHT
}

// IsTradingSession is true only on weekdays during PRE_MARKET..AFTER_HOURS
// (spec §4.B "trading-session predicate"); paper-trading gates on this.
func IsTradingSession(now time.Time) bool {
	return CurrentSession(now) != model.Overnight
}

// TierForCycle derives a cycle's tier: every coldEvery'th cycle is COLD,
// every warmEvery'th (non-COLD) cycle is WARM, otherwise HOT (spec §4.B).
func TierForCycle(cycle int, warmEvery, coldEvery int) model.Tier {
	if coldEvery > 0 && cycle%coldEvery == 0 {
		return model.Cold
	}
	if warmEvery > 0 && cycle%warmEvery == 0 {
		return model.Warm
	}
	return model.Hot
}

// Counters is the persisted scheduler state (spec §4.B, §4.K, §6).
type Counters struct {
	CycleCount     int    `json:"cycleCount"`
	DailyCallCount int    `json:"dailyCallCount"`
	LastResetDate  string `json:"lastResetDate"` // ET date, "2006-01-02"
}

// Governor owns the cycle counter and the per-ET-day call budget.
// Safe for concurrent use.
type Governor struct {
	mu           sync.Mutex
	counters     Counters
	dailyLimit   int
	safetyMargin float64
	warmEvery    int
	coldEvery    int
}

// NewGovernor builds a Governor seeded from persisted counters (or the zero
// value on first run).
func NewGovernor(dailyLimit int, safetyMargin float64, warmEvery, coldEvery int, restored Counters) *Governor {
	g := &Governor{
		dailyLimit:   dailyLimit,
		safetyMargin: safetyMargin,
		warmEvery:    warmEvery,
		coldEvery:    coldEvery,
		counters:     restored,
	}
	g.rolloverIfNeeded(time.Now())
	return g
}

// estDate formats now (ET) as the rollover key, per spec §4.B "_getESTDate()".
func estDate(now time.Time) string {
	return now.In(newYork).Format("2006-01-02")
}

// rolloverIfNeeded resets the daily counter exactly once per ET date change.
// Idempotent: calling it twice on the same date is a no-op, so a restart
// that reloads the same day's counters never double-resets (spec §4.B, §8).
func (g *Governor) rolloverIfNeeded(now time.Time) {
	today := estDate(now)
	if g.counters.LastResetDate == today {
		return
	}
	g.counters.DailyCallCount = 0
	g.counters.LastResetDate = today
}

// NextTier advances the cycle counter and returns (cycle, tier), downgrading
// WARM/COLD to HOT when the budget is exhausted (spec §4.B, §4.D step 1).
func (g *Governor) NextTier() (cycle int, tier model.Tier) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rolloverIfNeeded(time.Now())
	g.counters.CycleCount++
	cycle = g.counters.CycleCount
	tier = TierForCycle(cycle, g.warmEvery, g.coldEvery)

	if !g.isWithinBudgetLocked() && tier != model.Hot {
		log.Warn().Int("cycle", cycle).Str("tier", string(tier)).Msg("budget exhausted, downgrading tier to HOT")
		tier = model.Hot
	}
	return cycle, tier
}

// IsWithinBudget reports false once used >= limit * margin (spec §4.B).
func (g *Governor) IsWithinBudget() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isWithinBudgetLocked()
}

func (g *Governor) isWithinBudgetLocked() bool {
	if g.dailyLimit <= 0 {
		return true
	}
	threshold := float64(g.dailyLimit) * g.safetyMargin
	return float64(g.counters.DailyCallCount) < threshold
}

// RecordCalls adds n successful upstream calls to today's count (spec §8:
// "dailyCallCount after the cycle - before equals the number of successful
// ... upstream calls").
func (g *Governor) RecordCalls(n int) {
	if n <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters.DailyCallCount += n
}

// Snapshot returns the current persisted-shape counters for serialization.
func (g *Governor) Snapshot() Counters {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counters
}
