// Package backtest replays a historical OHLC series through the same
// technicals/signal/journal pipeline production uses, producing a
// window-by-window report plus a final P&L summary. Grounded on the
// teacher's internal/backtest/smoke90 windowed-replay shape (runner.go,
// types.go, writer.go), generalized from smoke90's crypto-factor/guard
// pipeline to this package's technicals+signal+journal pipeline — there is
// no guard-pass-rate or throttle-event concept here, so those fields are
// dropped rather than carried over unused.
package backtest

import "time"

// Config tunes one Run (spec's supplemented "offline replay" feature: the
// distilled spec.md has no backtest operation, but original_source/ and the
// teacher both treat offline replay as a first-class validation tool).
type Config struct {
	SignalVersion string
	HoldPeriod    time.Duration // carried on the config only: Run does not read it, and trades still open when the replay ends are not force-closed
	JournalCfg    JournalConfig
}

// JournalConfig mirrors journal.Config so callers don't need to import
// internal/journal just to build one.
type JournalConfig struct {
	Cooldown      time.Duration
	MaxPerTicker  int
	VersionBudget float64
	AccountBudget float64
}

// Result is the complete outcome of one replay run.
type Result struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Windows   []WindowResult `json:"windows"`
	Metrics   MetricsSummary `json:"metrics"`
}

// WindowResult captures one bar's worth of candidates across every ticker
// in the replay.
type WindowResult struct {
	Timestamp  time.Time          `json:"timestamp"`
	Candidates []CandidateResult  `json:"candidates"`
}

// CandidateResult is one ticker's signal evaluation at one bar.
type CandidateResult struct {
	Ticker     string  `json:"ticker"`
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
	Opened     bool    `json:"opened"`
	RejectReason string `json:"rejectReason,omitempty"`
}

// MetricsSummary aggregates the whole run, mirroring the journal's own
// Stats shape so a replay report and a live journal snapshot read the same
// way.
type MetricsSummary struct {
	TotalWindows     int     `json:"totalWindows"`
	TotalCandidates  int     `json:"totalCandidates"`
	OpenedTrades     int     `json:"openedTrades"`
	ClosedTrades     int     `json:"closedTrades"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinRate          float64 `json:"winRate"`
	TotalPnL         float64 `json:"totalPnL"`
}
