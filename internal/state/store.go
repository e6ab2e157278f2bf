// Package state holds the single in-memory "full state" snapshot described
// in spec §4.C: per-ticker and market-wide maps, bounded global lists, and
// scalar summaries. Grounded on the copy-on-write guidance of spec §5 and
// the teacher's internal/persistence/interfaces.go store-interface shape.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
)

// Snapshot is one immutable top-level state value. The Store never mutates
// a Snapshot in place; every write builds a new Snapshot and swaps the
// pointer, so no reader ever observes a torn compound object (spec §4.C).
type Snapshot struct {
	Tickers []string

	Quotes      map[string]model.Quote
	Technicals  map[string]map[string]model.Technicals // ticker -> timeframe -> snapshot
	GEX         map[string][]model.GEXRow
	DarkPool    map[string][]model.DarkPoolPrint
	FlowByTicker map[string][]model.FlowItem
	ShortInterest map[string]model.ShortInterest
	FTDs        map[string][]model.FTDRecord

	OptionsFlow     []model.FlowItem      // bounded global list
	DarkPoolRecent  []model.DarkPoolPrint // bounded global list
	TopNetImpact    []string
	News            []NewsItem
	CongressTrades  []CongressTrade
	EconomicCalendar []CalendarEvent

	TradeSetups map[string]model.TradeSetup
	SignalScores map[string]model.SignalResult
	SqueezeScores map[string]model.SqueezeScore

	Alerts []model.Alert // descending by time, len <= AlertRingCapacity

	Session      model.Session
	LastUpdate   time.Time
	MarketRegime model.MarketRegime
	Sentiment    float64
	KellySizing  map[string]float64

	ScannerDiscoveries []ScannerDiscovery
}

// NewsItem is a single headline (spec §3 "news").
type NewsItem struct {
	Ticker    string
	Headline  string
	Timestamp time.Time
}

// CongressTrade is a single congressional/insider disclosure entry.
type CongressTrade struct {
	Ticker      string
	Politician  string
	Transaction string
	Amount      string
	Timestamp   time.Time
}

// CalendarEvent is an economic/FDA calendar entry.
type CalendarEvent struct {
	Name      string
	Timestamp time.Time
}

// ScannerDiscovery is one market-scanner result (spec §4.H).
type ScannerDiscovery struct {
	Ticker     string
	Confidence float64
	ScoredAt   time.Time
}

const (
	maxGlobalListLen    = 200
	maxScannerDiscover  = 20
)

// Empty returns a freshly initialized, empty Snapshot.
func Empty() Snapshot {
	return Snapshot{
		Quotes:        map[string]model.Quote{},
		Technicals:    map[string]map[string]model.Technicals{},
		GEX:           map[string][]model.GEXRow{},
		DarkPool:      map[string][]model.DarkPoolPrint{},
		FlowByTicker:  map[string][]model.FlowItem{},
		ShortInterest: map[string]model.ShortInterest{},
		FTDs:          map[string][]model.FTDRecord{},
		TradeSetups:   map[string]model.TradeSetup{},
		SignalScores:  map[string]model.SignalResult{},
		SqueezeScores: map[string]model.SqueezeScore{},
		KellySizing:   map[string]float64{},
		MarketRegime:  model.RegimeUnknown,
	}
}

// Store is the single-writer, many-reader holder of the current Snapshot,
// guarded by a sync.RWMutex: readers share the lock, and a waiting writer
// holds off new readers.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// New builds a Store seeded with an empty Snapshot (or a restored one, via Restore).
func New() *Store {
	return &Store{snap: Empty()}
}

// Snapshot returns the current snapshot. Safe to read concurrently with writers.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Restore replaces the entire snapshot, used on startup load (spec §4.K).
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Mutate applies fn to a copy of the top-level snapshot pointers and installs
// the result atomically. fn must not retain the Snapshot it's given beyond
// its own execution. This is the sole write path; the orchestrator is the
// sole caller (spec §5 "single-writer").
func (s *Store) Mutate(fn func(Snapshot) Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = fn(s.snap)
}

// SetQuote replaces a ticker's quote (spec §3 "Quotes... overwritten each fetch").
func (snap Snapshot) SetQuote(q model.Quote) Snapshot {
	next := make(map[string]model.Quote, len(snap.Quotes)+1)
	for k, v := range snap.Quotes {
		next[k] = v
	}
	next[q.Ticker] = q
	snap.Quotes = next
	return snap
}

// SetTechnicals replaces a ticker's technicals for one timeframe.
func (snap Snapshot) SetTechnicals(ticker, timeframe string, t model.Technicals) Snapshot {
	next := make(map[string]map[string]model.Technicals, len(snap.Technicals)+1)
	for k, v := range snap.Technicals {
		next[k] = v
	}
	perTF := make(map[string]model.Technicals, len(next[ticker])+1)
	for k, v := range next[ticker] {
		perTF[k] = v
	}
	perTF[timeframe] = t
	next[ticker] = perTF
	snap.Technicals = next
	return snap
}

// SetSignal replaces a ticker's signal result and, if present, its setup
// (spec §3 "Trade setups are idempotent per (ticker, direction); re-emitted
// setups merely update").
func (snap Snapshot) SetSignal(r model.SignalResult) Snapshot {
	nextScores := make(map[string]model.SignalResult, len(snap.SignalScores)+1)
	for k, v := range snap.SignalScores {
		nextScores[k] = v
	}
	nextScores[r.Ticker] = r
	snap.SignalScores = nextScores

	if r.Setup != nil {
		nextSetups := make(map[string]model.TradeSetup, len(snap.TradeSetups)+1)
		for k, v := range snap.TradeSetups {
			nextSetups[k] = v
		}
		nextSetups[r.Ticker] = *r.Setup
		snap.TradeSetups = nextSetups
	}
	return snap
}

// SetSqueezeScore replaces a ticker's squeeze composite (spec §4.F).
func (snap Snapshot) SetSqueezeScore(s model.SqueezeScore) Snapshot {
	next := make(map[string]model.SqueezeScore, len(snap.SqueezeScores)+1)
	for k, v := range snap.SqueezeScores {
		next[k] = v
	}
	next[s.Ticker] = s
	snap.SqueezeScores = next
	return snap
}

// UnshiftAlerts prepends new alerts (newest first) and trims to the ring
// capacity, keeping the sequence non-increasing by timestamp (spec §3, §8).
func (snap Snapshot) UnshiftAlerts(alerts ...model.Alert) Snapshot {
	if len(alerts) == 0 {
		return snap
	}
	combined := make([]model.Alert, 0, len(alerts)+len(snap.Alerts))
	combined = append(combined, alerts...)
	combined = append(combined, snap.Alerts...)

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Timestamp.After(combined[j].Timestamp)
	})

	if len(combined) > model.AlertRingCapacity {
		combined = combined[:model.AlertRingCapacity]
	}
	snap.Alerts = combined
	return snap
}

// AppendOptionsFlow appends and trims the global options-flow list.
func (snap Snapshot) AppendOptionsFlow(items ...model.FlowItem) Snapshot {
	snap.OptionsFlow = appendAndTrim(snap.OptionsFlow, items, maxGlobalListLen)
	return snap
}

// AppendDarkPoolRecent appends and trims the global dark-pool list.
func (snap Snapshot) AppendDarkPoolRecent(items ...model.DarkPoolPrint) Snapshot {
	snap.DarkPoolRecent = appendAndTrim(snap.DarkPoolRecent, items, maxGlobalListLen)
	return snap
}

// SetScannerDiscoveries replaces a ticker's discovery entry and trims to the
// last 20 (spec §4.H "truncating to the last 20 discoveries").
func (snap Snapshot) SetScannerDiscoveries(d ScannerDiscovery) Snapshot {
	filtered := make([]ScannerDiscovery, 0, len(snap.ScannerDiscoveries)+1)
	filtered = append(filtered, d)
	for _, existing := range snap.ScannerDiscoveries {
		if existing.Ticker != d.Ticker {
			filtered = append(filtered, existing)
		}
	}
	if len(filtered) > maxScannerDiscover {
		filtered = filtered[:maxScannerDiscover]
	}
	snap.ScannerDiscoveries = filtered
	return snap
}

// Touch sets LastUpdate to now, to be called once per completed cycle
// (spec §4.C invariant: "after every full cycle, lastUpdate = now").
func (snap Snapshot) Touch(now time.Time) Snapshot {
	snap.LastUpdate = now
	return snap
}

func appendAndTrim[T any](existing []T, add []T, cap int) []T {
	combined := make([]T, 0, len(add)+len(existing))
	combined = append(combined, add...)
	combined = append(combined, existing...)
	if len(combined) > cap {
		combined = combined[:cap]
	}
	return combined
}
