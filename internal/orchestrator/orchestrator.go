// Package orchestrator drives the nine-step polling cycle of spec §4.D,
// wiring together the scheduler, both upstream vendors, the state store,
// technicals, regime, signal, alerts, scanner, and journal packages.
// Grounded on the teacher's internal/scheduler job-dispatch loop and the
// fan-out-then-collate shape of internal/infrastructure/async/concurrency.go,
// generalized away from that file's adaptive worker-pool tuning: a fixed
// inflight cap is all spec §4.D calls for, since rate limiting and circuit
// breaking already live in each upstream.RESTClient.
package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/tradesignal/internal/alerts"
	"github.com/sawpanic/tradesignal/internal/journal"
	"github.com/sawpanic/tradesignal/internal/metrics"
	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/persistence"
	"github.com/sawpanic/tradesignal/internal/regime"
	"github.com/sawpanic/tradesignal/internal/scanner"
	"github.com/sawpanic/tradesignal/internal/scheduler"
	"github.com/sawpanic/tradesignal/internal/state"
	"github.com/sawpanic/tradesignal/internal/upstream"
)

// autoOpenConfidence is the confidence floor above which a fresh directional
// signal is offered to the journal for paper entry. Spec §4.D lists signal
// and alert evaluation as explicit steps but is silent on whether entries
// are automatic; DESIGN.md records the decision to auto-open at this bar.
// The backtest replay uses the same floor; the scanner's surfacing
// threshold is the separate Scanner.MinConfidence setting (default 40).
const autoOpenConfidence = 70.0

// maxInflight bounds concurrent upstream calls within one cycle (spec §4.D).
const maxInflight = 20

// perCallTimeout bounds a single upstream call (spec §4.D).
const perCallTimeout = 10 * time.Second

// Notifier pushes cycle output to subscribers (spec §4.D step 9 and §4.J),
// implemented by internal/broadcast.Hub.
type Notifier interface {
	Notify(snap state.Snapshot)
	NotifyAlerts(fired []model.Alert)
}

// Config holds the orchestrator's run-time tunables (spec §6).
type Config struct {
	Watchlist           []string
	ActiveSignalVersion string
	Timeframe           string // OHLC timeframe requested per cycle, e.g. "D"
}

// Orchestrator owns every dependency RunCycle touches. Construction wires
// concrete vendor/store/engine instances; RunCycle is the sole entry point
// and the sole writer of Store (spec §5 "single-writer").
type Orchestrator struct {
	cfg Config

	flow *upstream.FlowVendor
	tick *upstream.TickVendor

	store    *state.Store
	governor *scheduler.Governor

	classifier   *regime.Classifier
	regimeInputs *inputsHolder

	scan    *scanner.Scanner
	journal *journal.Journal
	alerts  *alerts.Engine

	earnings *persistence.EarningsCache

	notifier Notifier
}

// New builds an Orchestrator with its own regime.Classifier, fed by an
// internal snapshotInputs holder RunCycle replaces every pass — keeping one
// Classifier alive for the lifetime of the orchestrator preserves its
// StableFor counter across cycles (spec §4.F). earnings may be nil, in
// which case the COLD-tier earnings refresh in fetchOneTicker is skipped.
func New(cfg Config, flow *upstream.FlowVendor, tick *upstream.TickVendor, store *state.Store, governor *scheduler.Governor, scan *scanner.Scanner, j *journal.Journal, alertEngine *alerts.Engine, earnings *persistence.EarningsCache, notifier Notifier) *Orchestrator {
	holder := &inputsHolder{}
	return &Orchestrator{
		cfg: cfg, flow: flow, tick: tick, store: store, governor: governor,
		classifier: regime.NewClassifier(holder), regimeInputs: holder,
		scan: scan, journal: j, alerts: alertEngine, earnings: earnings, notifier: notifier,
	}
}

// RunCycle executes one full poll-process-persist pass (spec §4.D's nine
// steps). It never panics on a single ticker's failure; every upstream
// error is logged and the ticker is skipped for that step (spec §7 class 1,
// 3, 4).
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	now := time.Now()
	session := scheduler.CurrentSession(now)
	cadence := scheduler.Cadence(session)
	cycleCtx, cancel := context.WithTimeout(ctx, time.Duration(float64(cadence)*0.8))
	defer cancel()

	cycle, tier := o.governor.NextTier()
	log.Info().Int("cycle", cycle).Str("tier", string(tier)).Str("session", string(session)).Msg("cycle start")

	// Step 1/2: tier + call list are implicit in which fetch helpers run
	// below; COLD-only calls (short interest) gate on tier.Includes(COLD).
	calls := 0

	// Step 2/3: market-wide fetch, dispatched before per-ticker so store
	// writes can honor the market-wide-before-per-ticker ordering (spec §5).
	mwResult, mwCalls := o.fetchMarketWide(cycleCtx)
	calls += mwCalls
	o.store.Mutate(func(snap state.Snapshot) state.Snapshot {
		if mwResult.news != nil {
			snap.News = append(mwResult.news, snap.News...)
			if len(snap.News) > 200 {
				snap.News = snap.News[:200]
			}
		}
		if mwResult.topNetImpact != nil {
			snap.TopNetImpact = mwResult.topNetImpact
		}
		if mwResult.darkPoolRecent != nil {
			snap.DarkPoolRecent = append(mwResult.darkPoolRecent, snap.DarkPoolRecent...)
			if len(snap.DarkPoolRecent) > 200 {
				snap.DarkPoolRecent = snap.DarkPoolRecent[:200]
			}
		}
		return snap
	})

	// Step 3: bounded per-ticker fan-out.
	results, tickerCalls := o.fetchTickers(cycleCtx, o.cfg.Watchlist, tier)
	calls += tickerCalls
	o.governor.RecordCalls(calls)

	var spyQuote, vixQuote model.Quote
	var spyTech model.Technicals
	up, down := 0, 0

	for _, ticker := range o.cfg.Watchlist {
		r, ok := results[ticker]
		if !ok {
			continue
		}

		// Step 4: technicals on new OHLC.
		var tech model.Technicals
		haveTech := false
		if len(r.candles) >= model.MinCandlesRequired {
			t, err := o.analyzeTechnicals(ticker, r.candles)
			if err != nil {
				log.Warn().Err(err).Str("ticker", ticker).Msg("technicals analysis skipped")
			} else {
				tech = t
				haveTech = true
			}
		}

		o.store.Mutate(func(snap state.Snapshot) state.Snapshot {
			if r.quote != nil {
				snap = snap.SetQuote(*r.quote)
			}
			if haveTech {
				snap = snap.SetTechnicals(ticker, o.cfg.Timeframe, tech)
			}
			if r.gex != nil {
				next := make(map[string][]model.GEXRow, len(snap.GEX)+1)
				for k, v := range snap.GEX {
					next[k] = v
				}
				next[ticker] = r.gex
				snap.GEX = next
			}
			if r.darkPool != nil {
				next := make(map[string][]model.DarkPoolPrint, len(snap.DarkPool)+1)
				for k, v := range snap.DarkPool {
					next[k] = v
				}
				next[ticker] = r.darkPool
				snap.DarkPoolRecent = append(append([]model.DarkPoolPrint(nil), r.darkPool...), snap.DarkPoolRecent...)
				if len(snap.DarkPoolRecent) > 200 {
					snap.DarkPoolRecent = snap.DarkPoolRecent[:200]
				}
				snap.DarkPool = next
			}
			if r.flow != nil {
				next := make(map[string][]model.FlowItem, len(snap.FlowByTicker)+1)
				for k, v := range snap.FlowByTicker {
					next[k] = v
				}
				next[ticker] = r.flow
				snap.OptionsFlow = append(append([]model.FlowItem(nil), r.flow...), snap.OptionsFlow...)
				if len(snap.OptionsFlow) > 200 {
					snap.OptionsFlow = snap.OptionsFlow[:200]
				}
				snap.FlowByTicker = next
			}
			if r.shortInterest != nil {
				next := make(map[string]model.ShortInterest, len(snap.ShortInterest)+1)
				for k, v := range snap.ShortInterest {
					next[k] = v
				}
				next[ticker] = *r.shortInterest
				snap.ShortInterest = next
			}
			if r.ftds != nil {
				next := make(map[string][]model.FTDRecord, len(snap.FTDs)+1)
				for k, v := range snap.FTDs {
					next[k] = v
				}
				next[ticker] = r.ftds
				snap.FTDs = next
			}
			return snap
		})

		if ticker == spyTicker && r.quote != nil {
			spyQuote = *r.quote
			if haveTech {
				spyTech = tech
			}
		}
		if ticker == vixTicker && r.quote != nil {
			vixQuote = *r.quote
		}
		if r.quote != nil {
			if r.quote.ChangePercent >= 0 {
				up++
			} else {
				down++
			}
		}
	}

	breadth := 0.5
	if up+down > 0 {
		breadth = float64(up) / float64(up+down)
	}

	// Step 5 (preface): regime classification feeds the signal engine's
	// weight table; it runs once per cycle, not per ticker.
	o.regimeInputs.set(snapshotInputs{vix: vixQuote, spyQuote: spyQuote, spyTech: spyTech, breadth: breadth})
	regimeResult, err := o.classifier.Classify(cycleCtx)
	mr := model.RegimeUnknown
	if err != nil {
		log.Warn().Err(err).Msg("regime classification skipped")
	} else {
		mr = regimeResult.Regime
	}
	o.store.Mutate(func(snap state.Snapshot) state.Snapshot {
		snap.MarketRegime = mr
		snap.Session = session
		snap.LastUpdate = now
		return snap
	})

	// Step 5/6/7/8: signal, alert, paper-trade admission, outcome check.
	o.runSignalsAndAlerts(cycleCtx, results, mr, session, now)

	lastPrices := make(map[string]float64, len(results))
	for ticker, r := range results {
		if r.quote != nil {
			lastPrices[ticker] = r.quote.Last
		}
	}
	o.journal.CheckOutcomes(lastPrices, now)

	// Step 8b: EOD force-close sweep, 16:00-16:05 ET only.
	if isEODWindow(now) {
		o.journal.CloseIntradayTrades(lastPrices, now)
	}

	// Step 9: snapshot broadcast.
	if o.notifier != nil {
		o.notifier.Notify(o.store.Snapshot())
	}

	metrics.CyclesTotal.WithLabelValues(string(tier)).Inc()
	metrics.UpstreamCallsTotal.Add(float64(calls))
	stats := o.journal.Stats()
	metrics.OpenTrades.Set(float64(stats.OpenTrades))
	metrics.JournalWinRate.Set(stats.WinRate)

	return nil
}

// isEODWindow reports whether now falls in the 16:00-16:05 ET force-close
// window (spec §4.D step 8).
func isEODWindow(now time.Time) bool {
	et := now.In(newYorkLocation())
	minutes := et.Hour()*60 + et.Minute()
	return minutes >= 16*60 && minutes <= 16*60+5
}

func newYorkLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}
