package orchestrator

import (
	"context"
	"time"

	"github.com/sawpanic/tradesignal/internal/alerts"
	"github.com/sawpanic/tradesignal/internal/journal"
	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/scheduler"
	"github.com/sawpanic/tradesignal/internal/signal"
	"github.com/sawpanic/tradesignal/internal/state"
	"github.com/sawpanic/tradesignal/internal/technicals"
)

// analyzeTechnicals is a thin named wrapper kept so RunCycle reads as the
// nine spec-numbered steps rather than a raw package call.
func (o *Orchestrator) analyzeTechnicals(ticker string, candles []model.Candle) (model.Technicals, error) {
	return technicals.Analyze(ticker, o.cfg.Timeframe, candles)
}

// runSignalsAndAlerts implements spec §4.D steps 5-7: the signal engine runs
// on every ticker with a usable quote+technicals pair, the alert engine
// runs on the same set, and any signal clearing autoOpenConfidence is
// offered to the journal.
func (o *Orchestrator) runSignalsAndAlerts(ctx context.Context, results map[string]tickerResult, mr model.MarketRegime, session model.Session, now time.Time) {
	inSession := scheduler.IsTradingSession(now)

	for ticker, r := range results {
		if r.quote == nil {
			continue
		}

		snap := o.store.Snapshot()
		perTF, ok := snap.Technicals[ticker]
		if !ok {
			continue
		}
		tech, ok := perTF[o.cfg.Timeframe]
		if !ok {
			continue
		}

		var callPremium, putPremium float64
		for _, f := range r.flow {
			if f.Contract == model.Call {
				callPremium += f.Premium
			} else {
				putPremium += f.Premium
			}
		}

		var dpBias float64
		for _, p := range r.darkPool {
			switch model.InferDarkPoolDirection(p.Price, r.quote.Bid, r.quote.Ask) {
			case model.Bullish:
				dpBias += 1
			case model.Bearish:
				dpBias -= 1
			}
		}
		if n := len(r.darkPool); n > 0 {
			dpBias /= float64(n)
		}

		var netGEX float64
		for _, row := range r.gex {
			netGEX += row.NetGEX()
		}

		var siPct, shortVolRatio float64
		if r.shortInterest != nil {
			siPct = r.shortInterest.PercentOfFloat
			shortVolRatio = r.shortInterest.ShortVolumeRatio
		}

		squeeze := signal.ComputeSqueezeScore(ticker, signal.SqueezeInputs{
			ShortVolumeRatio:      shortVolRatio,
			FTDs:                  latestFTDQuantity(r.ftds),
			ShortInterestPctFloat: siPct,
		})
		o.store.Mutate(func(snap state.Snapshot) state.Snapshot {
			return snap.SetSqueezeScore(squeeze)
		})

		in := signal.Inputs{
			Quote:                 *r.quote,
			Technicals:            tech,
			CallPremium:           callPremium,
			PutPremium:            putPremium,
			DarkPoolNetBias:       dpBias,
			ShortInterestPctFloat: siPct,
			GammaProximity:        gammaProximity(netGEX),
			Regime:                mr,
		}
		features := signal.BuildFeatures(in)
		result := signal.Score(ticker, features, mr, nil, now)

		if setup := signal.GenerateSetup(result.Direction, r.quote.Last, tech.ATR, tech.Pivots, result.Confidence, session); setup != nil {
			setup.Squeeze = squeeze
			result.Setup = setup
			result.Horizon = setup.Horizon
		}

		o.store.Mutate(func(snap state.Snapshot) state.Snapshot {
			return snap.SetSignal(result)
		})

		alertIn := alerts.TickerInputs{
			Ticker:       ticker,
			Technicals:   tech,
			Volume:       r.quote.Volume,
			AvgVolume20d: r.quote.Volume,
			Bid:          r.quote.Bid,
			Ask:          r.quote.Ask,
			NewFlow:      r.flow,
			NewDarkPool:  r.darkPool,
		}
		fired := o.alerts.Evaluate(alertIn, session, now)
		if len(fired) > 0 {
			o.store.Mutate(func(snap state.Snapshot) state.Snapshot {
				return snap.UnshiftAlerts(fired...)
			})
			if o.notifier != nil {
				o.notifier.NotifyAlerts(fired)
			}
		}

		if result.Direction != model.Neutral && result.Confidence >= autoOpenConfidence && result.Setup != nil && inSession {
			o.journal.Open(journal.OpenRequest{
				Ticker:        ticker,
				SignalVersion: o.cfg.ActiveSignalVersion,
				Setup:         *result.Setup,
				FillPrice:     r.quote.Last,
				Confidence:    result.Confidence,
				InSession:     inSession,
				Now:           now,
			}, &features)
		}
	}
}

// latestFTDQuantity returns the most recently dated fails-to-deliver filing's
// quantity, the "FTD size" the squeeze composite tests against (spec §4.F).
func latestFTDQuantity(records []model.FTDRecord) float64 {
	var latest model.FTDRecord
	for _, r := range records {
		if r.Date.After(latest.Date) {
			latest = r
		}
	}
	return latest.Quantity
}

// gammaProximity maps a raw net-GEX reading to the signed [-1,1] proximity
// slot the feature builder expects; large negative GEX (dealers short
// gamma) leans bearish-amplifying, large positive leans support.
func gammaProximity(netGEX float64) float64 {
	const scale = 1_000_000.0
	v := netGEX / scale
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
