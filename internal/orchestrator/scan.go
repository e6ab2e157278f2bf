package orchestrator

import (
	"context"
	"time"

	"github.com/sawpanic/tradesignal/internal/metrics"
	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/signal"
	"github.com/sawpanic/tradesignal/internal/state"
)

// RunScan drives the market scanner (spec §4.H), a subsystem independent of
// the nine-step cycle: it harvests the current snapshot for candidates,
// then quick-scores each survivor through a reduced pipeline (quote +
// technicals only, skipping the options/dark-pool/short-interest fetches
// the full cycle makes) before merging results into the snapshot.
func (o *Orchestrator) RunScan(ctx context.Context, watchlist []string) []state.ScannerDiscovery {
	snap := o.store.Snapshot()
	discoveries := o.scan.Run(ctx, snap, watchlist, o.reducedScore, time.Now())

	o.store.Mutate(func(s state.Snapshot) state.Snapshot {
		s.ScannerDiscoveries = discoveries
		return s
	})
	metrics.ScannerDiscoveries.Set(float64(len(discoveries)))
	return discoveries
}

// reducedScore implements scanner.ReducedScore: one quote + OHLC fetch and
// a technicals-only feature pass, omitting the options/dark-pool/short
// interest legs the full cycle otherwise fetches per ticker.
func (o *Orchestrator) reducedScore(ctx context.Context, ticker string) (float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
	defer cancel()

	quote, err := o.flow.FetchQuote(callCtx, ticker)
	if err != nil || quote == nil {
		return 0, err
	}
	candles, err := o.tick.FetchOHLC(callCtx, ticker, o.cfg.Timeframe)
	if err != nil || len(candles) < model.MinCandlesRequired {
		return 0, err
	}
	tech, err := o.analyzeTechnicals(ticker, candles)
	if err != nil {
		return 0, err
	}

	mr := o.store.Snapshot().MarketRegime
	features := signal.BuildFeatures(signal.Inputs{Quote: *quote, Technicals: tech, Regime: mr})
	result := signal.Score(ticker, features, mr, nil, time.Now())
	return result.Confidence, nil
}
