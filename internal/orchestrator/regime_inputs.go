package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/sawpanic/tradesignal/internal/model"
)

// vixTicker and spyTicker feed the regime classifier (spec §4.F). They are
// read only from the watchlist's own per-ticker fetch: when they are not on
// the watchlist nothing is fetched for them and the regime stays UNKNOWN.
const (
	vixTicker = "VIX"
	spyTicker = "SPY"
)

// snapshotInputs implements regime.Inputs by reading quotes and daily
// technicals already pulled into a cycle's working set, rather than the
// teacher's own live-polling detector — the orchestrator already owns the
// fetch, so the adapter is a pure read.
type snapshotInputs struct {
	vix      model.Quote
	spyQuote model.Quote
	spyTech  model.Technicals
	breadth  float64
}

func (s snapshotInputs) VIXLevel(ctx context.Context) (float64, error) {
	if s.vix.Last == 0 {
		return 0, fmt.Errorf("no VIX quote this cycle")
	}
	return s.vix.Last, nil
}

func (s snapshotInputs) SPYTrendPercent20d(ctx context.Context) (float64, error) {
	if s.spyTech.SMA200 == 0 || s.spyQuote.Last == 0 {
		return 0, fmt.Errorf("no SPY technicals this cycle")
	}
	// EMA20 vs last is the nearest proxy available from the fixed
	// Technicals layout; a dedicated 20d-ago close is not retained.
	if s.spyTech.EMA20 == 0 {
		return 0, fmt.Errorf("no SPY EMA20 this cycle")
	}
	return (s.spyQuote.Last - s.spyTech.EMA20) / s.spyTech.EMA20 * 100, nil
}

func (s snapshotInputs) BreadthAbove20MA(ctx context.Context) (float64, error) {
	return s.breadth, nil
}

// inputsHolder lets a single long-lived regime.Classifier (which tracks
// StableFor across cycles) read a freshly replaced snapshotInputs each
// cycle, instead of the orchestrator rebuilding the Classifier itself and
// losing the stability counter every pass.
type inputsHolder struct {
	mu  sync.Mutex
	cur snapshotInputs
}

func (h *inputsHolder) set(in snapshotInputs) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cur = in
}

func (h *inputsHolder) get() snapshotInputs {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur
}

func (h *inputsHolder) VIXLevel(ctx context.Context) (float64, error) {
	return h.get().VIXLevel(ctx)
}

func (h *inputsHolder) SPYTrendPercent20d(ctx context.Context) (float64, error) {
	return h.get().SPYTrendPercent20d(ctx)
}

func (h *inputsHolder) BreadthAbove20MA(ctx context.Context) (float64, error) {
	return h.get().BreadthAbove20MA(ctx)
}
