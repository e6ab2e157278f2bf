package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sawpanic/tradesignal/internal/alerts"
	"github.com/sawpanic/tradesignal/internal/journal"
	"github.com/sawpanic/tradesignal/internal/scanner"
	"github.com/sawpanic/tradesignal/internal/scheduler"
	"github.com/sawpanic/tradesignal/internal/state"
	"github.com/sawpanic/tradesignal/internal/upstream"
)

// fakeVendorServer serves just enough of the upstream.FlowVendor/TickVendor
// endpoint surface for one ticker ("AAPL") to exercise a full RunCycle.
func fakeVendorServer(t *testing.T) *httptest.Server {
	t.Helper()

	candles := make([]map[string]float64, 0, 40)
	base := 150.0
	for i := 0; i < 40; i++ {
		base += 0.25
		candles = append(candles, map[string]float64{
			"t": float64(time.Now().Add(-time.Duration(40-i) * 24 * time.Hour).UnixMilli()),
			"o": base - 0.5, "h": base + 0.5, "l": base - 1, "c": base, "v": 1_000_000, "vw": base,
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/stock/AAPL/info", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{
			"last": 190.0, "bid": 189.9, "ask": 190.1, "open": 188, "high": 191, "low": 187.5,
			"prev_close": 188, "volume": 2_000_000,
		})
	})
	mux.HandleFunc("/stock/AAPL/ohlc/D", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candles)
	})
	mux.HandleFunc("/stock/AAPL/flow-recent", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	})
	mux.HandleFunc("/darkpool/AAPL", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	})
	mux.HandleFunc("/stock/AAPL/greek-exposure/strike", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	})
	mux.HandleFunc("/shorts/AAPL/interest-float", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"percent_of_float": 5.0, "days_to_cover": 1.2, "date": "2026-01-01"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "recent") || strings.Contains(r.URL.Path, "headlines") || strings.Contains(r.URL.Path, "top-net-impact") {
			json.NewEncoder(w).Encode([]map[string]any{})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	return httptest.NewServer(mux)
}

func testOrchestrator(t *testing.T) (*Orchestrator, *state.Store) {
	t.Helper()
	srv := fakeVendorServer(t)
	t.Cleanup(srv.Close)

	flow := upstream.NewFlowVendor(srv.URL, "token", 600)
	tick := upstream.NewTickVendor(srv.URL, "token", 600)
	store := state.New()
	gov := scheduler.NewGovernor(15000, 0.9, 5, 15, scheduler.Counters{})
	scan := scanner.New(scanner.Config{MinConfidence: 40, MaxCandidates: 5, Cooldown: 30 * time.Minute})
	j := journal.New(journal.Config{Cooldown: 2 * time.Hour, MaxPerTicker: 3, VersionBudget: 25_000, AccountBudget: 100_000})
	alertEngine := alerts.NewEngine()

	cfg := Config{Watchlist: []string{"AAPL"}, ActiveSignalVersion: "v1.0", Timeframe: "D"}
	return New(cfg, flow, tick, store, gov, scan, j, alertEngine, nil, nil), store
}

func TestRunCycle_PopulatesQuoteAndTechnicals(t *testing.T) {
	o, store := testOrchestrator(t)

	err := o.RunCycle(context.Background())
	require.NoError(t, err)

	snap := store.Snapshot()
	require.Contains(t, snap.Quotes, "AAPL")
	require.Equal(t, 190.0, snap.Quotes["AAPL"].Last)

	perTF, ok := snap.Technicals["AAPL"]
	require.True(t, ok, "technicals should be computed once 40 daily candles are available")
	require.Contains(t, perTF, "D")
}

func TestRunCycle_WritesSignalScoreForTicker(t *testing.T) {
	o, store := testOrchestrator(t)
	require.NoError(t, o.RunCycle(context.Background()))

	snap := store.Snapshot()
	_, ok := snap.SignalScores["AAPL"]
	require.True(t, ok)
}

func TestRunCycle_NeverReturnsErrorOnUpstreamFailure(t *testing.T) {
	o, store := testOrchestrator(t)
	o.cfg.Watchlist = append(o.cfg.Watchlist, "ZZZZ") // endpoint not stubbed, falls through 404 -> (nil, nil)

	err := o.RunCycle(context.Background())
	require.NoError(t, err)
	require.NotContains(t, store.Snapshot().Quotes, "ZZZZ")
}

func TestIsEODWindow_OutsideWindowIsFalse(t *testing.T) {
	loc := newYorkLocation()
	morning := time.Date(2026, 3, 2, 10, 0, 0, 0, loc)
	require.False(t, isEODWindow(morning))
}

func TestIsEODWindow_InsideWindowIsTrue(t *testing.T) {
	loc := newYorkLocation()
	closeTime := time.Date(2026, 3, 2, 16, 2, 0, 0, loc)
	require.True(t, isEODWindow(closeTime))
}

func TestGammaProximity_ClampsToUnitRange(t *testing.T) {
	require.Equal(t, 1.0, gammaProximity(5_000_000))
	require.Equal(t, -1.0, gammaProximity(-5_000_000))
	require.InDelta(t, 0.5, gammaProximity(500_000), 1e-9)
}
