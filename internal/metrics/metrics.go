// Package metrics exposes the service's Prometheus instrumentation:
// cycle counts, upstream call volume, open-trade count, journal win rate,
// and scanner discovery counts. Grounded on the teacher's internal/metrics/collector.go
// (a package-level registry plus typed counter/gauge fields, one Observe*
// method per concern), generalized from its crypto factor/gate/regime
// metrics to this service's nine-step cycle and paper-trading journal.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// CyclesTotal counts completed orchestrator cycles, labeled by tier.
	CyclesTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "tradesignal_cycles_total",
		Help: "Completed orchestrator poll cycles, labeled by tier.",
	}, []string{"tier"})

	// UpstreamCallsTotal counts upstream REST calls attempted across both
	// vendors in a cycle (the orchestrator doesn't currently split this by
	// vendor; see internal/scheduler.Governor, which budgets the same
	// combined total).
	UpstreamCallsTotal = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "tradesignal_upstream_calls_total",
		Help: "Upstream REST calls attempted across both vendors.",
	})

	// OpenTrades is the current count of open paper trades.
	OpenTrades = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "tradesignal_open_trades",
		Help: "Currently open paper trades across all signal versions.",
	})

	// JournalWinRate mirrors journal.Stats().WinRate as a gauge in [0,1].
	JournalWinRate = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "tradesignal_journal_win_rate",
		Help: "Closed-trade win rate across the journal's full history.",
	})

	// ScannerDiscoveries is the candidate count from the most recent scan.
	ScannerDiscoveries = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "tradesignal_scanner_discoveries",
		Help: "Candidate count from the most recent scanner pass.",
	})
)

// Handler serves the registry in the Prometheus text exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
