package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	CyclesTotal.WithLabelValues("WARM").Inc()
	UpstreamCallsTotal.Add(5)
	OpenTrades.Set(2)
	JournalWinRate.Set(0.6)
	ScannerDiscoveries.Set(3)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "tradesignal_cycles_total")
	require.Contains(t, body, "tradesignal_upstream_calls_total")
	require.Contains(t, body, "tradesignal_open_trades")
	require.Contains(t, body, "tradesignal_journal_win_rate")
	require.Contains(t, body, "tradesignal_scanner_discoveries")
	require.True(t, strings.Contains(body, `tier="WARM"`))
}
