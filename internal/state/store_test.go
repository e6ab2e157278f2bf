package state

import (
	"strconv"
	"testing"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

func TestUnshiftAlerts_BoundedAndDescending(t *testing.T) {
	snap := Empty()
	base := time.Now()

	for i := 0; i < model.AlertRingCapacity+10; i++ {
		snap = snap.UnshiftAlerts(model.Alert{
			ID:        "a",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}

	require.LessOrEqual(t, len(snap.Alerts), model.AlertRingCapacity)
	for i := 1; i < len(snap.Alerts); i++ {
		require.False(t, snap.Alerts[i].Timestamp.After(snap.Alerts[i-1].Timestamp),
			"alerts ring must be non-increasing by timestamp")
	}
}

func TestSetQuote_OverwritesInPlaceSemantically(t *testing.T) {
	snap := Empty()
	snap = snap.SetQuote(model.Quote{Ticker: "AAPL", Last: 100})
	snap = snap.SetQuote(model.Quote{Ticker: "AAPL", Last: 105})

	require.Equal(t, 105.0, snap.Quotes["AAPL"].Last)
}

func TestStore_MutateIsAtomicSwap(t *testing.T) {
	s := New()
	s.Mutate(func(snap Snapshot) Snapshot {
		return snap.SetQuote(model.Quote{Ticker: "MSFT", Last: 300})
	})

	got := s.Snapshot()
	require.Equal(t, 300.0, got.Quotes["MSFT"].Last)
}

func TestSetScannerDiscoveries_ReplacesAndCapsAt20(t *testing.T) {
	snap := Empty()
	for i := 0; i < 25; i++ {
		snap = snap.SetScannerDiscoveries(ScannerDiscovery{Ticker: strconv.Itoa(i), Confidence: 50})
	}
	require.LessOrEqual(t, len(snap.ScannerDiscoveries), 20)
}
