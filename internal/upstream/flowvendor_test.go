package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFlowVendor_FetchQuote_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{
			"last": 190.5, "bid": 190.4, "ask": 190.6, "open": 188, "high": 191, "low": 187.5,
			"prev_close": 188, "volume": 1_000_000,
		})
	}))
	defer srv.Close()

	v := NewFlowVendor(srv.URL, "token", 600)
	q, err := v.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, q)
	require.Equal(t, 190.5, q.Last)
	require.Equal(t, "AAPL", q.Ticker)
}

func TestFlowVendor_FetchShortInterest_ZeroesOutOfRangePercent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"percent_of_float": 150.0, "days_to_cover": 1.2, "date": "2026-01-01"})
	}))
	defer srv.Close()

	v := NewFlowVendor(srv.URL, "token", 600)
	si, err := v.FetchShortInterest(context.Background(), "GME")
	require.NoError(t, err)
	require.NotNil(t, si)
	require.Equal(t, 0.0, si.PercentOfFloat)
}

func TestFlowVendor_FetchEarnings_ComputesDaysUntil(t *testing.T) {
	next := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"next_earnings_date": next})
	}))
	defer srv.Close()

	v := NewFlowVendor(srv.URL, "token", 600)
	e, err := v.FetchEarnings(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, e)
	require.InDelta(t, 10, e.DaysUntil, 1)
}

func TestFlowVendor_FetchEarnings_InvalidDateReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"next_earnings_date": "not-a-date"})
	}))
	defer srv.Close()

	v := NewFlowVendor(srv.URL, "token", 600)
	e, err := v.FetchEarnings(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Nil(t, e)
}
