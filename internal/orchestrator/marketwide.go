package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sawpanic/tradesignal/internal/state"
	"github.com/sawpanic/tradesignal/internal/upstream"
)

// The market-wide endpoints in spec §6 have no typed vendor method (unlike
// the per-ticker ones in internal/upstream); these three follow the same
// untyped-wire-struct-then-map adapter idiom as flowvendor.go, scoped to
// the orchestrator since nothing else consumes them.

type newsItemJSON struct {
	Ticker      string `json:"ticker"`
	Headline    string `json:"headline"`
	TimestampMs int64  `json:"timestamp_ms"`
}

func fetchNews(ctx context.Context, v *upstream.FlowVendor) ([]state.NewsItem, error) {
	raw, err := v.RESTCall(ctx, "/news/headlines", nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var rows []newsItemJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}
	out := make([]state.NewsItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, state.NewsItem{
			Ticker:    r.Ticker,
			Headline:  r.Headline,
			Timestamp: time.UnixMilli(r.TimestampMs),
		})
	}
	return out, nil
}

func fetchTopNetImpact(ctx context.Context, v *upstream.FlowVendor) ([]string, error) {
	raw, err := v.RESTCall(ctx, "/market/top-net-impact", nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var rows []struct {
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Ticker)
	}
	return out, nil
}

type darkPoolRecentJSON struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`
	Premium   float64 `json:"premium"`
	Venue     string  `json:"venue"`
	Timestamp int64   `json:"timestamp_ms"`
}

func fetchDarkPoolRecent(ctx context.Context, v *upstream.FlowVendor) ([]darkPoolRecentJSON, error) {
	raw, err := v.RESTCall(ctx, "/darkpool/recent", nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var rows []darkPoolRecentJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}
	return rows, nil
}
