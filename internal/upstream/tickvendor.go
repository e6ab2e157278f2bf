package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
)

// rejectedConditions are trade condition codes excluded by the tick rule
// (spec §4.A: average-price, odd-lot, contingent, prior-ref).
var rejectedConditions = map[int]bool{15: true, 16: true, 37: true, 52: true}

// TickSummary is the per-ticker running state the tick vendor maintains
// (spec §4.A "Polygon-style tick client additionally maintains...").
type TickSummary struct {
	Ticker string

	Volume       float64
	Notional     float64
	BuyVolume    float64
	SellVolume   float64
	LastBid      float64
	LastAsk      float64
	HighOfDay    float64
	LowOfDay     float64

	lastPrice     float64
	lastDirection model.Bias

	recentTrades []classifiedTrade // rolling 5-minute deque
	secondBars   []model.Candle    // ring, max 300
	minuteBars   []model.Candle    // ring, max 390
}

type classifiedTrade struct {
	Price     float64
	Size      float64
	Direction model.Bias
	Timestamp time.Time
}

// VWAP returns sigma(p*v)/sigma(v) accumulated so far today.
func (s *TickSummary) VWAP() float64 {
	if s.Volume == 0 {
		return 0
	}
	return s.Notional / s.Volume
}

const (
	maxSecondBars = 300
	maxMinuteBars = 390
	rollingWindow = 5 * time.Minute
)

// rawTrade is the vendor's untyped trade print.
type rawTrade struct {
	Ticker     string  `json:"sym"`
	Price      float64 `json:"p"`
	Size       float64 `json:"s"`
	TimestampMs int64   `json:"t"`
	Conditions []int   `json:"c"`
}

// TickVendor is the REST+WS vendor for tick/aggregates/indicators,
// maintaining rolling tick-summary state per ticker (spec §4.A, §6).
type TickVendor struct {
	rest *RESTClient

	mu        sync.Mutex
	summaries map[string]*TickSummary
}

// NewTickVendor builds the tick/aggregates vendor client.
func NewTickVendor(baseURL, token string, requestsPerMinute int) *TickVendor {
	return &TickVendor{
		rest:      NewRESTClient("tick-vendor", baseURL, token, requestsPerMinute),
		summaries: make(map[string]*TickSummary),
	}
}

// Summary returns (and lazily creates) the running summary for ticker.
// Callers read by copy per spec §5's "signal engine reads by copy".
func (v *TickVendor) Summary(ticker string) TickSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.summaryLocked(ticker)
	return copySummary(s)
}

func (v *TickVendor) summaryLocked(ticker string) *TickSummary {
	s, ok := v.summaries[ticker]
	if !ok {
		s = &TickSummary{Ticker: ticker}
		v.summaries[ticker] = s
	}
	return s
}

func copySummary(s *TickSummary) TickSummary {
	out := *s
	out.recentTrades = append([]classifiedTrade(nil), s.recentTrades...)
	out.secondBars = append([]model.Candle(nil), s.secondBars...)
	out.minuteBars = append([]model.Candle(nil), s.minuteBars...)
	return out
}

// OnTrade ingests one raw trade message from the lit-trades WS channel,
// classifying direction with the tick rule and rejecting excluded condition
// codes (spec §4.A).
func (v *TickVendor) OnTrade(raw json.RawMessage) {
	var t rawTrade
	if err := json.Unmarshal(raw, &t); err != nil {
		return
	}
	for _, c := range t.Conditions {
		if rejectedConditions[c] {
			return
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.summaryLocked(t.Ticker)
	dir := classifyTick(t.Price, s.lastPrice, s.LastBid, s.LastAsk, s.lastDirection)

	s.Volume += t.Size
	s.Notional += t.Price * t.Size
	switch dir {
	case model.Bullish:
		s.BuyVolume += t.Size
	case model.Bearish:
		s.SellVolume += t.Size
	}

	if s.HighOfDay == 0 || t.Price > s.HighOfDay {
		s.HighOfDay = t.Price
	}
	if s.LowOfDay == 0 || t.Price < s.LowOfDay {
		s.LowOfDay = t.Price
	}

	ts := time.UnixMilli(t.TimestampMs)
	s.recentTrades = append(s.recentTrades, classifiedTrade{Price: t.Price, Size: t.Size, Direction: dir, Timestamp: ts})
	s.recentTrades = trimOlderThan(s.recentTrades, ts.Add(-rollingWindow))

	s.lastPrice = t.Price
	s.lastDirection = dir
}

// SubscribeBuilder returns a stream.SubscribeBuilder-compatible closure
// rendering this vendor's literal auth-then-subscribe handshake (spec §4.A:
// `{"action":"auth","params":"<key>"}` followed by
// `{"action":"subscribe","params":"T.<SYM>,AM.<SYM>,A.<SYM>"}`).
func (v *TickVendor) SubscribeBuilder(token string) func(tickers []string) [][]byte {
	return func(tickers []string) [][]byte {
		auth, _ := json.Marshal(map[string]string{"action": "auth", "params": token})

		params := make([]string, 0, len(tickers)*3)
		for _, t := range tickers {
			params = append(params, "T."+t, "AM."+t, "A."+t)
		}
		sub, _ := json.Marshal(map[string]string{"action": "subscribe", "params": strings.Join(params, ",")})

		return [][]byte{auth, sub}
	}
}

// OnQuote updates the last bid/ask used by the mid-quote tie-break rule.
func (v *TickVendor) OnQuote(ticker string, bid, ask float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.summaryLocked(ticker)
	s.LastBid = bid
	s.LastAsk = ask
}

// classifyTick implements the spec §4.A tick rule: price>prev => BUY,
// price<prev => SELL, price==prev => mid-quote rule if both sides present,
// else inherit last direction.
func classifyTick(price, prev, bid, ask float64, lastDir model.Bias) model.Bias {
	switch {
	case prev == 0:
		return model.Neutral
	case price > prev:
		return model.Bullish
	case price < prev:
		return model.Bearish
	default:
		if bid > 0 && ask > 0 {
			mid := (bid + ask) / 2
			if price > mid {
				return model.Bullish
			}
			if price < mid {
				return model.Bearish
			}
		}
		if lastDir != "" {
			return lastDir
		}
		return model.Neutral
	}
}

func trimOlderThan(trades []classifiedTrade, cutoff time.Time) []classifiedTrade {
	i := 0
	for i < len(trades) && trades[i].Timestamp.Before(cutoff) {
		i++
	}
	return trades[i:]
}

// PushSecondBar appends to the second-aggregate ring, capped at 300 bars.
func (v *TickVendor) PushSecondBar(ticker string, c model.Candle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.summaryLocked(ticker)
	s.secondBars = appendRing(s.secondBars, c, maxSecondBars)
}

// PushMinuteBar appends to the minute-aggregate ring, capped at 390 bars
// (one trading session, per spec §3 IntradaySeriesCap).
func (v *TickVendor) PushMinuteBar(ticker string, c model.Candle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.summaryLocked(ticker)
	s.minuteBars = appendRing(s.minuteBars, c, maxMinuteBars)
}

func appendRing(ring []model.Candle, c model.Candle, cap int) []model.Candle {
	ring = append(ring, c)
	if len(ring) > cap {
		ring = ring[len(ring)-cap:]
	}
	return ring
}

// FetchOHLC normalizes /stock/{T}/ohlc/{tf} into a candle series. Returns
// (nil, nil) on vendor failure or invalid payload.
func (v *TickVendor) FetchOHLC(ctx context.Context, ticker, timeframe string) ([]model.Candle, error) {
	raw, err := v.rest.Get(ctx, fmt.Sprintf("/stock/%s/ohlc/%s", ticker, timeframe), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rows []struct {
		T int64   `json:"t"`
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		V float64 `json:"v"`
		VW float64 `json:"vw"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}

	candles := make([]model.Candle, 0, len(rows))
	for _, r := range rows {
		candles = append(candles, model.Candle{
			Timestamp: time.UnixMilli(r.T),
			Open:      r.O, High: r.H, Low: r.L, Close: r.C,
			Volume: r.V, VWAP: r.VW,
		})
	}
	return candles, nil
}
