package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
)

// FlowVendor is the REST+WS vendor providing options flow, dark-pool
// prints, and GEX (spec §4.A, §6 per-ticker/market endpoint families).
type FlowVendor struct {
	rest *RESTClient
}

// NewFlowVendor builds the flow/darkpool/GEX vendor client.
func NewFlowVendor(baseURL, token string, requestsPerMinute int) *FlowVendor {
	return &FlowVendor{rest: NewRESTClient("flow-vendor", baseURL, token, requestsPerMinute)}
}

// RESTCall performs a raw call; narrow typed methods below are preferred.
func (v *FlowVendor) RESTCall(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	return v.rest.Get(ctx, path, params)
}

// flowItemJSON is the untyped wire shape; vendors spell fields inconsistently
// (spec §9 design notes), so this adapter tries several alternatives.
type flowItemJSON struct {
	Ticker      string  `json:"ticker"`
	Type        string  `json:"type"`
	Strike      float64 `json:"strike"`
	Expiry      string  `json:"expiry"`
	Premium     float64 `json:"premium"`
	TotalPrem   float64 `json:"total_premium"`
	CostBasis   float64 `json:"cost_basis"`
	Execution   string  `json:"execution"`
	Rule        string  `json:"rule_name"`
	TimestampMs int64   `json:"timestamp_ms"`
}

func (j flowItemJSON) resolvedPremium() float64 {
	switch {
	case j.Premium != 0:
		return j.Premium
	case j.TotalPrem != 0:
		return j.TotalPrem
	default:
		return j.CostBasis
	}
}

func (j flowItemJSON) resolvedExecution() model.ExecutionClass {
	tag := j.Execution
	if tag == "" {
		tag = j.Rule
	}
	switch tag {
	case "sweep", "SWEEP":
		return model.ExecSweep
	case "block", "BLOCK":
		return model.ExecBlock
	default:
		return model.ExecLit
	}
}

// FetchFlow normalizes /stock/{T}/flow-recent into domain FlowItems.
// Returns (nil, nil) if the vendor returned nothing — callers must not
// treat nil as an error (spec §4.A, §7 class 1).
func (v *FlowVendor) FetchFlow(ctx context.Context, ticker string) ([]model.FlowItem, error) {
	raw, err := v.rest.Get(ctx, fmt.Sprintf("/stock/%s/flow-recent", ticker), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rows []flowItemJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil // invalid data (spec §7 class 3): treat as missing
	}

	items := make([]model.FlowItem, 0, len(rows))
	for _, r := range rows {
		expiry, _ := time.Parse("2006-01-02", r.Expiry)
		ct := model.Call
		if r.Type == "put" || r.Type == "PUT" {
			ct = model.Put
		}
		items = append(items, model.FlowItem{
			Ticker:    ticker,
			Contract:  ct,
			Strike:    r.Strike,
			Expiry:    expiry,
			Premium:   r.resolvedPremium(),
			Execution: r.resolvedExecution(),
			Timestamp: time.UnixMilli(r.TimestampMs),
			Direction: inferFlowDirection(ct, r.resolvedExecution()),
		})
	}
	return items, nil
}

func inferFlowDirection(ct model.ContractType, exec model.ExecutionClass) model.Bias {
	if ct == model.Call {
		return model.Bullish
	}
	return model.Bearish
}

type quoteJSON struct {
	Last    float64 `json:"last"`
	Bid     float64 `json:"bid"`
	Ask     float64 `json:"ask"`
	Open    float64 `json:"open"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	PrevClose float64 `json:"prev_close"`
	Volume  float64 `json:"volume"`
}

// FetchQuote normalizes /stock/{T}/info into a domain Quote.
func (v *FlowVendor) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	raw, err := v.rest.Get(ctx, fmt.Sprintf("/stock/%s/info", ticker), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var r quoteJSON
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, nil
	}

	q := &model.Quote{
		Ticker: ticker,
		Last:   r.Last,
		Bid:    r.Bid,
		Ask:    r.Ask,
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
	}
	if r.PrevClose > 0 {
		q.ChangePoints = r.Last - r.PrevClose
		q.ChangePercent = q.ChangePoints / r.PrevClose * 100
	}
	return q, nil
}

type darkPoolJSON struct {
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`
	Volume    float64 `json:"volume"`
	Premium   float64 `json:"premium"`
	Venue     string  `json:"venue"`
	Timestamp int64   `json:"timestamp_ms"`
}

func (j darkPoolJSON) resolvedSize() float64 {
	if j.Size != 0 {
		return j.Size
	}
	return j.Volume
}

// FetchDarkPool normalizes /darkpool/{T}. Direction is computed by the
// caller once a current quote is available (spec §3 "Direction inferred by
// price vs spot").
func (v *FlowVendor) FetchDarkPool(ctx context.Context, ticker string) ([]model.DarkPoolPrint, error) {
	raw, err := v.rest.Get(ctx, fmt.Sprintf("/darkpool/%s", ticker), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rows []darkPoolJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}

	prints := make([]model.DarkPoolPrint, 0, len(rows))
	for _, r := range rows {
		prints = append(prints, model.DarkPoolPrint{
			Ticker:    ticker,
			Price:     r.Price,
			Size:      r.resolvedSize(),
			Premium:   r.Premium,
			Venue:     r.Venue,
			Timestamp: time.UnixMilli(r.Timestamp),
		})
	}
	return prints, nil
}

type gexRowJSON struct {
	Strike  float64 `json:"strike"`
	CallGEX float64 `json:"call_gex"`
	PutGEX  float64 `json:"put_gex"`
}

// FetchGEX normalizes /stock/{T}/greek-exposure/strike.
func (v *FlowVendor) FetchGEX(ctx context.Context, ticker string) ([]model.GEXRow, error) {
	raw, err := v.rest.Get(ctx, fmt.Sprintf("/stock/%s/greek-exposure/strike", ticker), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rows []gexRowJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}

	out := make([]model.GEXRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.GEXRow{Strike: r.Strike, CallGEX: r.CallGEX, PutGEX: r.PutGEX})
	}
	return out, nil
}

type shortInterestJSON struct {
	PctFloat         float64  `json:"percent_of_float"`
	ShortVolumeRatio float64  `json:"short_volume_ratio"`
	DaysToCover      float64  `json:"days_to_cover"`
	Utilization      *float64 `json:"utilization"`
	Date             string   `json:"date"`
}

// FetchShortInterest normalizes /shorts/{T}/interest-float. SI% of float
// values over 100 are bad data and zeroed per spec §4.F and §9 Open Questions.
func (v *FlowVendor) FetchShortInterest(ctx context.Context, ticker string) (*model.ShortInterest, error) {
	raw, err := v.rest.Get(ctx, fmt.Sprintf("/shorts/%s/interest-float", ticker), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var r shortInterestJSON
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, nil
	}

	pct := r.PctFloat
	if pct < 0 || pct > 100 {
		pct = 0
	}

	date, _ := time.Parse("2006-01-02", r.Date)
	return &model.ShortInterest{
		Ticker:           ticker,
		PercentOfFloat:   pct,
		ShortVolumeRatio: r.ShortVolumeRatio,
		DaysToCover:      r.DaysToCover,
		Utilization:      r.Utilization,
		ReportingDate:    date,
	}, nil
}

type ftdJSON struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
}

// FetchFTDs normalizes a fails-to-deliver feed into domain records.
func (v *FlowVendor) FetchFTDs(ctx context.Context, ticker string) ([]model.FTDRecord, error) {
	raw, err := v.rest.Get(ctx, fmt.Sprintf("/shorts/%s/ftds", ticker), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rows []ftdJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil
	}

	out := make([]model.FTDRecord, 0, len(rows))
	for _, r := range rows {
		d, _ := time.Parse("2006-01-02", r.Date)
		out = append(out, model.FTDRecord{Ticker: ticker, Date: d, Quantity: r.Quantity})
	}
	return out, nil
}

type earningsJSON struct {
	NextEarningsDate string `json:"next_earnings_date"`
}

// FetchEarnings normalizes /earnings/{T} (spec §6, COLD tier).
func (v *FlowVendor) FetchEarnings(ctx context.Context, ticker string) (*model.EarningsInfo, error) {
	raw, err := v.rest.Get(ctx, fmt.Sprintf("/earnings/%s", ticker), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var r earningsJSON
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, nil
	}

	next, err := time.Parse("2006-01-02", r.NextEarningsDate)
	if err != nil {
		return nil, nil
	}

	days := int(time.Until(next).Hours() / 24)
	return &model.EarningsInfo{Ticker: ticker, NextEarnings: next, DaysUntil: days}, nil
}
