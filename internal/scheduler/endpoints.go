package scheduler

import "github.com/sawpanic/tradesignal/internal/model"

// Endpoint is a single statically tiered upstream call (spec §4.B, §6).
type Endpoint struct {
	Name        string
	Path        string // template, "{T}" substituted by the ticker
	Tier        model.Tier
	PerTicker   bool
}

// PerTickerEndpoints lists every per-ticker endpoint tagged with its
// minimum tier (spec §4.B, §6 "Representative endpoint families").
var PerTickerEndpoints = []Endpoint{
	{"quote", "/stock/{T}/info", model.Hot, true},
	{"flow", "/stock/{T}/flow-recent", model.Hot, true},
	{"darkpool", "/darkpool/{T}", model.Hot, true},
	{"gex", "/stock/{T}/greek-exposure/strike", model.Hot, true},
	{"ohlc", "/stock/{T}/ohlc/{tf}", model.Hot, true},
	{"options_volume", "/stock/{T}/options-volume", model.Hot, true},

	{"iv_rank", "/stock/{T}/iv-rank", model.Warm, true},
	{"max_pain", "/stock/{T}/max-pain", model.Warm, true},
	{"oi_change", "/stock/{T}/oi-change", model.Warm, true},
	{"greeks", "/stock/{T}/greeks", model.Warm, true},

	{"short_interest", "/shorts/{T}/interest-float", model.Cold, true},
	{"stock_state", "/stock/{T}/stock-state", model.Cold, true},
	{"insider", "/insider/{T}", model.Cold, true},
	{"earnings", "/earnings/{T}", model.Cold, true},
}

// MarketWideEndpoints lists every market-wide (non-per-ticker) endpoint.
var MarketWideEndpoints = []Endpoint{
	{"market_tide", "/market/market-tide", model.Hot, false},
	{"flow_alerts", "/option-trades/flow-alerts", model.Hot, false},
	{"darkpool_recent", "/darkpool/recent", model.Hot, false},
	{"news_headlines", "/news/headlines", model.Hot, false},
	{"market_spike", "/market/spike", model.Hot, false},
	{"top_net_impact", "/market/top-net-impact", model.Hot, false},

	{"total_options_volume", "/market/total-options-volume", model.Warm, false},
	{"market_oi_change", "/market/oi-change", model.Warm, false},
	{"insider_buy_sells", "/insider/buy-sells", model.Warm, false},

	{"congressional_recent", "/congress/recent", model.Cold, false},
	{"congressional_late", "/congress/late-reports", model.Cold, false},
	{"congressional_disclosures", "/congress/disclosures", model.Cold, false},
	{"earnings_premarket", "/earnings/premarket", model.Cold, false},
	{"earnings_afterhours", "/earnings/afterhours", model.Cold, false},
	{"economic_calendar", "/calendar/economic", model.Cold, false},
	{"fda_calendar", "/calendar/fda", model.Cold, false},
}

// EndpointsForTier returns every endpoint whose tier is included by tier
// (spec §4.B "A tier is cumulative"; tested by spec §8's HOT/WARM/COLD
// subset invariant).
func EndpointsForTier(tier model.Tier, all []Endpoint) []Endpoint {
	out := make([]Endpoint, 0, len(all))
	for _, e := range all {
		if tier.Includes(e.Tier) {
			out = append(out, e)
		}
	}
	return out
}
