package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/persistence"
	"github.com/sawpanic/tradesignal/internal/state"
)

// tickerResult bundles every per-ticker reading fetched in one cycle.
type tickerResult struct {
	quote         *model.Quote
	candles       []model.Candle
	gex           []model.GEXRow
	darkPool      []model.DarkPoolPrint
	flow          []model.FlowItem
	shortInterest *model.ShortInterest
	ftds          []model.FTDRecord
}

// fetchTickers dispatches the tier-appropriate per-ticker endpoints across
// a bounded worker pool (spec §4.D step 3; max maxInflight in flight, each
// call capped at perCallTimeout). Returns the successfully-fetched results
// keyed by ticker and the count of calls actually attempted, for the daily
// budget governor.
func (o *Orchestrator) fetchTickers(ctx context.Context, tickers []string, tier model.Tier) (map[string]tickerResult, int) {
	sem := make(chan struct{}, maxInflight)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var callCount int

	out := make(map[string]tickerResult, len(tickers))

	for _, ticker := range tickers {
		ticker := ticker
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			r, calls := o.fetchOneTicker(ctx, ticker, tier)
			mu.Lock()
			out[ticker] = r
			callCount += calls
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out, callCount
}

func (o *Orchestrator) fetchOneTicker(ctx context.Context, ticker string, tier model.Tier) (tickerResult, int) {
	var r tickerResult
	calls := 0

	callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
	defer cancel()

	if q, err := o.flow.FetchQuote(callCtx, ticker); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Str("endpoint", "quote").Msg("upstream call failed")
	} else {
		calls++
		r.quote = q
	}

	if candles, err := o.tick.FetchOHLC(callCtx, ticker, o.cfg.Timeframe); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Str("endpoint", "ohlc").Msg("upstream call failed")
	} else {
		calls++
		r.candles = candles
	}

	if flow, err := o.flow.FetchFlow(callCtx, ticker); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Str("endpoint", "flow").Msg("upstream call failed")
	} else {
		calls++
		r.flow = flow
	}

	if dp, err := o.flow.FetchDarkPool(callCtx, ticker); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Str("endpoint", "darkpool").Msg("upstream call failed")
	} else {
		calls++
		r.darkPool = dp
	}

	if gex, err := o.flow.FetchGEX(callCtx, ticker); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Str("endpoint", "gex").Msg("upstream call failed")
	} else {
		calls++
		r.gex = gex
	}

	if tier.Includes(model.Cold) {
		if si, err := o.flow.FetchShortInterest(callCtx, ticker); err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Str("endpoint", "short_interest").Msg("upstream call failed")
		} else {
			calls++
			r.shortInterest = si
		}

		if ftds, err := o.flow.FetchFTDs(callCtx, ticker); err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Str("endpoint", "ftds").Msg("upstream call failed")
		} else {
			calls++
			r.ftds = ftds
		}

		if o.earnings != nil {
			if _, fresh := o.earnings.Get(ticker, time.Now()); !fresh {
				if e, err := o.flow.FetchEarnings(callCtx, ticker); err != nil {
					log.Warn().Err(err).Str("ticker", ticker).Str("endpoint", "earnings").Msg("upstream call failed")
				} else if e != nil {
					calls++
					if putErr := o.earnings.Put(ticker, persistence.EarningsEntry{
						NextEarnings: e.NextEarnings, DaysUntil: e.DaysUntil, FetchedAt: time.Now(),
					}); putErr != nil {
						log.Warn().Err(putErr).Str("ticker", ticker).Msg("earnings cache write failed")
					}
				}
			}
		}
	}

	return r, calls
}

// marketWideResult bundles the market-wide readings for one cycle.
type marketWideResult struct {
	news           []state.NewsItem
	topNetImpact   []string
	darkPoolRecent []model.DarkPoolPrint
}

func (o *Orchestrator) fetchMarketWide(ctx context.Context) (marketWideResult, int) {
	var out marketWideResult
	calls := 0

	callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
	defer cancel()

	if news, err := fetchNews(callCtx, o.flow); err != nil {
		log.Warn().Err(err).Str("endpoint", "news_headlines").Msg("upstream call failed")
	} else {
		calls++
		out.news = news
	}

	if tickers, err := fetchTopNetImpact(callCtx, o.flow); err != nil {
		log.Warn().Err(err).Str("endpoint", "top_net_impact").Msg("upstream call failed")
	} else {
		calls++
		out.topNetImpact = tickers
	}

	if rows, err := fetchDarkPoolRecent(callCtx, o.flow); err != nil {
		log.Warn().Err(err).Str("endpoint", "darkpool_recent").Msg("upstream call failed")
	} else {
		calls++
		for _, row := range rows {
			out.darkPoolRecent = append(out.darkPoolRecent, model.DarkPoolPrint{
				Ticker: row.Ticker, Price: row.Price, Size: row.Size,
				Premium: row.Premium, Venue: row.Venue,
				Timestamp: time.UnixMilli(row.Timestamp),
			})
		}
	}

	return out, calls
}
