package technicals

import "github.com/sawpanic/tradesignal/internal/model"

// RSIDivergences compares the last two confirmed price swing lows and the
// last two confirmed swing highs against the RSI value at those same bar
// indices (spec §4.E):
//
//	REGULAR_BULLISH: price lower low,  RSI higher low
//	REGULAR_BEARISH: price higher high, RSI lower high
//	HIDDEN_BULLISH:  price higher low,  RSI lower low
//	HIDDEN_BEARISH:  price lower high,  RSI higher high
//
// rsiAt maps a candle index to its RSI value; indices without a computed
// RSI (the first `period` bars) are skipped.
func RSIDivergences(swings []model.SwingPoint, rsiAt map[int]float64) []model.DivergenceType {
	var lows, highs []model.SwingPoint
	for _, s := range swings {
		if _, ok := rsiAt[s.Index]; !ok {
			continue
		}
		if s.High {
			highs = append(highs, s)
		} else {
			lows = append(lows, s)
		}
	}

	var out []model.DivergenceType
	if len(lows) >= 2 {
		prev, last := lows[len(lows)-2], lows[len(lows)-1]
		priceLL := last.Price < prev.Price
		priceHL := last.Price > prev.Price
		rsiHL := rsiAt[last.Index] > rsiAt[prev.Index]
		rsiLL := rsiAt[last.Index] < rsiAt[prev.Index]

		if priceLL && rsiHL {
			out = append(out, model.RegularBullish)
		}
		if priceHL && rsiLL {
			out = append(out, model.HiddenBullish)
		}
	}

	if len(highs) >= 2 {
		prev, last := highs[len(highs)-2], highs[len(highs)-1]
		priceHH := last.Price > prev.Price
		priceLH := last.Price < prev.Price
		rsiLH := rsiAt[last.Index] < rsiAt[prev.Index]
		rsiHH := rsiAt[last.Index] > rsiAt[prev.Index]

		if priceHH && rsiLH {
			out = append(out, model.RegularBearish)
		}
		if priceLH && rsiHH {
			out = append(out, model.HiddenBearish)
		}
	}
	return out
}
