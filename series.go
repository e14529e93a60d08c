package carteira

import "github.com/etnz/carteira/date"

// MarketValueSeries sums, for every date present in any price history, the
// value of the holdings at that date's price.
//
// Each date only adds the tickers that have a price on that exact date.
// The result is sorted by date.
func MarketValueSeries(holdings []Position, histories map[string][]Point) []Point {
	var total date.History[float64]
	for _, h := range holdings {
		for _, p := range histories[h.Ticker] {
			v, _ := total.Get(p.Date)
			total.Append(p.Date, v+p.Value*h.Quantity)
		}
	}
	return points(&total)
}

// AlignInvested resamples the invested capital step function on the dates of
// the market series, so both can be drawn on the same chart.
//
// Each market date gets the latest invested value dated on or before it, or 0
// when the first investment is later. An empty market series gives an empty
// result.
func AlignInvested(market, invested []Point) []Point {
	if len(market) == 0 {
		return nil
	}
	var steps date.History[float64]
	for _, p := range invested {
		steps.Append(p.Date, p.Value)
	}
	aligned := make([]Point, 0, len(market))
	for _, p := range market {
		v, _ := steps.ValueAsOf(p.Date)
		aligned = append(aligned, Point{Date: p.Date, Value: v})
	}
	return aligned
}

func points(h *date.History[float64]) []Point {
	res := make([]Point, 0, h.Len())
	for on, v := range h.Values() {
		res = append(res, Point{Date: on, Value: v})
	}
	return res
}
