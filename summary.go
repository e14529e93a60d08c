package carteira

import (
	"cmp"
	"slices"

	"github.com/etnz/carteira/date"
)

// Summary holds the headline figures of a portfolio.
type Summary struct {
	TotalValue         float64 `json:"totalValue"`     // market value of the priced positions
	TotalCost          float64 `json:"totalCost"`      // cost basis of the priced positions
	TotalDividends     float64 `json:"totalDividends"` // all dividends ever received
	TotalReceived      float64 `json:"totalReceived"`  // dividends plus realized gains
	TotalReturn        float64 `json:"totalReturn"`
	TotalReturnPercent float64 `json:"totalReturnPercent"`
}

// NewSummary computes the summary of priced positions together with the
// dividends and realized gains of the whole history.
func NewSummary(positions []DisplayPosition, dividends []Transaction, realizedGains float64) Summary {
	var s Summary
	for _, p := range positions {
		s.TotalValue += p.MarketValue()
		s.TotalCost += p.CostBasis()
	}
	s.TotalDividends = DividendTotal(dividends)
	s.TotalReceived = s.TotalDividends + realizedGains
	s.TotalReturn = (s.TotalValue - s.TotalCost) + s.TotalReceived
	s.TotalReturnPercent = percentOf(s.TotalReturn, s.TotalCost)
	return s
}

// percentOf returns part/total in percent, 0 when total is not positive.
func percentOf(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// Return is the unrealized performance of a single position.
type Return struct {
	Ticker        string  `json:"ticker"`
	MarketValue   float64 `json:"marketValue"`
	Invested      float64 `json:"invested"`
	ProfitLoss    float64 `json:"profitLoss"`
	ProfitPercent float64 `json:"profitPercent"`
}

// PositionReturn computes the unrealized profit or loss of a position.
func PositionReturn(p DisplayPosition) Return {
	r := Return{
		Ticker:      p.Ticker,
		MarketValue: p.MarketValue(),
		Invested:    p.CostBasis(),
	}
	r.ProfitLoss = r.MarketValue - r.Invested
	r.ProfitPercent = percentOf(r.ProfitLoss, r.Invested)
	return r
}

// Slice is the share of one ticker in the portfolio value.
type Slice struct {
	Ticker  string  `json:"ticker"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// Allocation returns the share of each position in the total market value, in positions order.
func Allocation(positions []DisplayPosition) []Slice {
	var total float64
	for _, p := range positions {
		total += p.MarketValue()
	}
	res := make([]Slice, 0, len(positions))
	for _, p := range positions {
		v := p.MarketValue()
		res = append(res, Slice{Ticker: p.Ticker, Value: v, Percent: percentOf(v, total)})
	}
	return res
}

// DividendsSince returns the dividends paid on or after cutoff, in input order.
func DividendsSince(dividends []Transaction, cutoff date.Date) []Transaction {
	var res []Transaction
	for _, d := range dividends {
		if !d.Date.Before(cutoff) {
			res = append(res, d)
		}
	}
	return res
}

// DividendTotal sums the cash amount of dividends.
func DividendTotal(dividends []Transaction) float64 {
	var total float64
	for _, d := range dividends {
		total += d.Amount()
	}
	return total
}

// TickerAmount is a cash amount received from one ticker.
type TickerAmount struct {
	Ticker string  `json:"ticker"`
	Amount float64 `json:"amount"`
}

// DividendsByTicker groups dividends by ticker, largest amount first.
// Equal amounts are ordered by ticker.
func DividendsByTicker(dividends []Transaction) []TickerAmount {
	index := make(map[string]int)
	var res []TickerAmount
	for _, d := range dividends {
		i, ok := index[d.Ticker]
		if !ok {
			i = len(res)
			index[d.Ticker] = i
			res = append(res, TickerAmount{Ticker: d.Ticker})
		}
		res[i].Amount += d.Amount()
	}
	slices.SortFunc(res, func(a, b TickerAmount) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Ticker, b.Ticker)
	})
	return res
}
