package renderer

import (
	"slices"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
	"github.com/etnz/carteira/gemini"
	"github.com/etnz/carteira/notify"
)

// TopDividends is how many tickers the dividend panel lists.
const TopDividends = 3

// maxChartRows is the number of rows the value chart is sampled down to.
const maxChartRows = 12

// Portfolio is the report of the portfolio command.
type Portfolio struct {
	Date      date.Date
	Period    carteira.Period
	Stale     bool // quotes come from an expired cache
	Summary   carteira.Summary
	Positions []Position
	// positions without a price, not part of the totals
	Unpriced      []string
	Allocation    []carteira.Slice
	Dividends     []carteira.TickerAmount // received in the period, top TopDividends
	DividendTotal float64                 // received in the period
	Chart         []ChartRow
}

// Position is a row of the positions table.
type Position struct {
	carteira.DisplayPosition
	Return carteira.Return
}

// ChartRow is a point of the value chart.
type ChartRow struct {
	Date     date.Date
	Value    float64
	Invested float64
}

// NewPortfolio composes the portfolio report from the transactions and the
// quotes of the held tickers.
func NewPortfolio(txs []carteira.Transaction, quotes map[string]carteira.Quote, period carteira.Period, today date.Date) *Portfolio {
	p := carteira.ComputePortfolio(txs)
	positions := carteira.Join(p.Holdings, quotes)

	r := &Portfolio{
		Date:       today,
		Period:     period,
		Summary:    carteira.NewSummary(positions, p.Dividends, p.RealizedGains),
		Allocation: carteira.Allocation(positions),
	}
	for _, pos := range positions {
		r.Positions = append(r.Positions, Position{DisplayPosition: pos, Return: carteira.PositionReturn(pos)})
	}
	for _, h := range p.Holdings {
		if !slices.ContainsFunc(positions, func(d carteira.DisplayPosition) bool { return d.Ticker == h.Ticker }) {
			r.Unpriced = append(r.Unpriced, h.Ticker)
		}
	}

	inPeriod := carteira.DividendsSince(p.Dividends, period.Cutoff(today))
	r.DividendTotal = carteira.DividendTotal(inPeriod)
	r.Dividends = carteira.DividendsByTicker(inPeriod)
	if len(r.Dividends) > TopDividends {
		r.Dividends = r.Dividends[:TopDividends]
	}

	histories := make(map[string][]carteira.Point, len(quotes))
	for t, q := range quotes {
		histories[t] = q.History
	}
	market := carteira.MarketValueSeries(p.Holdings, histories)
	invested := carteira.AlignInvested(market, p.InvestedHistory)
	for i, m := range market {
		r.Chart = append(r.Chart, ChartRow{Date: m.Date, Value: m.Value, Invested: invested[i].Value})
	}
	r.Chart = sample(r.Chart, maxChartRows)
	return r
}

// sample keeps at most n rows, evenly spaced, always keeping the last one.
func sample(rows []ChartRow, n int) []ChartRow {
	if len(rows) <= n {
		return rows
	}
	res := make([]ChartRow, 0, n)
	step := float64(len(rows)-1) / float64(n-1)
	for i := range n {
		res = append(res, rows[int(float64(i)*step+0.5)])
	}
	return res
}

// Transactions is the report of the tx command.
type Transactions struct {
	Transactions []carteira.Transaction // newest first
}

// NewTransactions lists the transactions newest first, at most head of them if head > 0.
func NewTransactions(txs []carteira.Transaction, head int) *Transactions {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b carteira.Transaction) int { return b.Date.Compare(a.Date) })
	if head > 0 && len(sorted) > head {
		sorted = sorted[:head]
	}
	return &Transactions{Transactions: sorted}
}

// News is the report of the news command.
type News struct {
	gemini.News
}

// Notifications is the report of the notifications command.
type Notifications struct {
	Notifications []notify.Notification
	Unread        int
}

// NewNotifications wraps a notification list.
func NewNotifications(list []notify.Notification) *Notifications {
	return &Notifications{Notifications: list, Unread: notify.Unread(list)}
}
