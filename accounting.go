package carteira

import (
	"slices"

	"github.com/etnz/carteira/date"
)

// ClosedThreshold is the quantity at or below which a position is considered closed.
// It absorbs the floating point dust left by selling everything.
const ClosedThreshold = 1e-4

// Position is the current open quantity of a ticker and its weighted-average cost.
type Position struct {
	Ticker      string  `json:"ticker"`
	Quantity    float64 `json:"quantity"`
	AverageCost float64 `json:"averagePrice"`
}

// CostBasis returns the total cost of the open quantity.
func (p Position) CostBasis() float64 { return p.Quantity * p.AverageCost }

// Point is a dated value of a time series.
type Point struct {
	Date  date.Date `json:"date"`
	Value float64   `json:"value"`
}

// Portfolio is everything derived from the list of transactions.
type Portfolio struct {
	Holdings        []Position    // open positions, in order of first appearance
	Dividends       []Transaction // dividend transactions, in input order
	RealizedGains   float64       // cumulative gains recognized on sales
	InvestedHistory []Point       // capital at cost after each day with a transaction
}

// Tickers returns the tickers of the open positions.
func (p Portfolio) Tickers() []string {
	tickers := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		tickers = append(tickers, h.Ticker)
	}
	return tickers
}

// lot is the running state of one ticker while folding transactions.
type lot struct {
	quantity  float64
	totalCost float64
}

// ComputePortfolio folds transactions in date order into holdings, dividends,
// realized gains and the invested capital history.
//
// It is a pure function: the input slice is not modified and the same input
// always gives the same output. It never fails, malformed transactions only
// give meaningless numbers.
//
// A sale is booked against the average cost of the position at the time of
// the sale. A sale on a ticker without an open position is ignored. A sale
// larger than the open quantity leaves a negative quantity: the ticker is
// then absent from the holdings and further sales are ignored until a
// purchase brings the quantity back above zero.
func ComputePortfolio(transactions []Transaction) Portfolio {
	sorted := slices.Clone(transactions)
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.Date.Compare(b.Date) })

	var (
		lots     = make(map[string]*lot)
		order    []string // tickers in order of first appearance
		realized float64
		invested float64
		history  date.History[float64]
		result   Portfolio
	)

	for _, tx := range sorted {
		switch tx.Kind {
		case Buy:
			l, ok := lots[tx.Ticker]
			if !ok {
				l = new(lot)
				lots[tx.Ticker] = l
				order = append(order, tx.Ticker)
			}
			cost := tx.Quantity * tx.Price
			l.quantity += tx.Quantity
			l.totalCost += cost
			invested += cost

		case Sell:
			l, ok := lots[tx.Ticker]
			if !ok || l.quantity <= 0 {
				break
			}
			average := l.totalCost / l.quantity
			costRemoved := tx.Quantity * average
			realized += tx.Quantity*tx.Price - costRemoved
			l.totalCost -= costRemoved
			l.quantity -= tx.Quantity
			invested -= costRemoved

		case Dividend:
			// Neither quantity, cost nor invested capital move.
		}
		history.Append(tx.Date, invested)
	}

	// Dividends keep the caller's order, not the date order.
	for _, tx := range transactions {
		if tx.Kind == Dividend {
			result.Dividends = append(result.Dividends, tx)
		}
	}

	for _, ticker := range order {
		l := lots[ticker]
		if l.quantity <= ClosedThreshold {
			continue
		}
		result.Holdings = append(result.Holdings, Position{
			Ticker:      ticker,
			Quantity:    l.quantity,
			AverageCost: l.totalCost / l.quantity,
		})
	}

	result.RealizedGains = realized
	for on, v := range history.Values() {
		result.InvestedHistory = append(result.InvestedHistory, Point{Date: on, Value: v})
	}
	return result
}
