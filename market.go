package carteira

import "context"

// PlaceholderName is the name of a holding whose quote is missing or has no
// name. A missing quote has no price either, so Join drops that row and the
// placeholder is only ever displayed for a priced quote without a name.
const PlaceholderName = "Nome não encontrado"

// Quote is what a market-data provider knows about a ticker.
type Quote struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"currentPrice"`
	History      []Point `json:"history"` // daily closing prices, sorted by date
}

// MarketProvider fetches quotes for a set of tickers over a lookback window in days.
//
// Implementations report failures wrapping ErrConfiguration, ErrAuth,
// ErrService or ErrParsing.
type MarketProvider interface {
	FetchMarketHistory(ctx context.Context, tickers []string, lookbackDays int) (map[string]Quote, error)
}

// DisplayPosition is a position enriched with its market data.
type DisplayPosition struct {
	Position
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"currentPrice"`
}

// MarketValue returns the value of the position at the current price.
func (d DisplayPosition) MarketValue() float64 { return d.Quantity * d.CurrentPrice }

// Join enriches holdings with quotes.
//
// A holding without a quote, or with an empty name, gets PlaceholderName.
// Rows whose current price is not strictly positive are dropped: the
// presentation shows only priced positions. Order is preserved.
func Join(holdings []Position, quotes map[string]Quote) []DisplayPosition {
	var rows []DisplayPosition
	for _, h := range holdings {
		q := quotes[h.Ticker]
		name := q.Name
		if name == "" {
			name = PlaceholderName
		}
		if !(q.CurrentPrice > 0) {
			continue
		}
		rows = append(rows, DisplayPosition{Position: h, Name: name, CurrentPrice: q.CurrentPrice})
	}
	return rows
}
