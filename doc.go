// Package carteira tracks a personal portfolio of Brazilian real-estate
// investment funds (FIIs).
//
// The core functionalities include:
//   - Transactions: buys, sells and dividends, kept in a Book backed by a
//     key-value store and exchanged with the web app as a JSON array.
//   - Accounting: a pure engine that replays the transactions into open
//     positions at weighted-average cost, realized gains, dividends and the
//     invested capital over time.
//   - Market data: positions are joined with quotes from a MarketProvider to
//     compute the summary, allocation, returns and value history.
//
// This package serves as the foundational logic for the `fii` command-line
// tool. Market data and news come from the gemini package, persistence from
// the store package.
package carteira
