package carteira

import (
	"time"

	"github.com/etnz/carteira/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// day returns the n-th day of January 2025, a helper for tests to write short scenarios.
func day(n int) date.Date { return date.New(2025, time.January, n) }

// approx compares floats up to accumulated rounding errors.
var approx = cmpopts.EquateApprox(0, 1e-9)

// tx is a helper for tests to create a transaction with a fixed id.
func tx(id string, kind Kind, on date.Date, ticker string, quantity, price float64) Transaction {
	return Transaction{ID: id, Ticker: ticker, Kind: kind, Quantity: quantity, Price: price, Date: on}
}

func diff(want, got any) string { return cmp.Diff(want, got, approx) }
