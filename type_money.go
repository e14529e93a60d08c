package carteira

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency of every amount in a portfolio of FIIs.
const Currency = money.BRL

// Money is an amount in reais.
//
// Computations stay in float64, Money only controls how amounts are rounded
// and displayed.
type Money float64

// currency returns the BRL currency, never nil.
func (m Money) currency() money.Currency {
	return *money.New(0, Currency).Currency()
}

// cents returns the amount in the currency's minor unit, rounded half away from zero.
func (m Money) cents() int64 {
	cur := m.currency()
	return decimal.NewFromFloat(float64(m)).Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
}

// String returns the amount formatted the Brazilian way, e.g. "R$1.234,56".
func (m Money) String() string {
	cur := m.currency()
	return cur.Formatter().Format(m.cents())
}

// SignedString returns the amount with an explicit sign.
// An amount that rounds to zero is represented as "-".
func (m Money) SignedString() string {
	c := m.cents()
	switch {
	case c == 0:
		return "-"
	case c > 0:
		return "+" + m.String()
	default:
		return m.String()
	}
}
