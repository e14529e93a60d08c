package carteira

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percent, 12.5 is 12,5%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

// fixed returns the value with two decimals and a decimal comma.
func (p Percent) fixed() string {
	return strings.Replace(decimal.NewFromFloat(float64(p)).StringFixed(2), ".", ",", 1)
}

func (p Percent) String() string {
	return p.fixed() + "%"
}

func (p Percent) SignedString() string {
	s := p.fixed()
	switch {
	case s == "0,00" || s == "-0,00":
		return "-"
	case strings.HasPrefix(s, "-"):
		return s + "%"
	default:
		return "+" + s + "%"
	}
}
