package carteira

import (
	"fmt"
	"strings"

	"github.com/etnz/carteira/date"
)

// Period is the window shown by the portfolio chart.
type Period int

const (
	OneMonth Period = iota
	ThreeMonths
	SixMonths
	OneYear
)

// Periods lists the chart periods in display order.
var Periods = []Period{OneMonth, ThreeMonths, SixMonths, OneYear}

func (p Period) String() string {
	switch p {
	case OneMonth:
		return "1M"
	case ThreeMonths:
		return "3M"
	case SixMonths:
		return "6M"
	case OneYear:
		return "1A"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// Days returns the lookback of the period in days.
func (p Period) Days() int {
	switch p {
	case ThreeMonths:
		return 90
	case SixMonths:
		return 180
	case OneYear:
		return 365
	default:
		return 30
	}
}

// Cutoff returns the first day of the period ending on 'today'.
func (p Period) Cutoff(today date.Date) date.Date {
	return today.Add(-p.Days())
}

// Set implements flag.Value.
func (p *Period) Set(s string) error {
	v, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePeriod parses "1M", "3M", "6M" or "1A" ("1Y" is accepted too).
func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1M":
		return OneMonth, nil
	case "3M":
		return ThreeMonths, nil
	case "6M":
		return SixMonths, nil
	case "1A", "1Y":
		return OneYear, nil
	default:
		return OneMonth, fmt.Errorf("unknown period %q, want one of 1M, 3M, 6M, 1A", s)
	}
}
