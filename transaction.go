package carteira

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/etnz/carteira/date"
	"github.com/google/uuid"
)

// Kind is the type of a transaction.
type Kind int

const (
	Buy Kind = iota + 1
	Sell
	Dividend
)

// wire names, as persisted by the web app and found in its exports.
const (
	wireBuy      = "Compra"
	wireSell     = "Venda"
	wireDividend = "Dividendo"
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Dividend:
		return "dividend"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a kind from its English or Portuguese name, in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "compra":
		return Buy, nil
	case "sell", "venda":
		return Sell, nil
	case "dividend", "dividendo":
		return Dividend, nil
	default:
		return 0, fmt.Errorf("unknown transaction kind %q", s)
	}
}

// MarshalJSON writes the kind with its persisted name.
func (k Kind) MarshalJSON() ([]byte, error) {
	switch k {
	case Buy:
		return json.Marshal(wireBuy)
	case Sell:
		return json.Marshal(wireSell)
	case Dividend:
		return json.Marshal(wireDividend)
	default:
		return nil, fmt.Errorf("cannot marshal transaction kind %d", int(k))
	}
}

// UnmarshalJSON reads a kind from any of the names accepted by ParseKind.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Transaction is a single buy, sell or dividend record.
//
// For a Dividend, Price is the total cash amount received and Quantity is 1.
type Transaction struct {
	ID       string    `json:"id"`
	Ticker   string    `json:"ticker"`
	Kind     Kind      `json:"type"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Date     date.Date `json:"date"`
}

// Amount returns the cash value of the transaction.
func (tx Transaction) Amount() float64 {
	if tx.Kind == Dividend {
		return tx.Price
	}
	return tx.Quantity * tx.Price
}

// NormalizeTicker returns the ticker trimmed and upper-cased.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// normalize upper-cases the ticker and sets a dividend's quantity to 1.
func (tx *Transaction) normalize() {
	tx.Ticker = NormalizeTicker(tx.Ticker)
	if tx.Kind == Dividend {
		tx.Quantity = 1
	}
}

// NewTransaction creates a transaction with a fresh identifier and a normalized ticker.
// A dividend's quantity is forced to 1.
func NewTransaction(kind Kind, ticker string, quantity, price float64, on date.Date) Transaction {
	if kind == Dividend {
		quantity = 1
	}
	return Transaction{
		ID:       uuid.NewString(),
		Ticker:   NormalizeTicker(ticker),
		Kind:     kind,
		Quantity: quantity,
		Price:    price,
		Date:     on,
	}
}

// NewBuy creates a purchase of quantity units at price each.
func NewBuy(on date.Date, ticker string, quantity, price float64) Transaction {
	return NewTransaction(Buy, ticker, quantity, price, on)
}

// NewSell creates a sale of quantity units at price each.
func NewSell(on date.Date, ticker string, quantity, price float64) Transaction {
	return NewTransaction(Sell, ticker, quantity, price, on)
}

// NewDividend creates a dividend payment of a total amount.
func NewDividend(on date.Date, ticker string, amount float64) Transaction {
	return NewTransaction(Dividend, ticker, 1, amount, on)
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,12}$`)

// Validate checks the invariants a producer must enforce before storing a transaction.
// The accounting engine does not call it.
func (tx Transaction) Validate() error {
	var errs []error
	if tx.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if !tickerPattern.MatchString(tx.Ticker) {
		errs = append(errs, fmt.Errorf("invalid ticker %q: want uppercase letters and digits", tx.Ticker))
	}
	switch tx.Kind {
	case Buy, Sell, Dividend:
	default:
		errs = append(errs, fmt.Errorf("invalid kind %v", tx.Kind))
	}
	if !(tx.Quantity > 0) || math.IsInf(tx.Quantity, 0) {
		errs = append(errs, fmt.Errorf("quantity must be a positive number, got %v", tx.Quantity))
	}
	if !(tx.Price > 0) || math.IsInf(tx.Price, 0) {
		errs = append(errs, fmt.Errorf("price must be a positive number, got %v", tx.Price))
	}
	if tx.Date.IsZero() {
		errs = append(errs, errors.New("missing date"))
	}
	return errors.Join(errs...)
}
