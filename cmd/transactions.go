package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
	"github.com/google/subcommands"
)

// addCmd records a buy, a sell or a dividend.
type addCmd struct {
	kind     carteira.Kind
	date     string
	ticker   string
	quantity float64
	price    float64
}

func (c *addCmd) Name() string { return c.kind.String() }
func (c *addCmd) Synopsis() string {
	switch c.kind {
	case carteira.Sell:
		return "record a sale of fund shares"
	case carteira.Dividend:
		return "record a dividend payment"
	default:
		return "record a purchase of fund shares"
	}
}
func (c *addCmd) Usage() string {
	if c.kind == carteira.Dividend {
		return `fii dividend -t <ticker> -a <amount> [-d <date>]

  Records the total amount of a dividend paid by a fund.
`
	}
	return fmt.Sprintf(`fii %s -t <ticker> -q <quantity> -p <price> [-d <date>]

  Records a %s of <quantity> shares at <price> each.
`, c.kind, c.kind)
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "t", "", "Fund ticker, e.g. HGLG11")
	if c.kind == carteira.Dividend {
		f.Float64Var(&c.price, "a", 0, "Total amount received")
		return
	}
	f.Float64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.kind == carteira.Dividend {
		c.quantity = 1
	}
	if c.ticker == "" || c.quantity <= 0 || c.price <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		tx, err := a.book.Add(ctx, carteira.NewTransaction(c.kind, c.ticker, c.quantity, c.price, day))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Recorded %s of %s on %s (id %s)\n", tx.Kind, tx.Ticker, tx.Date, tx.ID)
		return nil
	})
}

// editCmd replaces fields of an existing transaction.
type editCmd struct {
	id       string
	kind     string
	date     string
	ticker   string
	quantity float64
	price    float64
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change a recorded transaction" }
func (*editCmd) Usage() string {
	return `fii edit -id <id> [-k <kind>] [-t <ticker>] [-q <quantity>] [-p <price>] [-d <date>]

  Changes the given fields of a transaction, the others are kept.
  For a dividend -p is the total amount.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Transaction id, as listed by `fii tx`")
	f.StringVar(&c.kind, "k", "", "New kind: buy, sell or dividend")
	f.StringVar(&c.date, "d", "", "New date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "t", "", "New ticker")
	f.Float64Var(&c.quantity, "q", 0, "New quantity")
	f.Float64Var(&c.price, "p", 0, "New price")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		tx, err := a.book.Get(ctx, c.id)
		if err != nil {
			return err
		}
		if c.kind != "" {
			if tx.Kind, err = carteira.ParseKind(c.kind); err != nil {
				return err
			}
		}
		if c.date != "" {
			if tx.Date, err = date.Parse(c.date); err != nil {
				return err
			}
		}
		if c.ticker != "" {
			tx.Ticker = c.ticker
		}
		if c.quantity != 0 {
			tx.Quantity = c.quantity
		}
		if c.price != 0 {
			tx.Price = c.price
		}
		if err := a.book.Update(ctx, tx); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Updated transaction %s\n", tx.ID)
		return nil
	})
}

// rmCmd deletes transactions.
type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete recorded transactions" }
func (*rmCmd) Usage() string {
	return `fii rm <id>...

  Deletes the transactions with the given ids.
`
}
func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		for _, id := range f.Args() {
			if err := a.book.Delete(ctx, strings.TrimSpace(id)); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Deleted transaction %s\n", id)
		}
		return nil
	})
}
