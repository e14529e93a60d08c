package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
	"github.com/etnz/carteira/renderer"
	"github.com/google/subcommands"
)

// quoteSource is the market data of the portfolio report.
type quoteSource interface {
	carteira.MarketProvider
	LastKnownMarketHistory(ctx context.Context, tickers []string, lookbackDays int) (map[string]carteira.Quote, bool)
}

// quotesOf returns the market data source of the app, replaced in tests.
var quotesOf = func(ctx context.Context, a *app) (quoteSource, error) {
	client, err := a.gemini(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// portfolio composes the portfolio report, fetching the quotes of the held
// tickers. When the AI service fails and stale is set, the last known quotes
// are used instead.
func (a *app) portfolio(ctx context.Context, period carteira.Period, stale bool) (*renderer.Portfolio, error) {
	txs, err := a.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	today := date.Today()
	var tickers []string
	for _, h := range carteira.ComputePortfolio(txs).Holdings {
		tickers = append(tickers, h.Ticker)
	}
	if len(tickers) == 0 {
		return renderer.NewPortfolio(txs, nil, period, today), nil
	}

	client, err := quotesOf(ctx, a)
	if err != nil {
		return nil, err
	}
	quotes, err := client.FetchMarketHistory(ctx, tickers, period.Days())
	old := false
	if err != nil {
		if !stale || !(errors.Is(err, carteira.ErrService) || errors.Is(err, carteira.ErrParsing)) {
			return nil, err
		}
		var ok bool
		if quotes, ok = client.LastKnownMarketHistory(ctx, tickers, period.Days()); !ok {
			return nil, err
		}
		a.log.Warn().Err(err).Msg("showing the last known quotes")
		old = true
	}
	r := renderer.NewPortfolio(txs, quotes, period, today)
	r.Stale = old
	return r, nil
}

type portfolioCmd struct {
	period carteira.Period
	stale  bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display the portfolio at today's market prices" }
func (*portfolioCmd) Usage() string {
	return `fii portfolio [-period 1M|3M|6M|1A] [-stale=false]

  Displays the summary, positions, allocation, dividends and value history
  of the portfolio. Market data is fetched from the AI service.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	c.period = carteira.OneMonth
	f.Var(&c.period, "period", "Chart and dividend period: 1M, 3M, 6M or 1A")
	f.BoolVar(&c.stale, "stale", true, "Fall back to the last known quotes when the AI service fails")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		r, err := a.portfolio(ctx, c.period, c.stale)
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderPortfolio(r))
		return nil
	})
}

// reportCmd writes the portfolio as a markdown or html file.
type reportCmd struct {
	period carteira.Period
	html   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "write the portfolio report as markdown or html" }
func (*reportCmd) Usage() string {
	return `fii report [-period 1M|3M|6M|1A] [-html <file>]

  Prints the raw markdown of the portfolio report, or writes it as a
  standalone html page.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.period = carteira.OneMonth
	f.Var(&c.period, "period", "Chart and dividend period: 1M, 3M, 6M or 1A")
	f.StringVar(&c.html, "html", "", "Write an html page to this file")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		r, err := a.portfolio(ctx, c.period, true)
		if err != nil {
			return err
		}
		md := renderer.RenderPortfolio(r)
		if c.html == "" {
			fmt.Fprint(stdout, md)
			return nil
		}
		f, err := os.Create(c.html)
		if err != nil {
			return err
		}
		if err := renderer.HTML(f, "Carteira de FIIs "+r.Date.Format("02/01/2006"), md); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", c.html)
		return nil
	})
}
