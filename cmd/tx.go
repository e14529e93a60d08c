package cmd

import (
	"context"
	"flag"

	"github.com/etnz/carteira/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	head int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the recorded transactions" }
func (*txCmd) Usage() string {
	return `fii tx [-head <n>]

  Lists the transactions, newest first, with their ids.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the N most recent transactions.")
}

func (c *txCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		txs, err := a.book.Load(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderTransactions(renderer.NewTransactions(txs, c.head)))
		return nil
	})
}
