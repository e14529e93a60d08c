package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/carteira/update"
	"github.com/google/subcommands"
)

type updateCmd struct {
	apply bool
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "check for a new version and clear cached data" }
func (*updateCmd) Usage() string {
	return `fii update [-apply]

  Tells whether a newer version is available and what it changes. With
  -apply, clears every cached and generated data, keeping only the
  transactions and the API key.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.apply, "apply", false, "Clear cached data, keeping transactions and API key")
}

func (c *updateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	info := update.Latest
	if !c.apply {
		if !info.Available() {
			fmt.Fprintf(stdout, "fii %s is up to date.\n", info.Current)
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(stdout, "fii %s is available (current %s):\n", info.Latest, info.Current)
		for _, line := range info.Changelog {
			fmt.Fprintf(stdout, "  - %s\n", line)
		}
		fmt.Fprintln(stdout, "Run `fii update -apply` to clear cached data.")
		return subcommands.ExitSuccess
	}
	return run(ctx, func(a *app) error {
		removed, err := update.Apply(ctx, a.store)
		if err != nil {
			return err
		}
		a.log.Debug().Strs("keys", removed).Msg("cleared")
		fmt.Fprintf(stdout, "%d cached entries cleared, transactions and API key kept.\n", len(removed))
		return nil
	})
}
