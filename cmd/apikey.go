package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/carteira/store"
	"github.com/google/subcommands"
)

type apiKeyCmd struct{}

func (*apiKeyCmd) Name() string     { return "apikey" }
func (*apiKeyCmd) Synopsis() string { return "manage the Gemini API key" }
func (*apiKeyCmd) Usage() string {
	return `fii apikey set <key> | rm | status

  Saves, removes or describes the Gemini API key used to fetch market data,
  news and dividend dates. GEMINI_API_KEY, when set, wins over the saved key.
`
}
func (*apiKeyCmd) SetFlags(*flag.FlagSet) {}

func (*apiKeyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	switch f.Arg(0) {
	case "set":
		key := strings.TrimSpace(f.Arg(1))
		if f.NArg() != 2 || key == "" {
			f.Usage()
			return subcommands.ExitUsageError
		}
		return run(ctx, func(a *app) error {
			if err := a.store.Set(ctx, store.APIKeyKey, key); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "API key saved.")
			return nil
		})
	case "rm":
		return run(ctx, func(a *app) error {
			if err := a.store.Remove(ctx, store.APIKeyKey); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			fmt.Fprintln(stdout, "API key removed.")
			return nil
		})
	case "status":
		return run(ctx, func(a *app) error {
			switch key, err := a.cfg.ResolveAPIKey(ctx, a.store); {
			case err != nil:
				return err
			case key == "":
				fmt.Fprintln(stdout, "No API key. Set one with `fii apikey set <key>`.")
			case a.cfg.APIKey != "":
				fmt.Fprintf(stdout, "API key %s from the environment.\n", mask(key))
			default:
				fmt.Fprintf(stdout, "API key %s saved in %s.\n", mask(key), a.cfg.DataDir)
			}
			return nil
		})
	default:
		f.Usage()
		return subcommands.ExitUsageError
	}
}

// mask hides all but the last 4 characters of key.
func mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
