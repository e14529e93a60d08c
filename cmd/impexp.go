package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/carteira/date"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the transactions as JSON" }
func (*exportCmd) Usage() string {
	return `fii export [-o <file>]

  Writes every transaction as a JSON array, readable by import and by the
  web app. Use -o - to write to standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", fmt.Sprintf("fii-transacoes-%s.json", date.Today()), "Output file, - for standard output")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		if c.output == "-" {
			return a.book.Export(ctx, stdout)
		}
		f, err := os.Create(c.output)
		if err != nil {
			return err
		}
		if err := a.book.Export(ctx, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Transactions exported to %s\n", c.output)
		return nil
	})
}

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the transactions with an exported file" }
func (*importCmd) Usage() string {
	return `fii import <file>

  Replaces every transaction with the content of an export. A file that is
  not an export leaves the transactions unchanged. Use - to read from
  standard input.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		var r io.Reader = os.Stdin
		if name := f.Arg(0); name != "-" {
			file, err := os.Open(name)
			if err != nil {
				return err
			}
			defer file.Close()
			r = file
		}
		n, err := a.book.Import(ctx, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%d transactions imported.\n", n)
		return nil
	})
}
