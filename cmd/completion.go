package cmd

import (
	"context"
	"flag"

	"github.com/etnz/carteira"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete answers shell completion requests and exits when the process was
// started by the shell to complete a command line. Otherwise it returns
// immediately. It must run before flag parsing.
func Complete(c *subcommands.Commander) {
	Completion(c).Complete(c.Name())
}

// Completion describes the command line of every registered subcommand.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		fs := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(fs)
		cmd := &complete.Command{Flags: flags(fs)}
		switch sub.Name() {
		case "import":
			cmd.Args = predict.Files("*.json")
		case "apikey":
			cmd.Args = predict.Set{"set", "rm", "status"}
		case "rm":
			cmd.Args = complete.PredictFunc(func(string) []string { return transactionIDs() })
		}
		root.Sub[sub.Name()] = cmd
	})
	return root
}

// flags predicts the values of the flags of fs.
func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	res := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			res[f.Name] = predict.Nothing
			return
		}
		switch f.Name {
		case "period":
			res[f.Name] = predict.Set{"1M", "3M", "6M", "1A"}
		case "k":
			res[f.Name] = predict.Set{"buy", "sell", "dividend"}
		case "t":
			res[f.Name] = complete.PredictFunc(func(string) []string { return tickers() })
		case "id":
			res[f.Name] = complete.PredictFunc(func(string) []string { return transactionIDs() })
		case "o", "html", "data":
			res[f.Name] = predict.Files("*")
		default:
			res[f.Name] = predict.Something
		}
	})
	return res
}

// recorded returns the stored transactions, nil on any error: completion
// must stay silent.
func recorded() []carteira.Transaction {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return nil
	}
	defer a.close()
	txs, _ := a.book.Load(ctx)
	return txs
}

func tickers() []string {
	var res []string
	seen := make(map[string]bool)
	for _, tx := range recorded() {
		if !seen[tx.Ticker] {
			seen[tx.Ticker] = true
			res = append(res, tx.Ticker)
		}
	}
	return res
}

func transactionIDs() []string {
	var res []string
	for _, tx := range recorded() {
		res = append(res, tx.ID)
	}
	return res
}
