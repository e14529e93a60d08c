package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/store"
	"github.com/google/subcommands"
)

// setup points the application to an empty data directory.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FII_DATA_DIR", dir)
	t.Setenv("FII_STORE", "dir")
	t.Setenv("FII_REDIS_URL", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("FII_LOG_LEVEL", "")
	return dir
}

// execute runs a subcommand as the commander would and returns its output.
func execute(t *testing.T, c subcommands.Command, args ...string) (string, subcommands.ExitStatus) {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", c.Name(), args, err)
	}
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()
	status := c.Execute(context.Background(), fs)
	return buf.String(), status
}

func mustExecute(t *testing.T, c subcommands.Command, args ...string) string {
	t.Helper()
	out, status := execute(t, c, args...)
	if status != subcommands.ExitSuccess {
		t.Fatalf("%s %v exited with %v", c.Name(), args, status)
	}
	return out
}

func exported(t *testing.T) []carteira.Transaction {
	t.Helper()
	out := mustExecute(t, &exportCmd{}, "-o", "-")
	txs, err := carteira.DecodeTransactions(strings.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeTransactions(export) failed: %v", err)
	}
	return txs
}

func TestTransactionCommands(t *testing.T) {
	setup(t)

	mustExecute(t, &addCmd{kind: carteira.Buy}, "-t", "hglg11", "-q", "10", "-p", "160.5", "-d", "2025-01-02")
	mustExecute(t, &addCmd{kind: carteira.Dividend}, "-t", "HGLG11", "-a", "11", "-d", "2025-01-15")

	txs := exported(t)
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].Ticker != "HGLG11" || txs[0].Quantity != 10 || txs[0].Price != 160.5 {
		t.Errorf("buy recorded as %+v", txs[0])
	}
	if txs[1].Kind != carteira.Dividend || txs[1].Quantity != 1 || txs[1].Price != 11 {
		t.Errorf("dividend recorded as %+v", txs[1])
	}

	mustExecute(t, &editCmd{}, "-id", txs[0].ID, "-q", "20")
	if got := exported(t)[0].Quantity; got != 20 {
		t.Errorf("edited quantity = %v, want 20", got)
	}

	mustExecute(t, &rmCmd{}, txs[1].ID)
	if got := exported(t); len(got) != 1 {
		t.Errorf("got %d transactions after rm, want 1", len(got))
	}

	if _, status := execute(t, &rmCmd{}, "unknown-id"); status != subcommands.ExitFailure {
		t.Errorf("rm unknown-id exited with %v, want failure", status)
	}
}

func TestAddUsage(t *testing.T) {
	setup(t)
	for _, args := range [][]string{
		{"-q", "10", "-p", "1"},                    // no ticker
		{"-t", "XPML11", "-p", "1"},                // no quantity
		{"-t", "XPML11", "-q", "1", "-d", "02/01"}, // no price
		{"-t", "XPML11", "-q", "1", "-p", "1", "-d", "02/01/2025"},
	} {
		if _, status := execute(t, &addCmd{kind: carteira.Buy}, args...); status != subcommands.ExitUsageError {
			t.Errorf("buy %v exited with %v, want usage error", args, status)
		}
	}
}

func TestImportExport(t *testing.T) {
	setup(t)
	mustExecute(t, &addCmd{kind: carteira.Buy}, "-t", "MXRF11", "-q", "100", "-p", "10", "-d", "2025-01-02")
	mustExecute(t, &addCmd{kind: carteira.Sell}, "-t", "MXRF11", "-q", "50", "-p", "11", "-d", "2025-01-10")

	file := filepath.Join(t.TempDir(), "export.json")
	mustExecute(t, &exportCmd{}, "-o", file)
	want := exported(t)

	mustExecute(t, &rmCmd{}, want[0].ID, want[1].ID)
	out := mustExecute(t, &importCmd{}, file)
	if !strings.Contains(out, "2 transactions imported") {
		t.Errorf("import printed %q", out)
	}
	if got := exported(t); len(got) != 2 || got[0].ID != want[0].ID {
		t.Errorf("imported %+v, want %+v", got, want)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"transactions": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, status := execute(t, &importCmd{}, bad); status != subcommands.ExitFailure {
		t.Errorf("import of a malformed file exited with %v, want failure", status)
	}
	if got := exported(t); len(got) != 2 {
		t.Errorf("a malformed import changed the transactions: %+v", got)
	}
}

func TestAPIKey(t *testing.T) {
	dir := setup(t)

	out := mustExecute(t, &apiKeyCmd{}, "status")
	if !strings.Contains(out, "No API key") {
		t.Errorf("status without key printed %q", out)
	}

	mustExecute(t, &apiKeyCmd{}, "set", "AIzaSecret1234")
	s, err := store.OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := s.Get(context.Background(), store.APIKeyKey); err != nil || got != "AIzaSecret1234" {
		t.Errorf("stored key = %q, %v", got, err)
	}
	out = mustExecute(t, &apiKeyCmd{}, "status")
	if !strings.Contains(out, "********1234") || strings.Contains(out, "Secret") {
		t.Errorf("status printed %q, want a masked key", out)
	}

	t.Setenv("GEMINI_API_KEY", "from-environment")
	if out := mustExecute(t, &apiKeyCmd{}, "status"); !strings.Contains(out, "environment") {
		t.Errorf("status printed %q, want the environment key", out)
	}

	mustExecute(t, &apiKeyCmd{}, "rm")
	if _, err := s.Get(context.Background(), store.APIKeyKey); err == nil {
		t.Error("key still stored after rm")
	}
	if _, status := execute(t, &apiKeyCmd{}, "set"); status != subcommands.ExitUsageError {
		t.Errorf("set without key exited with %v, want usage error", status)
	}
}

func TestUpdateApply(t *testing.T) {
	dir := setup(t)
	mustExecute(t, &addCmd{kind: carteira.Buy}, "-t", "KNRI11", "-q", "1", "-p", "150", "-d", "2025-01-02")
	mustExecute(t, &apiKeyCmd{}, "set", "key")

	s, err := store.OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Set(ctx, "cache:news", "{}"); err != nil {
		t.Fatal(err)
	}

	out := mustExecute(t, &updateCmd{}, "-apply")
	if !strings.Contains(out, "1 cached entries cleared") {
		t.Errorf("update -apply printed %q", out)
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != store.TransactionsKey || keys[1] != store.APIKeyKey {
		t.Errorf("keys after update = %v", keys)
	}
}

func TestEmptyPortfolio(t *testing.T) {
	setup(t)
	// no holding, no market data to fetch, no API key needed.
	mustExecute(t, &portfolioCmd{})
}

func TestPortfolioNeedsAPIKey(t *testing.T) {
	setup(t)
	mustExecute(t, &addCmd{kind: carteira.Buy}, "-t", "KNRI11", "-q", "1", "-p", "150", "-d", "2025-01-02")
	if _, status := execute(t, &portfolioCmd{}); status != subcommands.ExitFailure {
		t.Errorf("portfolio without API key exited with %v, want failure", status)
	}
}

func TestCompletion(t *testing.T) {
	c := subcommands.NewCommander(flag.NewFlagSet("fii", flag.ContinueOnError), "fii")
	Register(c)
	cmp := Completion(c)

	for _, name := range []string{"buy", "sell", "dividend", "edit", "rm", "tx", "portfolio", "report", "news", "notifications", "export", "import", "apikey", "update", "watch"} {
		if _, ok := cmp.Sub[name]; !ok {
			t.Errorf("no completion for %q", name)
		}
	}
	for sub, flags := range map[string][]string{
		"buy":       {"t", "q", "p", "d"},
		"dividend":  {"t", "a", "d"},
		"portfolio": {"period", "stale"},
		"watch":     {"schedule", "poll"},
	} {
		for _, f := range flags {
			if _, ok := cmp.Sub[sub].Flags[f]; !ok {
				t.Errorf("%s: no completion for flag -%s", sub, f)
			}
		}
	}
	if cmp.Sub["apikey"].Args == nil {
		t.Error("apikey: no completion for arguments")
	}
}

func TestMask(t *testing.T) {
	for key, want := range map[string]string{
		"":           "",
		"abc":        "***",
		"abcdefghij": "********ghij",
	} {
		if got := mask(key); got != want {
			t.Errorf("mask(%q) = %q, want %q", key, got, want)
		}
	}
}
