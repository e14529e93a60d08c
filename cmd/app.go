// Package cmd implements the fii command line application to track a
// portfolio of real-estate funds.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/cache"
	"github.com/etnz/carteira/config"
	"github.com/etnz/carteira/gemini"
	"github.com/etnz/carteira/renderer"
	"github.com/etnz/carteira/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addCmd{kind: carteira.Buy}, "transactions")
	c.Register(&addCmd{kind: carteira.Sell}, "transactions")
	c.Register(&addCmd{kind: carteira.Dividend}, "transactions")
	c.Register(&editCmd{}, "transactions")
	c.Register(&rmCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
	c.Register(&exportCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")

	c.Register(&portfolioCmd{}, "reports")
	c.Register(&reportCmd{}, "reports")
	c.Register(&newsCmd{}, "reports")
	c.Register(&notificationsCmd{}, "reports")
	c.Register(&watchCmd{}, "reports")

	c.Register(&apiKeyCmd{}, "settings")
	c.Register(&updateCmd{}, "settings")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dataDir = flag.String("data", "", "Path to the data directory. Overrides FII_DATA_DIR.")
var verbose = flag.Bool("v", false, "Log diagnostics to stderr.")

// stdout is where reports are written, replaced in tests.
var stdout io.Writer = os.Stdout

// app is what every command needs: configuration, store, book and logger.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store store.Store
	book  *carteira.Book
	cache cache.Cache

	closers []func() error
}

// openApp loads the configuration and opens the store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	level := cfg.LogLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	s, closer, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		log:     log,
		store:   s,
		book:    carteira.NewBook(s),
		closers: []func() error{closer},
	}
	a.cache = cache.NewStore(s, log)
	if cfg.RedisURL != "" {
		r, err := cache.OpenRedis(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis is unavailable, caching in the data directory")
		} else {
			a.cache = r
			a.closers = append(a.closers, r.Close)
		}
	}
	log.Debug().Str("data", cfg.DataDir).Str("store", cfg.Store).Msg("app opened")
	return a, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
}

// gemini returns a client authenticated with the configured API key.
func (a *app) gemini(ctx context.Context) (*gemini.Client, error) {
	key, err := a.cfg.ResolveAPIKey(ctx, a.store)
	if err != nil {
		return nil, err
	}
	return gemini.New(ctx, key,
		gemini.WithModel(a.cfg.Model),
		gemini.WithCache(a.cache),
		gemini.WithLogger(a.log),
	)
}

// run opens the app, runs fn and reports its error.
func run(ctx context.Context, fn func(*app) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer a.close()
	if err := fn(a); err != nil {
		printError(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printError explains to the user what to do about err.
func printError(err error) {
	switch {
	case errors.Is(err, carteira.ErrConfiguration):
		fmt.Fprintf(os.Stderr, "Error: %v\nSet your Gemini API key with `fii apikey set <key>` or GEMINI_API_KEY.\n", err)
	case errors.Is(err, carteira.ErrAuth):
		fmt.Fprintf(os.Stderr, "Error: the Gemini API key was rejected: %v\nCheck it with `fii apikey status` or set a new one.\n", err)
	case errors.Is(err, carteira.ErrService):
		fmt.Fprintf(os.Stderr, "Error: the AI service is unavailable or overloaded, try again later.\n  %v\n", err)
	case errors.Is(err, carteira.ErrParsing):
		fmt.Fprintf(os.Stderr, "Error: the AI answered in an unexpected format, try again.\n  %v\n", err)
	case errors.Is(err, carteira.ErrMalformedImport):
		fmt.Fprintf(os.Stderr, "Error: the file is not a transaction export, nothing was imported.\n  %v\n", err)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
}

// printMarkdown prints a markdown document, styled when possible.
func printMarkdown(md string) {
	out, err := renderer.Terminal(md)
	if err != nil {
		out = md
	}
	fmt.Fprint(stdout, out)
}
