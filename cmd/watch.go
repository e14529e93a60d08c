package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/notify"
	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
)

// watchCmd keeps running: it refreshes notifications on a schedule and
// reports changes made to the transactions by other processes.
type watchCmd struct {
	schedule string
	poll     time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh notifications periodically and follow transaction changes" }
func (*watchCmd) Usage() string {
	return `fii watch [-schedule <cron>] [-poll <duration>]

  Runs until interrupted. Notifications are refreshed on the cron schedule
  and every change to the transactions is reported.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "schedule", "@every 1h", "Cron schedule of the notification refresh")
	f.DurationVar(&c.poll, "poll", 2*time.Second, "How often to look for transaction changes")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.poll <= 0 {
		fmt.Fprintf(os.Stderr, "Error: -poll must be positive, got %v\n", c.poll)
		return subcommands.ExitUsageError
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return run(ctx, func(a *app) error {
		center := a.center(ctx)
		refresh := func() {
			list, err := a.refresh(ctx, center)
			if err != nil {
				a.log.Error().Err(err).Msg("notification refresh failed")
				return
			}
			fmt.Fprintf(stdout, "%s %d unread notifications\n", time.Now().Format(time.TimeOnly), notify.Unread(list))
		}

		scheduler := cron.New()
		if _, err := scheduler.AddFunc(c.schedule, refresh); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", c.schedule, err)
		}
		refresh()
		scheduler.Start()
		defer scheduler.Stop()

		done := a.book.Subscribe(ctx, c.poll, func(txs []carteira.Transaction, err error) {
			if err != nil {
				a.log.Error().Err(err).Msg("cannot read transactions")
				return
			}
			fmt.Fprintf(stdout, "%s transactions changed: %d recorded\n", time.Now().Format(time.TimeOnly), len(txs))
		})
		<-done
		return nil
	})
}
