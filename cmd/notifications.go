package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/notify"
	"github.com/etnz/carteira/renderer"
	"github.com/etnz/carteira/update"
	"github.com/google/subcommands"
)

// center returns the notification center. Without an API key no dividend
// notification is generated.
func (a *app) center(ctx context.Context) *notify.Center {
	var calendar notify.Calendar
	if client, err := a.gemini(ctx); err == nil {
		calendar = client
	} else {
		a.log.Debug().Err(err).Msg("dividend notifications are disabled")
	}
	return notify.NewCenter(a.store, calendar, update.Latest, a.log)
}

// refresh regenerates the notifications for the current holdings.
func (a *app) refresh(ctx context.Context, center *notify.Center) ([]notify.Notification, error) {
	txs, err := a.book.Load(ctx)
	if err != nil {
		return nil, err
	}
	var tickers []string
	for _, h := range carteira.ComputePortfolio(txs).Holdings {
		tickers = append(tickers, h.Ticker)
	}
	return center.Refresh(ctx, tickers)
}

type notificationsCmd struct {
	readAll bool
	read    string
}

func (*notificationsCmd) Name() string     { return "notifications" }
func (*notificationsCmd) Synopsis() string { return "list dividend and update notifications" }
func (*notificationsCmd) Usage() string {
	return `fii notifications [-read-all] [-read <id>]

  Refreshes and lists the notifications: upcoming dividends of the held
  funds and available updates.
`
}

func (c *notificationsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.readAll, "read-all", false, "Mark every notification as read")
	f.StringVar(&c.read, "read", "", "Mark the notification with this id as read")
}

func (c *notificationsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		center := a.center(ctx)
		switch {
		case c.readAll:
			if err := center.MarkAllRead(ctx); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "All notifications marked as read.")
			return nil
		case c.read != "":
			if err := center.MarkRead(ctx, c.read); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Notification %s marked as read.\n", c.read)
			return nil
		}
		list, err := a.refresh(ctx, center)
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderNotifications(renderer.NewNotifications(list)))
		return nil
	})
}
