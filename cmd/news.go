package cmd

import (
	"context"
	"flag"

	"github.com/etnz/carteira/renderer"
	"github.com/google/subcommands"
)

type newsCmd struct{}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "summarize the latest real-estate fund news" }
func (*newsCmd) Usage() string {
	return `fii news

  Asks the AI service, with web search, for the most important recent news
  about real-estate funds, and lists the sources it used.
`
}
func (*newsCmd) SetFlags(*flag.FlagSet) {}

func (*newsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		client, err := a.gemini(ctx)
		if err != nil {
			return err
		}
		news, err := client.FetchNews(ctx)
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderNews(&renderer.News{News: news}))
		return nil
	})
}
