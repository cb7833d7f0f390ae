package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/invest/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	portfolioFlags
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio value and rentability" }
func (*summaryCmd) Usage() string {
	return `inv summary [-f <file>] [-d <date>]

  Displays the invested capital, market value, net gain and income of the
  portfolio, with its nominal and inflation corrected returns over the last
  month, 6 months, year, 2 years and since the first transaction.
`
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	o, err := app.Portfolio.Overview()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing overview: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.OverviewMarkdown(o, app.Portfolio.AsOf(), app.Config.Currency, app.Config.Inflation))
	return subcommands.ExitSuccess
}
