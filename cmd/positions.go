package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/invest/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct {
	portfolioFlags
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the positions held, by asset type" }
func (*positionsCmd) Usage() string {
	return `inv positions [-f <file>] [-d <date>]

  Displays quantity, cost per share, price, net gain, change, total and income
  of every asset held on the date, grouped by asset type. Tickers that could
  not be loaded are listed with the reason.
`
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	p := app.Portfolio
	printMarkdown(renderer.PositionsMarkdown(p.PositionsByType(), p.Skipped(), p.AsOf(), app.Config.Currency))
	return subcommands.ExitSuccess
}
