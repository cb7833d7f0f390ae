package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/invest/renderer"
	"github.com/google/subcommands"
)

type rentabilityCmd struct {
	portfolioFlags
	months int
}

func (*rentabilityCmd) Name() string     { return "rentability" }
func (*rentabilityCmd) Synopsis() string { return "display the portfolio returns against benchmarks and inflation" }
func (*rentabilityCmd) Usage() string {
	return `inv rentability [-f <file>] [-d <date>] [-m <months>]

  Displays the nominal and inflation corrected returns of the portfolio and of
  each asset type, the benchmark returns and the accumulated inflation over the
  last months (0 for since the first transaction).
`
}

func (c *rentabilityCmd) SetFlags(f *flag.FlagSet) {
	c.portfolioFlags.SetFlags(f)
	f.IntVar(&c.months, "m", 0, "Lookback in months, 0 for since the first transaction.")
}

func (c *rentabilityCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.months < 0 {
		fmt.Fprintln(os.Stderr, "Error: -m must not be negative")
		return subcommands.ExitUsageError
	}
	app, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	r, err := app.Portfolio.Rentability(c.months)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing rentability: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RentabilityMarkdown(r))
	return subcommands.ExitSuccess
}
