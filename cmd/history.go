package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/invest/date"
	"github.com/etnz/invest/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	portfolioFlags
	start  string
	charts bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the portfolio value and invested capital over time" }
func (*historyCmd) Usage() string {
	return `inv history [-f <file>] [-d <date>] [-s <start>] [-charts]

  Displays the market value, invested capital, inflation corrected invested
  capital and accumulated dividends on about 30 days between the start (the
  first transaction by default) and the date.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	c.portfolioFlags.SetFlags(f)
	f.StringVar(&c.start, "s", "", "Start date. Defaults to the first transaction.")
	f.BoolVar(&c.charts, "charts", false, "Also display the value of each position.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	p := app.Portfolio

	grid := p.Grid()
	if c.start != "" {
		start, err := date.Parse(c.start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
		grid = date.Grid(start, p.AsOf())
	}

	var b strings.Builder
	b.WriteString(renderer.HistoryMarkdown(grid, p.Series(grid), app.Config.Currency))
	if c.charts {
		b.WriteString("\n")
		b.WriteString(renderer.StockChartsMarkdown(grid, p.StockCharts(grid), app.Config.Currency))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
