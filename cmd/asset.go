package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/invest/renderer"
	"github.com/google/subcommands"
)

type assetCmd struct {
	portfolioFlags
}

func (*assetCmd) Name() string     { return "asset" }
func (*assetCmd) Synopsis() string { return "display the detail of an asset" }
func (*assetCmd) Usage() string {
	return `inv asset [-f <file>] [-d <date>] <ticker>

  Displays the position, cost basis and returns over 1M, 2M, 6M, 1Y, 2Y, 5Y
  and 10Y windows of a single asset, and its closed positions.
`
}

func (c *assetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting exactly one ticker")
		return subcommands.ExitUsageError
	}
	ticker := strings.ToUpper(f.Arg(0))

	app, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	a := app.Portfolio.Asset(ticker)
	if a == nil {
		if err, ok := app.Portfolio.Skipped()[ticker]; ok {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", ticker, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: no transaction for %s\n", ticker)
		}
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.AssetMarkdown(a, app.Portfolio.AsOf(), app.Config.Currency))
	return subcommands.ExitSuccess
}
