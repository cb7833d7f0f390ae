package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/etnz/invest"
	"github.com/etnz/invest/date"
	"github.com/etnz/invest/renderer"
	"github.com/google/subcommands"
)

type watchCmd struct {
	portfolioFlags
	every string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "reload and display the summary on a schedule" }
func (*watchCmd) Usage() string {
	return `inv watch [-f <file>] [-every <schedule>]

  Reloads the transaction export and the market data on a schedule, and
  displays the summary after each reload, until interrupted. The schedule is a
  cron expression with seconds, or a descriptor like "@every 15m".
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	c.portfolioFlags.SetFlags(f)
	f.StringVar(&c.every, "every", "@every 1h", "Reload schedule.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	app, err := c.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	c.print(app)

	r := invest.NewReloader(func(ctx context.Context, status func(string)) error {
		if err := app.Load(ctx, date.Today(), status); err != nil {
			return err
		}
		c.print(app)
		return nil
	}, nil, app.Log)
	defer r.Stop()

	if err := r.Schedule(c.every); err != nil {
		fmt.Fprintf(os.Stderr, "Error scheduling %q: %v\n", c.every, err)
		return subcommands.ExitUsageError
	}
	<-ctx.Done()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *watchCmd) print(app *App) {
	o, err := app.Portfolio.Overview()
	if err != nil {
		app.Log.Error().Err(err).Msg("cannot compute overview")
		return
	}
	printMarkdown(renderer.OverviewMarkdown(o, app.Portfolio.AsOf(), app.Config.Currency, app.Config.Inflation))
}
