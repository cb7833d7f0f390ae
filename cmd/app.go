// Package cmd implements the CLI application to value a portfolio.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/etnz/invest"
	"github.com/etnz/invest/cache"
	"github.com/etnz/invest/date"
	"github.com/etnz/invest/eodhd"
	"github.com/etnz/invest/ibge"
	"github.com/etnz/invest/insee"
	"github.com/etnz/invest/statement"
	"github.com/etnz/invest/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "config", "Path to the configuration file (JSON), created with default values if missing")

// Commands lists the subcommands of the application.
var Commands = []subcommands.Command{
	&summaryCmd{},
	&positionsCmd{},
	&historyCmd{},
	&rentabilityCmd{},
	&assetCmd{},
	&watchCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "portfolio")
	}
}

// App is a portfolio loaded from a transaction export, with its market.
type App struct {
	Config    Config
	Log       zerolog.Logger
	File      string
	Portfolio *invest.Portfolio
}

// portfolioFlags are the flags shared by the commands that load a portfolio.
type portfolioFlags struct {
	file string
	date string
}

func (p *portfolioFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "f", "", "Transaction export to load (.csv with ';' or .txt with tabs). Defaults to the configured file.")
	f.StringVar(&p.date, "d", date.Today().String(), "Valuation date. See date formats in the usage.")
}

// open loads the configuration, the market and the portfolio.
func (p *portfolioFlags) open(ctx context.Context) (*App, error) {
	on, err := date.Parse(p.date)
	if err != nil {
		return nil, fmt.Errorf("error parsing date: %w", err)
	}
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	app := &App{
		Config: cfg,
		Log:    NewLogger(os.Stderr, cfg.LogLevel),
		File:   p.file,
	}
	if app.File == "" {
		app.File = cfg.DefaultFile
	}
	if err := app.Load(ctx, on, app.status); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) status(msg string) { a.Log.Info().Msg(msg) }

// Load (re)builds the market and the portfolio from the transaction export, valued on a day.
func (a *App) Load(ctx context.Context, on date.Date, status func(string)) error {
	txs, err := statement.ReadFile(a.File)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return fmt.Errorf("no transaction in %q", a.File)
	}

	market, prices, err := a.market(ctx, on)
	if err != nil {
		return err
	}

	first := slices.MinFunc(txs, func(x, y invest.Transaction) int { return x.Date.Compare(y.Date) }).Date
	var benchmarks []*invest.Benchmark
	for _, name := range slices.Sorted(maps.Keys(a.Config.Benchmarks)) {
		status(fmt.Sprintf("Loading benchmark %s", name))
		b, err := invest.NewBenchmark(ctx, name, a.Config.Benchmarks[name], prices, date.Range{From: first, To: on})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.Log.Warn().Err(err).Str("benchmark", name).Msg("skipping benchmark")
			continue
		}
		benchmarks = append(benchmarks, b)
	}

	p := invest.New(invest.Config{Status: status}, market, a.Log, benchmarks...)
	if err := p.Load(ctx, txs, on); err != nil {
		return err
	}
	a.Portfolio = p
	return nil
}

// sources returns the price and currency pair sources of the configured provider.
func (a *App) sources() (prices, pairs invest.HistorySource, err error) {
	dir := filepath.Join(a.Config.CacheDir, a.Config.Provider)
	client := cache.NewClient(dir, date.Daily, a.Log)
	switch a.Config.Provider {
	case Yahoo:
		c := yahoo.New(client, a.Log)
		return c, c.Pairs(), nil
	case EODHD:
		c := eodhd.New(client, a.Config.EODHDKey, a.Log)
		return c, c.Pairs(), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown provider %q", invest.ErrInvalidInput, a.Config.Provider)
	}
}

// market wires the price, exchange and inflation sources.
func (a *App) market(ctx context.Context, on date.Date) (invest.Market, invest.HistorySource, error) {
	dir := a.Config.CacheDir
	prices, pairs, err := a.sources()
	if err != nil {
		return invest.Market{}, nil, err
	}

	ex, err := invest.NewExchange(a.Config.Currency, pairs, on, a.Log)
	if err != nil {
		return invest.Market{}, nil, err
	}

	cpi := invest.CPISources{
		"BR": ibge.New(cache.NewClient(filepath.Join(dir, "ibge"), date.Daily, a.Log), a.Log),
		"FR": insee.New(cache.NewClient(filepath.Join(dir, "insee"), date.Daily, a.Log), a.Log),
	}
	inf, err := invest.NewInflation(ctx, cpi, a.Config.Inflation, on)
	if err != nil {
		return invest.Market{}, nil, err
	}
	return invest.Market{History: prices, Exchange: ex, Inflation: inf}, prices, nil
}
