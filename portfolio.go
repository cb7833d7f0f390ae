package invest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
)

// Config configures a Portfolio.
type Config struct {
	// Types is the registry of asset types, DefaultAssetTypes if nil.
	Types AssetTypes
	// Status receives human readable progress messages, if not nil.
	Status func(string)
}

// Portfolio aggregates the assets built from a transaction export.
//
// It owns no history of its own: Load rebuilds every asset from scratch.
type Portfolio struct {
	market     Market
	types      AssetTypes
	benchmarks []*Benchmark
	status     func(string)
	log        zerolog.Logger

	assets  map[string]*Asset
	tickers []string // sorted
	skipped map[string]error
	asOf    date.Date
	start   date.Date

	mu    sync.Mutex // guards cache
	cache map[int]*Rentability
}

// New returns an empty Portfolio valued on a Market and compared to benchmarks.
func New(cfg Config, market Market, log zerolog.Logger, benchmarks ...*Benchmark) *Portfolio {
	types := cfg.Types
	if types == nil {
		types = DefaultAssetTypes()
	}
	status := cfg.Status
	if status == nil {
		status = func(string) {}
	}
	return &Portfolio{
		market:     market,
		types:      types,
		benchmarks: benchmarks,
		status:     status,
		log:        log.With().Str("component", "portfolio").Logger(),
		assets:     make(map[string]*Asset),
		skipped:    make(map[string]error),
		cache:      make(map[int]*Rentability),
	}
}

// Load replaces the portfolio content with the assets built from txs, valued as of a given day.
//
// Tickers that cannot be built are skipped, and reported by Skipped. Load only
// fails if ctx is done.
func (p *Portfolio) Load(ctx context.Context, txs []Transaction, asOf date.Date) error {
	p.status("Loading transactions")
	p.mu.Lock()
	p.cache = make(map[int]*Rentability)
	p.mu.Unlock()

	p.assets = make(map[string]*Asset)
	p.skipped = make(map[string]error)
	p.tickers = nil
	p.asOf = asOf
	p.start = date.Date{}

	var invalid []Transaction
	valid := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			invalid = append(invalid, tx)
			p.skip(tx.Ticker, err)
			continue
		}
		valid = append(valid, tx)
	}

	groups := ByTicker(valid)
	for _, ticker := range slices.Sorted(maps.Keys(groups)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := p.skipped[ticker]; ok {
			continue
		}
		rows := groups[ticker]
		typ, err := p.types.Lookup(rows[0].Type)
		if err != nil {
			p.skip(ticker, err)
			continue
		}
		p.status(fmt.Sprintf("Loading %s", ticker))
		a, err := NewAsset(ctx, AssetConfig{Ticker: ticker, Type: typ}, rows, p.market, asOf, p.log)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			p.skip(ticker, err)
			continue
		}
		p.assets[ticker] = a
		p.tickers = append(p.tickers, ticker)
		if first := a.FirstDate(); p.start.IsZero() || first.Before(p.start) {
			p.start = first
		}
	}
	p.log.Info().Int("assets", len(p.assets)).Int("skipped", len(p.skipped)).Int("invalid", len(invalid)).Msg("portfolio loaded")
	return nil
}

func (p *Portfolio) skip(ticker string, err error) {
	p.log.Warn().Str("ticker", ticker).Err(err).Msg("skipping asset")
	p.skipped[ticker] = errors.Join(p.skipped[ticker], err)
}

// Skipped returns the tickers that could not be loaded, and why.
func (p *Portfolio) Skipped() map[string]error { return maps.Clone(p.skipped) }

// AsOf returns the valuation day of the last Load.
func (p *Portfolio) AsOf() date.Date { return p.asOf }

// Start returns the date of the first transaction.
func (p *Portfolio) Start() date.Date { return p.start }

// Market returns the market the portfolio is valued on.
func (p *Portfolio) Market() Market { return p.market }

// Benchmarks returns the benchmarks of the portfolio.
func (p *Portfolio) Benchmarks() []*Benchmark { return slices.Clone(p.benchmarks) }

// Tickers returns the sorted tickers of all loaded assets.
func (p *Portfolio) Tickers() []string { return slices.Clone(p.tickers) }

// Asset returns the asset of a ticker, or nil.
func (p *Portfolio) Asset(ticker string) *Asset { return p.assets[ticker] }

// Assets returns the loaded assets in ticker order.
func (p *Portfolio) Assets() []*Asset {
	res := make([]*Asset, 0, len(p.tickers))
	for _, t := range p.tickers {
		res = append(res, p.assets[t])
	}
	return res
}

// PositionsByType returns the assets held as of the valuation day, by type tag and ticker.
func (p *Portfolio) PositionsByType() map[string]map[string]*Asset {
	res := make(map[string]map[string]*Asset)
	for _, a := range p.Assets() {
		if a.QuantityAt(p.asOf) <= 0 {
			continue
		}
		tag := a.Type().Tag
		if res[tag] == nil {
			res[tag] = make(map[string]*Asset)
		}
		res[tag][a.Ticker()] = a
	}
	return res
}

// Grid returns the default evaluation days, from the first transaction to the valuation day.
func (p *Portfolio) Grid() []date.Date {
	if p.start.IsZero() {
		return nil
	}
	return date.Grid(p.start, p.asOf)
}

// Metric is a portfolio level quantity summed over assets.
type Metric int

const (
	Value             Metric = iota // market value
	Invested                        // capital invested in the current holding runs
	InvestedCorrected               // invested corrected by inflation
	Dividends                       // accumulated dividends
)

// Metrics lists all metrics.
var Metrics = []Metric{Value, Invested, InvestedCorrected, Dividends}

func (m Metric) String() string {
	switch m {
	case Value:
		return "Value"
	case Invested:
		return "Invested"
	case InvestedCorrected:
		return "Invested_corr"
	case Dividends:
		return "Div"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

func (m Metric) of(a *Asset, d date.Date) float64 {
	switch m {
	case Value:
		return a.MarketValue(d)
	case Invested:
		return a.Invested(d)
	case InvestedCorrected:
		return a.InvestedInflationCorrected(d)
	case Dividends:
		return a.Dividends(d, true)
	default:
		return 0
	}
}

// Series returns, for each metric, its sum over all assets on every day of the grid.
//
// All metrics are returned if none is given. Assets are summed in ticker
// order.
func (p *Portfolio) Series(grid []date.Date, metrics ...Metric) map[Metric][]float64 {
	return p.sum(grid, func(*Asset) bool { return true }, metrics...)
}

// sum is Series restricted to assets accepted by keep.
func (p *Portfolio) sum(grid []date.Date, keep func(*Asset) bool, metrics ...Metric) map[Metric][]float64 {
	if len(metrics) == 0 {
		metrics = Metrics
	}
	res := make(map[Metric][]float64, len(metrics))
	for _, m := range metrics {
		res[m] = make([]float64, len(grid))
	}
	for _, a := range p.Assets() {
		if !keep(a) {
			continue
		}
		for i, d := range grid {
			for _, m := range metrics {
				res[m][i] += m.of(a, d)
			}
		}
	}
	return res
}

// StockChart is the history of a single position over a grid.
type StockChart struct {
	Days   []date.Date
	Total  []float64 // market value
	Change []float64 // price change relative to the cost per share, in %
	Price  []float64
}

// StockCharts returns, per ticker, the history of the position on the grid
// days where it is held.
func (p *Portfolio) StockCharts(grid []date.Date) map[string]*StockChart {
	res := make(map[string]*StockChart)
	for _, d := range grid {
		for _, a := range p.Assets() {
			if a.QuantityAt(d) <= 0 {
				continue
			}
			c, ok := res[a.Ticker()]
			if !ok {
				c = new(StockChart)
				res[a.Ticker()] = c
			}
			c.Days = append(c.Days, d)
			c.Total = append(c.Total, a.MarketValue(d))
			c.Change = append(c.Change, a.PercentChange(d))
			c.Price = append(c.Price, a.PriceAt(d))
		}
	}
	return res
}
