package invest

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// lookback is how far before the first transaction histories are fetched, so
// that the longest rentability window has a start price.
const lookback = 10 * 12 * 31

// Market gathers the shared collaborators used to value assets.
type Market struct {
	History   HistorySource
	Exchange  *Exchange
	Inflation *Inflation
}

// AssetConfig identifies an asset.
type AssetConfig struct {
	Ticker string
	Type   AssetType
}

// ClosedRun is a holding period that ended with a zero quantity.
type ClosedRun struct {
	Start, End date.Date
	// Net is the cash flow of the run in the reference currency: proceeds
	// minus investments, that is the realized gain.
	Net decimal.Decimal
}

// row is a transaction normalized to the reference currency, split adjusted and signed.
type row struct {
	date     date.Date
	quantity decimal.Decimal
	total    decimal.Decimal
	runStart int // index of the first row of the holding run of this row.
}

// Asset is the position on a single ticker.
//
// It is built once from its transactions and the market histories, and then
// only queried. All queries are total: they return 0 for dates outside of the
// known history.
type Asset struct {
	ticker   string
	typ      AssetType
	symbol   string
	currency string

	rows     []row
	invested []decimal.Decimal // invested[i] is the sum of rows[:i] totals.
	closed   []ClosedRun

	quantity decimal.Decimal
	cps      decimal.Decimal
	start    date.Date

	qty         *date.Series
	price       *date.Series // in the quote currency.
	divAcc      *date.Series // position weighted, cumulated, in the reference currency.
	divPoint    *date.Series // per share amount of the last dividend, in the reference currency.
	divPerShare *date.Series // per share, cumulated, in the reference currency.

	rate      Rate
	foreign   bool // quoted in another currency than the reference.
	inflation *Inflation
	corrected bool // whether to correct invested amounts with inflation.

	warnings []error
}

// NewAsset builds the position of a ticker from its transactions.
//
// It fails with ErrDataUnavailable if the price history of the asset, or the
// exchange rate of its currency cannot be fetched or is empty.
func NewAsset(ctx context.Context, cfg AssetConfig, txs []Transaction, m Market, asOf date.Date, log zerolog.Logger) (*Asset, error) {
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: %s: no transactions", ErrInvalidInput, cfg.Ticker)
	}
	txs = Chronological(txs)
	a := &Asset{
		ticker:    cfg.Ticker,
		typ:       cfg.Type,
		symbol:    cfg.Type.Symbol(cfg.Ticker),
		inflation: m.Inflation,
	}
	log = log.With().Str("ticker", a.ticker).Logger()

	from := txs[0].Date
	if earliest := asOf.Add(-lookback); earliest.Before(from) {
		from = earliest
	}
	h, err := m.History.FetchHistory(ctx, a.symbol, date.Range{From: from, To: asOf})
	if err != nil {
		return nil, unavailable(err, "history of %s", a.symbol)
	}
	if len(h.Days) == 0 {
		return nil, fmt.Errorf("history of %s: %w: empty price series", a.symbol, ErrDataUnavailable)
	}
	if len(h.Days) != len(h.Closes) {
		return nil, fmt.Errorf("history of %s: %w: %w: %d days for %d closes", a.symbol, ErrDataUnavailable, ErrInvalidInput, len(h.Days), len(h.Closes))
	}

	a.currency = h.Currency
	if a.currency == "" {
		a.currency = m.Exchange.Reference()
	}
	a.rate, err = m.Exchange.Converter(ctx, a.currency)
	if err != nil {
		return nil, err
	}
	a.foreign = a.currency != m.Exchange.Reference()
	a.corrected = !a.foreign && m.Inflation != nil

	a.fold(txs, h.Splits)

	if err := a.buildPrices(h, asOf, log); err != nil {
		return nil, err
	}
	if err := a.buildDividends(h.Dividends); err != nil {
		return nil, err
	}
	return a, nil
}

// fold normalizes and walks the transactions, computing the cost basis and
// the holding runs.
func (a *Asset) fold(txs []Transaction, splits []Split) {
	a.rows = make([]row, len(txs))
	for i, tx := range txs {
		total := tx.Total
		if a.foreign {
			total = total.Mul(decimal.NewFromFloat(a.rate(tx.Date)))
		}
		a.rows[i] = row{date: tx.Date, quantity: tx.Quantity, total: total}
	}

	splits = slices.Clone(splits)
	slices.SortStableFunc(splits, func(x, y Split) int { return x.Date.Compare(y.Date) })
	for _, s := range splits {
		if s.Denominator == 0 {
			continue
		}
		num, den := decimal.NewFromInt(s.Numerator), decimal.NewFromInt(s.Denominator)
		for i := range a.rows {
			if a.rows[i].date.Before(s.Date) {
				a.rows[i].quantity = a.rows[i].quantity.Mul(num).Div(den).Truncate(0)
			}
		}
	}

	for i, tx := range txs {
		if tx.Action == Sell {
			a.rows[i].quantity = a.rows[i].quantity.Neg()
			a.rows[i].total = a.rows[i].total.Neg()
		}
	}

	var (
		qty, cost  decimal.Decimal
		runStart   int
		start      date.Date
		days       []date.Date
		quantities []float64
	)
	a.invested = make([]decimal.Decimal, len(a.rows)+1)
	for i := range a.rows {
		r := &a.rows[i]
		r.runStart = runStart
		a.invested[i+1] = a.invested[i].Add(r.total)

		if start.IsZero() && r.quantity.IsPositive() {
			start = r.date
		}
		if r.quantity.IsNegative() && qty.IsPositive() {
			// sales release the cost at the average cost per share.
			cost = cost.Mul(qty.Add(r.quantity)).Div(qty)
		} else {
			cost = cost.Add(r.total)
		}
		qty = qty.Add(r.quantity)
		if qty.IsZero() {
			a.closed = append(a.closed, ClosedRun{
				Start: a.rows[runStart].date,
				End:   r.date,
				Net:   a.invested[runStart].Sub(a.invested[i+1]),
			})
			cost = decimal.Zero
			start = date.Date{}
			runStart = i + 1
		}

		// same day rows collapse to the end of day quantity.
		if n := len(days); n > 0 && days[n-1] == r.date {
			quantities[n-1] = qty.InexactFloat64()
		} else {
			days = append(days, r.date)
			quantities = append(quantities, qty.InexactFloat64())
		}
	}

	a.quantity = qty
	a.start = start
	if qty.IsPositive() {
		a.cps = cost.Div(qty).Round(2)
	}
	// days are strictly increasing, this cannot fail.
	a.qty, _ = date.FromValues(days, quantities, 0, qty.InexactFloat64())
}

func (a *Asset) buildPrices(h *History, asOf date.Date, log zerolog.Logger) error {
	closes := date.ForwardFill(h.Closes)
	if len(closes) < 2 {
		w := fmt.Errorf("limited data available for %s", a.symbol)
		log.Warn().Msg(w.Error())
		a.warnings = append(a.warnings, w)
		a.price = date.Constant(closes[0])
	} else {
		var err error
		a.price, err = date.NewSeries(h.Days, h.Closes, 0, closes[len(closes)-1])
		if err != nil {
			return fmt.Errorf("history of %s: %w", a.symbol, err)
		}
	}

	last := h.Days[len(h.Days)-1]
	if last.Before(asOf.PreviousTradingDay()) {
		w := &StaleDataWarning{Symbol: a.symbol, Last: last, AsOf: asOf}
		log.Warn().Str("last", last.String()).Str("asof", asOf.String()).Msg("stale price data")
		a.warnings = append(a.warnings, w)
	}
	return nil
}

func (a *Asset) buildDividends(events []Dividend) error {
	events = slices.Clone(events)
	slices.SortStableFunc(events, func(x, y Dividend) int { return x.Date.Compare(y.Date) })

	var (
		days                 []date.Date
		acc, point, perShare []float64
		total, totalPerShare float64
	)
	for _, d := range events {
		amount := d.Amount * a.rate(d.Date)
		total += a.QuantityAt(d.Date) * amount
		totalPerShare += amount
		if n := len(days); n > 0 && days[n-1] == d.Date {
			// several payments on the same day.
			point[n-1] += amount
			acc[n-1], perShare[n-1] = total, totalPerShare
			continue
		}
		days = append(days, d.Date)
		acc = append(acc, total)
		point = append(point, amount)
		perShare = append(perShare, totalPerShare)
	}

	last := func(v []float64) float64 {
		if len(v) == 0 {
			return 0
		}
		return v[len(v)-1]
	}
	var err error
	if a.divAcc, err = date.FromValues(days, acc, 0, last(acc)); err != nil {
		return fmt.Errorf("dividends of %s: %w", a.symbol, err)
	}
	if a.divPoint, err = date.FromValues(days, point, 0, last(point)); err != nil {
		return fmt.Errorf("dividends of %s: %w", a.symbol, err)
	}
	if a.divPerShare, err = date.FromValues(days, perShare, 0, last(perShare)); err != nil {
		return fmt.Errorf("dividends of %s: %w", a.symbol, err)
	}
	return nil
}

// Ticker returns the ticker of the asset, as found in the transactions.
func (a *Asset) Ticker() string { return a.ticker }

// Symbol returns the market symbol of the asset.
func (a *Asset) Symbol() string { return a.symbol }

// Type returns the asset type.
func (a *Asset) Type() AssetType { return a.typ }

// Currency returns the quote currency of the asset.
func (a *Asset) Currency() string { return a.currency }

// Quantity returns the quantity held after the last transaction.
func (a *Asset) Quantity() decimal.Decimal { return a.quantity }

// CostPerShare returns the average cost of the current holding run, in the
// reference currency, rounded to 2 decimals. It is 0 when nothing is held.
func (a *Asset) CostPerShare() decimal.Decimal { return a.cps }

// StartDate returns the date of the first Buy of the current holding run, or
// the zero Date when nothing is held.
func (a *Asset) StartDate() date.Date { return a.start }

// FirstDate returns the date of the first transaction.
func (a *Asset) FirstDate() date.Date { return a.rows[0].date }

// ClosedRuns returns the holding runs that ended with a zero quantity.
func (a *Asset) ClosedRuns() []ClosedRun { return slices.Clone(a.closed) }

// Warnings returns the non fatal issues met while building the asset.
func (a *Asset) Warnings() []error { return slices.Clone(a.warnings) }

// Stale reports whether the price history of the asset is stale.
func (a *Asset) Stale() bool {
	for _, err := range a.warnings {
		var w *StaleDataWarning
		if errors.As(err, &w) {
			return true
		}
	}
	return false
}

// QuantityAt returns the quantity held at the end of a day.
func (a *Asset) QuantityAt(d date.Date) float64 { return a.qty.Query(d) }

// PriceAt returns the price of one share in the reference currency on a day.
func (a *Asset) PriceAt(d date.Date) float64 { return a.price.Query(d) * a.rate(d) }

// lastRow returns the index of the last row on or before d, or -1.
func (a *Asset) lastRow(d date.Date) int {
	i, found := slices.BinarySearchFunc(a.rows, d, func(r row, d date.Date) int { return r.date.Compare(d) })
	if found {
		// move to the last row of that day.
		for i+1 < len(a.rows) && a.rows[i+1].date == d {
			i++
		}
		return i
	}
	return i - 1
}

// Invested returns the sum of the transaction totals of the holding run
// containing d, up to d, in the reference currency.
//
// It is 0 when nothing is held on d.
func (a *Asset) Invested(d date.Date) float64 {
	k := a.lastRow(d)
	if k < 0 || a.QuantityAt(d) == 0 {
		return 0
	}
	return a.invested[k+1].Sub(a.invested[a.rows[k].runStart]).InexactFloat64()
}

// InvestedInflationCorrected is like Invested but each transaction total is
// corrected by the inflation from its date to d.
//
// The correction applies only to assets quoted in the reference currency:
// exchange rates already carry the inflation differential.
func (a *Asset) InvestedInflationCorrected(d date.Date) float64 {
	if !a.corrected {
		return a.Invested(d)
	}
	k := a.lastRow(d)
	if k < 0 || a.QuantityAt(d) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range a.rows[a.rows[k].runStart : k+1] {
		sum += r.total.InexactFloat64() * (1 + a.inflation.RateBetween(r.date, d))
	}
	return sum
}

// Dividends returns the dividends received up to d in the reference currency,
// valued at the exchange rate of their payment date.
//
// When accumulated is false it returns instead the per share amount of the
// last dividend paid on or before d.
func (a *Asset) Dividends(d date.Date, accumulated bool) float64 {
	if accumulated {
		return a.divAcc.Query(d)
	}
	return a.divPoint.Query(d)
}

// MarketValue returns the value of the position on d.
func (a *Asset) MarketValue(d date.Date) float64 { return a.PriceAt(d) * a.QuantityAt(d) }

// Net returns the unrealized gain of the position on d, based on the current
// cost per share.
func (a *Asset) Net(d date.Date) float64 {
	return (a.PriceAt(d) - a.cps.InexactFloat64()) * a.QuantityAt(d)
}

// PercentChange returns the price change on d relative to the cost per share, in %.
func (a *Asset) PercentChange(d date.Date) float64 {
	cps := a.cps.InexactFloat64()
	if cps == 0 {
		return 0
	}
	return 100 * (a.PriceAt(d)/cps - 1)
}

// AssetSummary is a snapshot of an asset on a given day.
type AssetSummary struct {
	Ticker   string
	Type     string
	Quantity float64
	Cost     float64 // cost per share
	Price    float64
	Net      float64
	Change   float64 // %
	Total    float64 // market value
	Income   float64 // accumulated dividends
}

// Summary returns the snapshot of the asset on d.
func (a *Asset) Summary(d date.Date) AssetSummary {
	return AssetSummary{
		Ticker:   a.ticker,
		Type:     a.typ.Tag,
		Quantity: a.QuantityAt(d),
		Cost:     a.cps.InexactFloat64(),
		Price:    a.PriceAt(d),
		Net:      a.Net(d),
		Change:   a.PercentChange(d),
		Total:    a.MarketValue(d),
		Income:   a.Dividends(d, true),
	}
}
