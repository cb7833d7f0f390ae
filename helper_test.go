package invest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// asOf is the valuation day used in tests, a friday.
var asOf = date.New(2025, 9, 12)

func f(v float64) *float64 { return &v }

// fakeSource is an in memory HistorySource.
type fakeSource struct {
	mu        sync.Mutex
	histories map[string]*History
	errs      map[string]error
	calls     map[string]int
	ranges    map[string]date.Range // last requested range
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		histories: make(map[string]*History),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
		ranges:    make(map[string]date.Range),
	}
}

func (s *fakeSource) add(symbol string, h *History) *fakeSource {
	s.histories[symbol] = h
	return s
}

func (s *fakeSource) fail(symbol string, err error) *fakeSource {
	s.errs[symbol] = err
	return s
}

func (s *fakeSource) count(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[symbol]
}

func (s *fakeSource) requested(symbol string) date.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranges[symbol]
}

func (s *fakeSource) FetchHistory(ctx context.Context, symbol string, r date.Range) (*History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[symbol]++
	s.ranges[symbol] = r
	if err, ok := s.errs[symbol]; ok {
		return nil, err
	}
	h, ok := s.histories[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %q", symbol)
	}
	return h, nil
}

// hist returns a history with one close per day.
func hist(currency string, days []date.Date, closes ...float64) *History {
	h := &History{Currency: currency, Days: days}
	for _, c := range closes {
		h.Closes = append(h.Closes, f(c))
	}
	return h
}

// flat returns a history with a constant price from a day up to asOf.
func flat(currency string, from date.Date, price float64) *History {
	return hist(currency, []date.Date{from, asOf}, price, price)
}

// fakeCPI is an in memory CPISource.
type fakeCPI struct {
	days   []date.Date
	values []float64
	err    error
	calls  int
}

func (c *fakeCPI) FetchCPI(ctx context.Context, location string) ([]date.Date, []float64, error) {
	c.calls++
	return c.days, c.values, c.err
}

// noInflation returns an Inflation with a constant index.
func noInflation(t *testing.T) *Inflation {
	t.Helper()
	src := &fakeCPI{days: []date.Date{date.New(2000, 1, 1), date.New(2030, 1, 1)}, values: []float64{100, 100}}
	inf, err := NewInflation(context.Background(), src, "IPCA", asOf)
	require.NoError(t, err)
	return inf
}

// newMarket returns a Market in the reference currency, with no inflation.
func newMarket(t *testing.T, src *fakeSource, reference string) Market {
	t.Helper()
	ex, err := NewExchange(reference, src, asOf, zerolog.Nop())
	require.NoError(t, err)
	return Market{History: src, Exchange: ex, Inflation: noInflation(t)}
}

func tx(d date.Date, action Action, ticker string, qty, total float64) Transaction {
	return Transaction{
		Date:     d,
		Action:   action,
		Quantity: decimal.NewFromFloat(qty),
		Total:    decimal.NewFromFloat(total),
		Ticker:   ticker,
		Type:     StockUS.Tag,
	}
}

func buy(d date.Date, ticker string, qty, total float64) Transaction {
	return tx(d, Buy, ticker, qty, total)
}

func sell(d date.Date, ticker string, qty, total float64) Transaction {
	return tx(d, Sell, ticker, qty, total)
}

// newAsset builds a US asset, failing the test on error.
func newAsset(t *testing.T, m Market, ticker string, txs ...Transaction) *Asset {
	t.Helper()
	a, err := NewAsset(context.Background(), AssetConfig{Ticker: ticker, Type: StockUS}, txs, m, asOf, zerolog.Nop())
	require.NoError(t, err)
	return a
}

// signed returns the quantity of tx with the sign of its action.
func signed(tx Transaction) decimal.Decimal {
	if tx.Action == Sell {
		return tx.Quantity.Neg()
	}
	return tx.Quantity
}
