package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/etnz/invest"
	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = date.New(2025, time.September, 12)

type history map[string]*invest.History

func (h history) FetchHistory(ctx context.Context, symbol string, r date.Range) (*invest.History, error) {
	if v, ok := h[symbol]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unknown symbol %q", symbol)
}

func price(v float64) *float64 { return &v }

// acme is bought 10 at 10 USD, half of it sold at 12, and quotes 15 on asOf.
func acme(t *testing.T) *invest.Asset {
	t.Helper()
	src := history{
		"ACME": {
			Currency:  "USD",
			Days:      []date.Date{date.New(2024, time.January, 2), asOf},
			Closes:    []*float64{price(10), price(15)},
			Dividends: []invest.Dividend{{Date: date.New(2025, time.June, 2), Amount: 1}},
		},
	}
	ex, err := invest.NewExchange("USD", src, asOf, zerolog.Nop())
	require.NoError(t, err)
	txs := []invest.Transaction{
		{Date: date.New(2024, time.January, 2), Action: invest.Buy, Quantity: decimal.NewFromInt(10), Total: decimal.NewFromInt(100), Ticker: "ACME", Type: "US"},
		{Date: date.New(2024, time.March, 1), Action: invest.Sell, Quantity: decimal.NewFromInt(5), Total: decimal.NewFromInt(60), Ticker: "ACME", Type: "US"},
	}
	a, err := invest.NewAsset(context.Background(), invest.AssetConfig{Ticker: "ACME", Type: invest.StockUS}, txs,
		invest.Market{History: src, Exchange: ex}, asOf, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.56", Money(1234.56, "USD"))
	assert.Equal(t, "R$1.234,56", Money(1234.56, "BRL"))
	assert.Equal(t, "12.50 XYZ", Money(12.5, "XYZ"))
	assert.Equal(t, "+$3.00", SignedMoney(3, "USD"))
	assert.Equal(t, "-", SignedMoney(0.001, "USD"))
	assert.Equal(t, "-", SignedPercent(0))
	assert.Equal(t, "+1.50%", SignedPercent(1.5))
	assert.Equal(t, "-2.25%", SignedPercent(-2.25))
	assert.Equal(t, "12.00%", Percent(12))
	assert.Equal(t, "2.5", Quantity(2.5))
	assert.Equal(t, "100", Quantity(100))
}

func TestOverviewMarkdown(t *testing.T) {
	o := &invest.Overview{
		Invested: 1000,
		Value:    1250,
		Net:      250,
		Income:   12,
		Nominal:  []invest.PeriodReturn{{Label: "1M", Months: 1, Value: 2}, {Label: "Total", Months: 20, Value: 25}},
		Real:     []invest.PeriodReturn{{Label: "1M", Months: 1, Value: 1.5}, {Label: "Total", Months: 20, Value: 10}},
	}
	got := OverviewMarkdown(o, asOf, "USD", "IPCA")
	assert.Contains(t, got, "# Portfolio on 2025-09-12")
	assert.Contains(t, got, "$1,250.00")
	assert.Contains(t, got, "+$250.00")
	assert.Contains(t, got, "Real (IPCA)")
	assert.Contains(t, got, "+25.00%")
	assert.Contains(t, got, "+1.50%")
}

func TestPositionsMarkdown(t *testing.T) {
	a := acme(t)
	positions := map[string]map[string]*invest.Asset{"US": {"ACME": a}}
	skipped := map[string]error{"GONE": errors.New("history of GONE: data unavailable")}

	got := PositionsMarkdown(positions, skipped, asOf, "USD")
	assert.Contains(t, got, "## US")
	assert.Contains(t, got, "ACME")
	assert.Contains(t, got, "$10.00", "cost per share")
	assert.Contains(t, got, "$75.00", "total")
	assert.Contains(t, got, "+$25.00", "net")
	assert.Contains(t, got, "+50.00%", "change")
	assert.Contains(t, got, "## Skipped")
	assert.Contains(t, got, "GONE: history of GONE")

	assert.Contains(t, PositionsMarkdown(nil, nil, asOf, "USD"), "No position held.")
}

func TestSeriesMarkdown(t *testing.T) {
	days := []date.Date{date.New(2025, time.January, 2), date.New(2025, time.January, 3)}
	got := SeriesMarkdown("Values", days, []string{"B", "A "}, map[string][]float64{
		"A ": {1, 2},
		"B":  {3},
	}, Percent)

	lines := strings.Split(got, "\n")
	assert.Equal(t, "# Values", lines[0])
	assert.Contains(t, got, "2025-01-02")
	assert.Contains(t, got, "3.00%")
	assert.Contains(t, got, "2.00%")
	assert.Less(t, strings.Index(got, "B"), strings.Index(got, "A"), "columns follow labels")
}

func TestRentabilityLabels(t *testing.T) {
	r := &invest.Rentability{
		Index:      "IPCA",
		Nominal:    map[string][]float64{"": nil, "US": nil, "BR": nil},
		Real:       map[string][]float64{"": nil, "US": nil, "BR": nil},
		Benchmarks: map[string][]float64{"SP500": nil, "IBOV": nil},
		Inflation:  []float64{},
	}
	assert.Equal(t, []string{
		"RENT ", "RENT BR", "RENT US",
		"RENT IPCA ", "RENT IPCA BR", "RENT IPCA US",
		"IBOV", "SP500",
		"IPCA",
	}, RentabilityLabels(r))
	for _, l := range RentabilityLabels(r) {
		_, ok := r.Labelled()[l]
		assert.True(t, ok, l)
	}
}

func TestAssetMarkdown(t *testing.T) {
	got := AssetMarkdown(acme(t), asOf, "USD")
	assert.Contains(t, got, "# ACME (US) on 2025-09-12")
	assert.Contains(t, got, "Holding since")
	assert.Contains(t, got, "2024-01-02")
	for _, w := range invest.Windows {
		assert.Contains(t, got, w.Name)
	}
	assert.NotContains(t, got, "## Closed positions")
}

func TestStockChartsMarkdown(t *testing.T) {
	days := []date.Date{date.New(2025, time.January, 2), date.New(2025, time.January, 3)}
	charts := map[string]*invest.StockChart{
		"ACME": {Days: days[1:], Total: []float64{42}},
	}
	got := StockChartsMarkdown(days, charts, "USD")
	assert.Contains(t, got, "ACME")
	assert.Contains(t, got, "$42.00")
	assert.Equal(t, 1, strings.Count(got, "$"))
}
