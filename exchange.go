package invest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rhymond/go-money"
	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
)

// Rate is a total function returning a conversion rate at a given day.
type Rate func(date.Date) float64

// one is the rate of the reference currency to itself.
func one(date.Date) float64 { return 1 }

// Exchange converts amounts in any currency to a single reference currency.
//
// Currency pairs are fetched on first use, up to the valuation day, and kept
// for the lifetime of the Exchange. It is safe for concurrent use.
type Exchange struct {
	reference string
	pairs     HistorySource
	asOf      date.Date
	log       zerolog.Logger

	mu     sync.Mutex
	series map[string]*date.Series // by pair "{FROM}{TO}"
}

// NewExchange returns an Exchange to the reference currency, fetching pairs
// from a HistorySource up to asOf.
func NewExchange(reference string, pairs HistorySource, asOf date.Date, log zerolog.Logger) (*Exchange, error) {
	if money.GetCurrency(reference) == nil {
		return nil, fmt.Errorf("%w: unknown reference currency %q", ErrInvalidInput, reference)
	}
	return &Exchange{
		reference: reference,
		pairs:     pairs,
		asOf:      asOf,
		log:       log.With().Str("component", "exchange").Logger(),
		series:    make(map[string]*date.Series),
	}, nil
}

// Reference returns the reference currency code.
func (e *Exchange) Reference() string { return e.reference }

// AsOf returns the last day of the fetched rates.
func (e *Exchange) AsOf() date.Date { return e.asOf }

// pair returns the memoized series of the currency to the reference, fetching it on first use.
func (e *Exchange) pair(ctx context.Context, currency string) (*date.Series, error) {
	name := currency + e.reference

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.series[name]; ok {
		return s, nil
	}

	e.log.Debug().Str("pair", name).Msg("fetching exchange rates")
	h, err := e.pairs.FetchHistory(ctx, name, date.Range{To: e.asOf})
	if err != nil {
		return nil, unavailable(err, "exchange rate %s", name)
	}
	if len(h.Days) == 0 {
		return nil, fmt.Errorf("exchange rate %s: %w: empty series", name, ErrDataUnavailable)
	}
	closes := date.ForwardFill(h.Closes)
	s, err := date.NewSeries(h.Days, h.Closes, 0, closes[len(closes)-1])
	if err != nil {
		return nil, fmt.Errorf("exchange rate %s: %w", name, err)
	}
	e.series[name] = s
	return s, nil
}

// Converter returns the rate of currency to the reference currency.
func (e *Exchange) Converter(ctx context.Context, currency string) (Rate, error) {
	if currency == e.reference || currency == "" {
		return one, nil
	}
	s, err := e.pair(ctx, currency)
	if err != nil {
		return nil, err
	}
	return s.Query, nil
}

// ToReference returns the value of 1 unit of currency in the reference currency on a given day.
func (e *Exchange) ToReference(ctx context.Context, currency string, day date.Date) (float64, error) {
	rate, err := e.Converter(ctx, currency)
	if err != nil {
		return 0, err
	}
	return rate(day), nil
}

// FromReference returns the value of 1 unit of the reference currency in currency on a given day.
//
// It is 0 when the rate to the reference is unknown (0) on that day.
func (e *Exchange) FromReference(ctx context.Context, currency string, day date.Date) (float64, error) {
	r, err := e.ToReference(ctx, currency, day)
	if err != nil || r == 0 {
		return 0, err
	}
	return 1 / r, nil
}
