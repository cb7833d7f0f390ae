package invest

import (
	"context"
	"fmt"

	"github.com/etnz/invest/date"
)

// Split holds the details of a stock split.
type Split struct {
	Date        date.Date
	Numerator   int64
	Denominator int64
}

// Dividend holds the details of a dividend payment.
type Dividend struct {
	Date   date.Date
	Amount float64 // Amount per share, in the quote currency.
}

// History is the daily history of a symbol as returned by a HistorySource.
//
// Days are strictly increasing and Closes has the same length. Closes may
// contain nil values for missing samples.
type History struct {
	Currency  string
	Days      []date.Date
	Closes    []*float64
	Dividends []Dividend
	Splits    []Split
}

// HistorySource fetches the history of a symbol (a ticker, a benchmark index
// or a currency pair "{FROM}{TO}").
//
// Results may be stale by up to one trading day.
type HistorySource interface {
	FetchHistory(ctx context.Context, symbol string, r date.Range) (*History, error)
}

// CPISource fetches the monthly consumer price index of a location.
//
// Days are the first day of each month.
type CPISource interface {
	FetchCPI(ctx context.Context, location string) ([]date.Date, []float64, error)
}

// CPISources dispatches CPI requests by location.
type CPISources map[string]CPISource

// FetchCPI implements CPISource.
func (s CPISources) FetchCPI(ctx context.Context, location string) ([]date.Date, []float64, error) {
	src, ok := s[location]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedLocation, location)
	}
	return src.FetchCPI(ctx, location)
}

// Within returns a copy of h restricted to the days in r. A zero bound is unbounded.
func (h *History) Within(r date.Range) *History {
	in := func(d date.Date) bool {
		return (r.From.IsZero() || !d.Before(r.From)) && (r.To.IsZero() || !d.After(r.To))
	}
	res := &History{Currency: h.Currency}
	for i, d := range h.Days {
		if in(d) {
			res.Days = append(res.Days, d)
			res.Closes = append(res.Closes, h.Closes[i])
		}
	}
	for _, d := range h.Dividends {
		if in(d.Date) {
			res.Dividends = append(res.Dividends, d)
		}
	}
	for _, s := range h.Splits {
		if in(s.Date) {
			res.Splits = append(res.Splits, s)
		}
	}
	return res
}
