package invest

import (
	"context"
	"fmt"

	"github.com/etnz/invest/date"
)

// locations maps supported inflation indices to the location of their CPI.
var locations = map[string]string{
	"IPCA": "BR",
	"IPC":  "FR",
}

// Inflation is a consumer price index exposing period over period inflation rates.
type Inflation struct {
	index string
	cpi   *date.Series
	now   date.Date
}

// NewInflation fetches the CPI of a named index.
//
// now is the day used by AccumulatedSince, fixed for the lifetime of the
// Inflation.
func NewInflation(ctx context.Context, source CPISource, index string, now date.Date) (*Inflation, error) {
	location, ok := locations[index]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedIndex, index)
	}
	days, values, err := source.FetchCPI(ctx, location)
	if err != nil {
		return nil, unavailable(err, "cpi %s", index)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("cpi %s: %w: empty series", index, ErrDataUnavailable)
	}
	ptrs := make([]*float64, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	cpi, err := date.NewLinearSeries(days, ptrs, values[0], values[len(values)-1])
	if err != nil {
		return nil, fmt.Errorf("cpi %s: %w", index, err)
	}
	return &Inflation{index: index, cpi: cpi, now: now}, nil
}

// Index returns the name of the index.
func (i *Inflation) Index() string { return i.index }

// At returns the value of the index on a given day.
func (i *Inflation) At(day date.Date) float64 { return i.cpi.Query(day) }

// RateBetween returns the inflation from start to end, as a fraction (not annualized).
func (i *Inflation) RateBetween(start, end date.Date) float64 {
	s := i.cpi.Query(start)
	if s == 0 {
		return 0
	}
	return (i.cpi.Query(end) - s) / s
}

// AccumulatedSince returns the inflation from start to now.
func (i *Inflation) AccumulatedSince(start date.Date) float64 { return i.RateBetween(start, i.now) }
