package invest

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/invest/date"
)

// searchWindow is the number of samples searched around the nearest one when
// it is missing.
const searchWindow = 20

// Benchmark is a reference market index, like IBOV or SP500.
type Benchmark struct {
	name   string
	symbol string
	days   []date.Date
	closes []*float64
}

// NewBenchmark fetches the history of a benchmark index.
func NewBenchmark(ctx context.Context, name, symbol string, source HistorySource, r date.Range) (*Benchmark, error) {
	h, err := source.FetchHistory(ctx, symbol, r)
	if err != nil {
		return nil, unavailable(err, "benchmark %s", name)
	}
	if len(h.Days) != len(h.Closes) {
		return nil, fmt.Errorf("benchmark %s: %w: %d days for %d closes", name, ErrInvalidInput, len(h.Days), len(h.Closes))
	}
	return &Benchmark{name: name, symbol: symbol, days: h.Days, closes: h.Closes}, nil
}

// Name returns the display name of the benchmark.
func (b *Benchmark) Name() string { return b.name }

// Symbol returns the market symbol of the benchmark.
func (b *Benchmark) Symbol() string { return b.symbol }

// Price returns the last known close.
func (b *Benchmark) Price() float64 {
	for i := len(b.closes) - 1; i >= 0; i-- {
		if b.closes[i] != nil {
			return *b.closes[i]
		}
	}
	return 0
}

// nearest returns the index of the sample closest to d, the earliest on ties.
func (b *Benchmark) nearest(d date.Date) int {
	i, _ := slices.BinarySearchFunc(b.days, d, date.Date.Compare)
	switch {
	case i == 0:
		return 0
	case i == len(b.days):
		return i - 1
	case d.Sub(b.days[i-1]) <= b.days[i].Sub(d):
		return i - 1
	default:
		return i
	}
}

// PriceAt returns the close of the sample nearest to d.
//
// When that sample is missing, up to searchWindow samples around it are
// searched, earlier ones first. Beyond that the non missing sample nearest to
// d is used, whatever its distance. It is 0 when there is no close at all.
func (b *Benchmark) PriceAt(d date.Date) float64 {
	if len(b.days) == 0 {
		return 0
	}
	i := b.nearest(d)
	if b.closes[i] != nil {
		return *b.closes[i]
	}
	for k := 1; k < searchWindow; k++ {
		if j := i - k; j >= 0 && b.closes[j] != nil {
			return *b.closes[j]
		}
		if j := i + k; j < len(b.days) && b.closes[j] != nil {
			return *b.closes[j]
		}
	}

	best, dist := -1, 0
	for j, c := range b.closes {
		if c == nil {
			continue
		}
		dj := b.days[j].Sub(d)
		if dj < 0 {
			dj = -dj
		}
		if best < 0 || dj < dist {
			best, dist = j, dj
		}
	}
	if best < 0 {
		return 0
	}
	return *b.closes[best]
}
