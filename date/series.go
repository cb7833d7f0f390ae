package date

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidInput reports a malformed series or transaction input.
var ErrInvalidInput = errors.New("invalid input")

// Interpolation is the way a Series computes values between two samples.
type Interpolation int

const (
	// Previous returns the value of the most recent sample at or before the query day.
	Previous Interpolation = iota
	// Linear interpolates between the two samples surrounding the query day.
	Linear
)

// Series is an immutable, chronologically sorted and irregularly sampled
// scalar series.
//
// Days before the first sample return the "before" fill value, days after the
// last sample return the "after" fill value.
type Series struct {
	days   []Date
	values []float64
	before float64
	after  float64
	kind   Interpolation
}

// NewSeries builds a step Series (previous-value interpolation).
//
// days must be strictly increasing and have the same length as values. Nil
// values are forward-filled with the last valid value, or 0 if there was none
// yet.
func NewSeries(days []Date, values []*float64, before, after float64) (*Series, error) {
	return build(days, values, before, after, Previous)
}

// NewLinearSeries is like NewSeries but interpolates linearly between samples.
func NewLinearSeries(days []Date, values []*float64, before, after float64) (*Series, error) {
	return build(days, values, before, after, Linear)
}

// FromValues builds a step series from non nullable values.
func FromValues(days []Date, values []float64, before, after float64) (*Series, error) {
	ptrs := make([]*float64, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	return NewSeries(days, ptrs, before, after)
}

// Constant returns a Series that evaluates to v on every day.
func Constant(v float64) *Series { return &Series{before: v, after: v} }

func build(days []Date, values []*float64, before, after float64, kind Interpolation) (*Series, error) {
	if len(days) != len(values) {
		return nil, fmt.Errorf("%w: %d days for %d values", ErrInvalidInput, len(days), len(values))
	}
	for i := 1; i < len(days); i++ {
		if !days[i].After(days[i-1]) {
			return nil, fmt.Errorf("%w: days not strictly increasing at %s", ErrInvalidInput, days[i])
		}
	}
	s := &Series{
		days:   slices.Clone(days),
		values: ForwardFill(values),
		before: before,
		after:  after,
		kind:   kind,
	}
	return s, nil
}

// ForwardFill replaces nil values by the last valid one (0 if none yet).
func ForwardFill(values []*float64) []float64 {
	filled := make([]float64, len(values))
	last := 0.0
	for i, v := range values {
		if v != nil {
			last = *v
		}
		filled[i] = last
	}
	return filled
}

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.days) }

// First returns the first sample, ok is false for an empty series.
func (s *Series) First() (day Date, value float64, ok bool) {
	if len(s.days) == 0 {
		return Date{}, 0, false
	}
	return s.days[0], s.values[0], true
}

// Last returns the last sample, ok is false for an empty series.
func (s *Series) Last() (day Date, value float64, ok bool) {
	last := len(s.days) - 1
	if last < 0 {
		return Date{}, 0, false
	}
	return s.days[last], s.values[last], true
}

// Query returns the value of the series on a given day.
func (s *Series) Query(day Date) float64 {
	n := len(s.days)
	if n == 0 || day.Before(s.days[0]) {
		return s.before
	}
	if day.After(s.days[n-1]) {
		return s.after
	}
	i, found := slices.BinarySearchFunc(s.days, day, Date.Compare)
	if found {
		return s.values[i]
	}
	// days[i-1] < day < days[i], and i is in [1, n-1].
	if s.kind == Linear {
		x0, x1 := s.days[i-1], s.days[i]
		y0, y1 := s.values[i-1], s.values[i]
		return y0 + (y1-y0)*float64(day.Sub(x0))/float64(x1.Sub(x0))
	}
	return s.values[i-1]
}
