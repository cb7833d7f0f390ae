package date

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestSeries_Query(t *testing.T) {
	days := []Date{New(2021, 1, 10), New(2021, 1, 20), New(2021, 1, 30)}
	s, err := NewSeries(days, []*float64{ptr(1), ptr(2), ptr(3)}, -1, 99)
	require.NoError(t, err)

	testCases := []struct {
		name string
		on   Date
		want float64
	}{
		{"before first sample", New(2021, 1, 9), -1},
		{"on first sample", New(2021, 1, 10), 1},
		{"between samples", New(2021, 1, 19), 1},
		{"on a sample", New(2021, 1, 20), 2},
		{"on last sample", New(2021, 1, 30), 3},
		{"after last sample", New(2021, 1, 31), 99},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Query(tc.on))
		})
	}
}

func TestSeries_ForwardFill(t *testing.T) {
	days := []Date{New(2021, 1, 1), New(2021, 1, 2), New(2021, 1, 3)}
	s, err := NewSeries(days, []*float64{ptr(10), nil, ptr(12)}, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Query(New(2021, 1, 2)), "null midpoint is filled from the preceding value")

	s, err = NewSeries(days, []*float64{nil, ptr(5), nil}, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Query(New(2021, 1, 1)), "leading null is filled with 0")
	assert.Equal(t, 5.0, s.Query(New(2021, 1, 3)))
}

func TestSeries_Invalid(t *testing.T) {
	_, err := NewSeries([]Date{New(2021, 1, 2), New(2021, 1, 1)}, []*float64{ptr(1), ptr(2)}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewSeries([]Date{New(2021, 1, 1), New(2021, 1, 1)}, []*float64{ptr(1), ptr(2)}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput, "duplicated days")

	_, err = NewSeries([]Date{New(2021, 1, 1)}, []*float64{ptr(1), ptr(2)}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput, "length mismatch")
}

func TestSeries_Linear(t *testing.T) {
	days := []Date{New(2020, 1, 1), New(2020, 1, 11)}
	s, err := NewLinearSeries(days, []*float64{ptr(100), ptr(110)}, 100, 110)
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.Query(New(2019, 12, 1)))
	assert.InDelta(t, 105.0, s.Query(New(2020, 1, 6)), 1e-9)
	assert.Equal(t, 110.0, s.Query(New(2020, 1, 11)))
	assert.Equal(t, 110.0, s.Query(New(2021, 1, 1)))
}

func TestSeries_EmptyAndConstant(t *testing.T) {
	s, err := NewSeries(nil, nil, 7, 8)
	require.NoError(t, err)
	assert.Equal(t, 7.0, s.Query(Today()))
	_, _, ok := s.Last()
	assert.False(t, ok)

	c := Constant(3)
	assert.Equal(t, 3.0, c.Query(New(1990, 1, 1)))
	assert.Equal(t, 3.0, c.Query(New(2090, 1, 1)))
}

func TestSeries_Immutable(t *testing.T) {
	days := []Date{New(2021, 1, 1)}
	s, err := NewSeries(days, []*float64{ptr(1)}, 0, 1)
	require.NoError(t, err)
	days[0] = New(2030, 1, 1)
	assert.Equal(t, 1.0, s.Query(New(2021, 1, 1)))
}
