package invest

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchange_Reference(t *testing.T) {
	src := newFakeSource()
	ex, err := NewExchange("EUR", src, asOf, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	for _, d := range []date.Date{{}, date.New(1900, 1, 1), asOf, asOf.Add(1000)} {
		r, err := ex.ToReference(ctx, "EUR", d)
		require.NoError(t, err)
		assert.Equal(t, 1.0, r)
		r, err = ex.FromReference(ctx, "EUR", d)
		require.NoError(t, err)
		assert.Equal(t, 1.0, r)
	}
	assert.Equal(t, 0, src.count("EUREUR"), "the reference is never fetched")
}

func TestExchange_Pair(t *testing.T) {
	d1, d2, d3 := date.New(2024, 1, 1), date.New(2024, 1, 10), date.New(2024, 1, 20)
	src := newFakeSource().add("USDEUR", &History{
		Currency: "EUR",
		Days:     []date.Date{d1, d2, d3},
		Closes:   []*float64{f(0.5), nil, f(0.8)},
	})
	ex, err := NewExchange("EUR", src, asOf, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	testCases := []struct {
		on   date.Date
		want float64
	}{
		{d1.Add(-1), 0},
		{d1, 0.5},
		{d2, 0.5},
		{d3.Add(-1), 0.5},
		{d3, 0.8},
		{asOf, 0.8},
	}
	for _, tc := range testCases {
		got, err := ex.ToReference(ctx, "USD", tc.on)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "on %s", tc.on)
	}

	inv, err := ex.FromReference(ctx, "USD", d1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, inv)
	inv, err = ex.FromReference(ctx, "USD", d1.Add(-1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv, "unknown rates stay total")

	assert.Equal(t, 1, src.count("USDEUR"))
	assert.Equal(t, asOf, src.requested("USDEUR").To, "rates are fetched up to the valuation day")
	assert.Equal(t, asOf, ex.AsOf())
}

func TestExchange_Unavailable(t *testing.T) {
	src := newFakeSource().
		fail("USDEUR", errors.New("boom")).
		add("GBPEUR", &History{Currency: "EUR"})
	ex, err := NewExchange("EUR", src, asOf, zerolog.Nop())
	require.NoError(t, err)

	_, err = ex.ToReference(context.Background(), "USD", asOf)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	_, err = ex.Converter(context.Background(), "GBP")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestNewExchange_UnknownCurrency(t *testing.T) {
	_, err := NewExchange("ZZZ", newFakeSource(), asOf, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
