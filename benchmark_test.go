package invest

import (
	"context"
	"testing"

	"github.com/etnz/invest/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBenchmark(t *testing.T, days []date.Date, closes []*float64) *Benchmark {
	t.Helper()
	src := newFakeSource().add("^BVSP", &History{Currency: "BRL", Days: days, Closes: closes})
	b, err := NewBenchmark(context.Background(), "IBOV", "^BVSP", src, date.Range{To: asOf})
	require.NoError(t, err)
	return b
}

func TestBenchmark_PriceAt(t *testing.T) {
	d := date.New(2024, 1, 1)
	days := []date.Date{d, d.Add(10), d.Add(20), d.Add(30)}
	b := newBenchmark(t, days, []*float64{f(1), f(2), nil, f(4)})

	assert.Equal(t, "IBOV", b.Name())
	assert.Equal(t, "^BVSP", b.Symbol())
	testCases := []struct {
		name string
		on   date.Date
		want float64
	}{
		{"before", d.Add(-100), 1},
		{"exact", d.Add(10), 2},
		{"nearest earlier", d.Add(14), 2},
		{"tie picks the earlier", d.Add(5), 1},
		{"nearest later", d.Add(6), 2},
		{"missing searches backward first", d.Add(20), 2},
		{"after", d.Add(100), 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, b.PriceAt(tc.on))
		})
	}
	assert.Equal(t, 4.0, b.Price())
}

func TestBenchmark_FarFallback(t *testing.T) {
	d := date.New(2024, 1, 1)
	series := func(n int, known map[int]float64) ([]date.Date, []*float64) {
		var days []date.Date
		var closes []*float64
		for i := range n {
			days = append(days, d.Add(i))
			var c *float64
			if v, ok := known[i]; ok {
				c = f(v)
			}
			closes = append(closes, c)
		}
		return days, closes
	}

	// 40 samples before, 15 after.
	days, closes := series(60, map[int]float64{0: 10, 55: 20})
	b := newBenchmark(t, days, closes)
	assert.Equal(t, 20.0, b.PriceAt(d.Add(40)), "within the search window")

	// 40 samples before, 25 after.
	days, closes = series(80, map[int]float64{0: 10, 65: 30})
	b = newBenchmark(t, days, closes)
	assert.Equal(t, 30.0, b.PriceAt(d.Add(40)), "nearest beyond the search window")
}

func TestBenchmark_Empty(t *testing.T) {
	b := newBenchmark(t, nil, nil)
	assert.Equal(t, 0.0, b.PriceAt(asOf))
	assert.Equal(t, 0.0, b.Price())

	b = newBenchmark(t, []date.Date{asOf}, []*float64{nil})
	assert.Equal(t, 0.0, b.PriceAt(asOf))
}
