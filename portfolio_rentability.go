package invest

import (
	"fmt"
	"math"
	"slices"

	"github.com/etnz/invest/date"
)

// daysPerMonth is the average length of a month.
const daysPerMonth = 365.0 / 12

// Rentability holds the portfolio returns over a lookback window, on every
// day of a grid, in %.
//
// Returns are computed from the portfolio level sums of value, dividends and
// invested capital, and rebased to 0 on the first day with some capital
// invested.
type Rentability struct {
	Months int
	Start  date.Date
	Days   []date.Date
	Index  string // inflation index name

	// Nominal and Real returns by asset type tag, "" for the whole portfolio.
	Nominal map[string][]float64
	Real    map[string][]float64
	// Benchmarks returns relative to the window start, by benchmark name.
	Benchmarks map[string][]float64
	// Inflation accumulated since the window start.
	Inflation []float64
}

// Labelled returns all series by label: "RENT <type>" and "RENT <index>
// <type>" for returns, benchmark names, and the inflation index name.
func (r *Rentability) Labelled() map[string][]float64 {
	res := make(map[string][]float64)
	for tag, v := range r.Nominal {
		res["RENT "+tag] = v
	}
	for tag, v := range r.Real {
		res["RENT "+r.Index+" "+tag] = v
	}
	for name, v := range r.Benchmarks {
		res[name] = v
	}
	if r.Inflation != nil {
		res[r.Index] = r.Inflation
	}
	return res
}

// Last returns the last nominal and real returns of a subset.
func (r *Rentability) Last(tag string) (nominal, adjusted float64) {
	last := func(v []float64) float64 {
		if len(v) == 0 {
			return 0
		}
		return v[len(v)-1]
	}
	return last(r.Nominal[tag]), last(r.Real[tag])
}

// MonthsSinceStart returns the number of whole months from the first transaction to the valuation day.
func (p *Portfolio) MonthsSinceStart() int {
	return int(float64(p.asOf.Sub(p.start)) / daysPerMonth)
}

// Rentability returns the portfolio returns over the last months, 0 meaning
// since the first transaction.
//
// Results are memoized until the next Load.
func (p *Portfolio) Rentability(months int) (*Rentability, error) {
	if len(p.assets) == 0 {
		return nil, fmt.Errorf("rentability: %w: no asset loaded", ErrDataUnavailable)
	}
	if months < 0 {
		return nil, fmt.Errorf("rentability: %w: negative lookback %d", ErrInvalidInput, months)
	}
	if since := p.MonthsSinceStart(); months == 0 || months > since {
		months = since
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.cache[months]; ok {
		return r, nil
	}
	if months == p.MonthsSinceStart() {
		p.status("Calculating total rentability")
	} else {
		p.status(fmt.Sprintf("Calculating rentability for %d months", months))
	}

	start := p.asOf.Add(-int(math.Round(float64(months) * daysPerMonth)))
	grid := date.Grid(start, p.asOf)
	r := &Rentability{
		Months:     months,
		Start:      start,
		Days:       grid,
		Nominal:    make(map[string][]float64),
		Real:       make(map[string][]float64),
		Benchmarks: make(map[string][]float64),
	}

	for _, b := range p.benchmarks {
		r.Benchmarks[b.Name()] = relative(grid, b.PriceAt)
	}
	if inf := p.market.Inflation; inf != nil {
		r.Index = inf.Index()
		r.Inflation = make([]float64, len(grid))
		for i, d := range grid {
			r.Inflation[i] = 100 * inf.RateBetween(start, d)
		}
	}

	subsets := []string{""}
	for _, a := range p.Assets() {
		if tag := a.Type().Tag; !slices.Contains(subsets, tag) {
			subsets = append(subsets, tag)
		}
	}
	for _, tag := range subsets {
		keep := func(a *Asset) bool { return tag == "" || a.Type().Tag == tag }
		sums := p.sum(grid, keep)
		r.Nominal[tag], r.Real[tag] = returns(sums)
	}

	p.cache[months] = r
	return r, nil
}

// relative returns the variation of price on each day relative to the first one, in %.
func relative(grid []date.Date, price func(date.Date) float64) []float64 {
	res := make([]float64, len(grid))
	if len(grid) == 0 {
		return res
	}
	p0 := price(grid[0])
	if p0 == 0 {
		return res
	}
	for i, d := range grid {
		res[i] = 100 * (price(d) - p0) / p0
	}
	return res
}

// returns computes the nominal and inflation corrected returns from portfolio sums.
func returns(sums map[Metric][]float64) (nominal, adjusted []float64) {
	value, div := sums[Value], sums[Dividends]
	invested, corrected := sums[Invested], sums[InvestedCorrected]
	nominal = make([]float64, len(value))
	adjusted = make([]float64, len(value))

	var init, initReal float64
	first := true
	for i := range value {
		if invested[i] <= 0 {
			continue
		}
		gain := value[i] + div[i]
		if first {
			init = gain/invested[i] - 1
			initReal = ratio(gain, corrected[i]) - 1
			first = false
		}
		nominal[i] = 100 * (gain/invested[i] - 1 - init)
		adjusted[i] = 100 * (ratio(gain, corrected[i]) - 1 - initReal)
	}
	return nominal, adjusted
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// PeriodReturn is a labelled return, in %.
type PeriodReturn struct {
	Label  string
	Months int
	Value  float64
}

// Overview is the headline view of the portfolio on its valuation day.
type Overview struct {
	Invested float64
	Value    float64
	Net      float64
	Income   float64
	Nominal  []PeriodReturn
	Real     []PeriodReturn
}

// Overview returns the current totals and the nominal and real returns over
// 1 month, 6 months, 1 year, 2 years and since the start.
func (p *Portfolio) Overview() (*Overview, error) {
	grid := p.Grid()
	if len(grid) == 0 {
		return nil, fmt.Errorf("overview: %w: no asset loaded", ErrDataUnavailable)
	}
	sums := p.Series(grid)
	last := len(grid) - 1
	o := &Overview{
		Invested: sums[Invested][last],
		Value:    sums[Value][last],
		Income:   sums[Dividends][last],
	}
	o.Net = o.Value - o.Invested

	periods := []struct {
		label  string
		months int
	}{
		{"1M", 1},
		{"6M", 6},
		{"1A", 12},
		{"2A", 24},
		{"Total", p.MonthsSinceStart()},
	}
	for _, period := range periods {
		r, err := p.Rentability(period.months)
		if err != nil {
			return nil, err
		}
		nominal, adjusted := r.Last("")
		o.Nominal = append(o.Nominal, PeriodReturn{period.label, r.Months, nominal})
		o.Real = append(o.Real, PeriodReturn{period.label, r.Months, adjusted})
	}
	return o, nil
}
