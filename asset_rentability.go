package invest

import "github.com/etnz/invest/date"

// Window is a trailing period over which returns are measured.
type Window struct {
	Name   string
	Months int
}

// Days returns the length of the window, counting 30 days per month.
func (w Window) Days() int { return 30 * w.Months }

// Windows are the lookback windows of Asset.Rentability.
var Windows = []Window{
	{"1M", 1},
	{"2M", 2},
	{"6M", 6},
	{"1Y", 12},
	{"2Y", 24},
	{"5Y", 60},
	{"10Y", 120},
}

// WindowReturn holds the returns of an asset over a Window, in %.
type WindowReturn struct {
	Window
	Nominal float64
	// Real is the return above inflation.
	Real float64
	// RealWithDividends is the return above inflation, including the
	// dividends paid per share during the window.
	RealWithDividends float64
}

// Rentability returns the price returns of one share over every Windows
// ending on asOf.
//
// Returns of a window are 0 when there is no price at its start.
func (a *Asset) Rentability(asOf date.Date) []WindowReturn {
	end := a.PriceAt(asOf)
	res := make([]WindowReturn, 0, len(Windows))
	for _, w := range Windows {
		r := WindowReturn{Window: w}
		from := asOf.Add(-w.Days())
		start := a.PriceAt(from)
		if start != 0 {
			inf := 1.0
			if a.inflation != nil {
				inf += a.inflation.RateBetween(from, asOf)
			}
			div := a.divPerShare.Query(asOf) - a.divPerShare.Query(from)
			r.Nominal = 100 * (end - start) / start
			r.Real = 100 * (end/(start*inf) - 1)
			r.RealWithDividends = 100 * ((end+div)/(start*inf) - 1)
		}
		res = append(res, r)
	}
	return res
}
