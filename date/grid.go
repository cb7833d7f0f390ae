package date

import (
	"math"
	"time"
)

// GridPoints is the approximate number of points returned by Grid.
const GridPoints = 30

// Grid returns about GridPoints evaluation days from start to end.
//
// The first day is start itself. Intermediate days are evenly spaced from a
// start shifted to the middle of the week, and the last day is end moved back
// to the previous friday if it falls on a weekend. Days are strictly
// increasing: points outside [start, end) are dropped.
func Grid(start, end Date) []Date {
	first := start
	step := int(math.RoundToEven(float64(end.Sub(start)) / GridPoints))
	if step < 1 {
		step = 1
	}

	switch start.Weekday() {
	case time.Saturday, time.Sunday:
		start = start.Add(-3)
	case time.Monday, time.Tuesday:
		start = start.Add(2)
	}

	candidates := []Date{first}
	for start.Before(end) {
		start = start.Add(step)
		candidates = append(candidates, start)
	}
	if len(candidates) > 1 {
		// the last stepped candidate is never before end.
		candidates = candidates[:len(candidates)-1]
	}

	last := end.TradingDay()
	days := make([]Date, 0, len(candidates)+1)
	for _, d := range candidates {
		if d.Before(first) || !d.Before(last) {
			continue
		}
		if len(days) > 0 && !d.After(days[len(days)-1]) {
			continue
		}
		days = append(days, d)
	}
	return append(days, last)
}
