package renderer

import (
	"bytes"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/invest"
	"github.com/etnz/invest/date"
	md "github.com/nao1215/markdown"
)

// SeriesMarkdown renders labelled series sharing the same days as a table,
// one row per day and one column per label, in the order of labels.
func SeriesMarkdown(title string, days []date.Date, labels []string, series map[string][]float64, format func(float64) string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	if title != "" {
		doc.H1(title)
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft},
		Header:    []string{"Date"},
	}
	for _, l := range labels {
		table.Alignment = append(table.Alignment, md.AlignRight)
		table.Header = append(table.Header, strings.TrimSpace(l))
	}
	for i, d := range days {
		row := []string{d.String()}
		for _, l := range labels {
			cell := ""
			if v := series[l]; i < len(v) {
				cell = format(v[i])
			}
			row = append(row, cell)
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)
	return doc.String()
}

// HistoryMarkdown renders the portfolio totals on a grid.
func HistoryMarkdown(days []date.Date, sums map[invest.Metric][]float64, currency string) string {
	series := make(map[string][]float64, len(sums))
	var labels []string
	for _, m := range invest.Metrics {
		if v, ok := sums[m]; ok {
			labels = append(labels, m.String())
			series[m.String()] = v
		}
	}
	return SeriesMarkdown("History", days, labels, series, func(v float64) string { return Money(v, currency) })
}

// RentabilityLabels returns the labels of r in display order: nominal returns,
// real returns, benchmarks, then the inflation index.
func RentabilityLabels(r *invest.Rentability) []string {
	tags := slices.Sorted(maps.Keys(r.Nominal)) // "" first
	var labels []string
	for _, tag := range tags {
		labels = append(labels, "RENT "+tag)
	}
	for _, tag := range tags {
		labels = append(labels, "RENT "+r.Index+" "+tag)
	}
	labels = append(labels, slices.Sorted(maps.Keys(r.Benchmarks))...)
	if r.Inflation != nil {
		labels = append(labels, r.Index)
	}
	return labels
}

// RentabilityMarkdown renders the returns over a lookback window.
func RentabilityMarkdown(r *invest.Rentability) string {
	title := "Rentability since " + r.Start.String()
	return SeriesMarkdown(title, r.Days, RentabilityLabels(r), r.Labelled(), Percent)
}

// StockChartsMarkdown renders the value of each position held on a grid.
func StockChartsMarkdown(days []date.Date, charts map[string]*invest.StockChart, currency string) string {
	tickers := slices.Sorted(maps.Keys(charts))
	series := make(map[string][]float64, len(charts))
	for _, t := range tickers {
		c := charts[t]
		// align on days, positions not held are 0
		v := make([]float64, len(days))
		j := 0
		for i, d := range days {
			if j < len(c.Days) && c.Days[j] == d {
				v[i] = c.Total[j]
				j++
			}
		}
		series[t] = v
	}
	return SeriesMarkdown("Positions", days, tickers, series, func(v float64) string {
		if v == 0 {
			return ""
		}
		return Money(v, currency)
	})
}
