package renderer

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/invest"
	"github.com/etnz/invest/date"
	md "github.com/nao1215/markdown"
)

// PositionsMarkdown renders one table per asset type of the positions held on
// a day, followed by the tickers that could not be loaded.
func PositionsMarkdown(positions map[string]map[string]*invest.Asset, skipped map[string]error, on date.Date, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Positions on %s", on))
	if len(positions) == 0 {
		doc.PlainText("No position held.")
	}
	for _, tag := range slices.Sorted(maps.Keys(positions)) {
		assets := positions[tag]
		doc.H2(tag)
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Ticker", "Qtd", "Cost", "Value", "Net", "Change", "Total", "Income"},
		}
		var total, income float64
		for _, ticker := range slices.Sorted(maps.Keys(assets)) {
			s := assets[ticker].Summary(on)
			total += s.Total
			income += s.Income
			table.Rows = append(table.Rows, summaryRow(s, currency))
		}
		table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", "", "", "", md.Bold(Money(total, currency)), Money(income, currency)})
		doc.Table(table)
	}

	if len(skipped) > 0 {
		doc.H2("Skipped")
		var items []string
		for _, ticker := range slices.Sorted(maps.Keys(skipped)) {
			items = append(items, fmt.Sprintf("%s: %v", ticker, strings.ReplaceAll(skipped[ticker].Error(), "\n", "; ")))
		}
		doc.BulletList(items...)
	}
	return doc.String()
}

func summaryRow(s invest.AssetSummary, currency string) []string {
	return []string{
		s.Ticker,
		Quantity(s.Quantity),
		Money(s.Cost, currency),
		Money(s.Price, currency),
		SignedMoney(s.Net, currency),
		SignedPercent(s.Change),
		Money(s.Total, currency),
		Money(s.Income, currency),
	}
}
