package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/invest"
	"github.com/etnz/invest/date"
	md "github.com/nao1215/markdown"
)

// OverviewMarkdown renders the headline totals and returns of a portfolio.
func OverviewMarkdown(o *invest.Overview, asOf date.Date, currency, index string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio on %s", asOf))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Value"), md.Bold(Money(o.Value, currency))},
		Rows: [][]string{
			{"Invested", Money(o.Invested, currency)},
			{"Net", SignedMoney(o.Net, currency)},
			{"Income", Money(o.Income, currency)},
		},
	})

	doc.H2("Rentability")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Period", "Nominal", "Real (" + index + ")"},
	}
	for i, n := range o.Nominal {
		adjusted := "-"
		if i < len(o.Real) {
			adjusted = SignedPercent(o.Real[i].Value)
		}
		table.Rows = append(table.Rows, []string{n.Label, SignedPercent(n.Value), adjusted})
	}
	doc.Table(table)

	return doc.String()
}
