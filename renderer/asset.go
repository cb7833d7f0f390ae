package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/invest"
	"github.com/etnz/invest/date"
	md "github.com/nao1215/markdown"
)

// AssetMarkdown renders the detail of a single asset: its summary, its
// returns over standard windows, and its closed holding runs.
func AssetMarkdown(a *invest.Asset, on date.Date, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s (%s) on %s", a.Ticker(), a.Type(), on))
	s := a.Summary(on)
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total"), md.Bold(Money(s.Total, currency))},
		Rows: [][]string{
			{"Symbol", a.Symbol()},
			{"Quote currency", a.Currency()},
			{"Quantity", Quantity(s.Quantity)},
			{"Cost per share", Money(s.Cost, currency)},
			{"Price", Money(s.Price, currency)},
			{"Net", SignedMoney(s.Net, currency)},
			{"Change", SignedPercent(s.Change)},
			{"Income", Money(s.Income, currency)},
			{"Holding since", startDate(a.StartDate())},
		},
	})

	doc.H2("Rentability")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Window", "Nominal", "Real", "Real with dividends"},
	}
	for _, w := range a.Rentability(on) {
		table.Rows = append(table.Rows, []string{
			w.Window.Name,
			SignedPercent(w.Nominal),
			SignedPercent(w.Real),
			SignedPercent(w.RealWithDividends),
		})
	}
	doc.Table(table)

	if runs := a.ClosedRuns(); len(runs) > 0 {
		doc.H2("Closed positions")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"From", "To", "Net"},
		}
		for _, r := range runs {
			table.Rows = append(table.Rows, []string{r.Start.String(), r.End.String(), SignedMoney(r.Net.InexactFloat64(), currency)})
		}
		doc.Table(table)
	}

	if warnings := a.Warnings(); len(warnings) > 0 {
		doc.H2("Warnings")
		items := make([]string, len(warnings))
		for i, w := range warnings {
			items[i] = w.Error()
		}
		doc.BulletList(items...)
	}
	return doc.String()
}

func startDate(d date.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}
