// Package ibge fetches the Brazilian consumer price index (IPCA) from the
// IBGE aggregates API.
package ibge

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/invest"
	"github.com/etnz/invest/cache"
	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// DefaultBaseURL is the IBGE aggregates API endpoint.
const DefaultBaseURL = "https://servicodados.ibge.gov.br/api/v3/agregados/"

const (
	aggregate = 1737 // IPCA, monthly series since 1979
	variable  = 2266 // number index, base december 1993 = 100
	location  = "BR"
)

// first is the first month requested, after the introduction of the Real.
var first = date.New(1994, time.July, 1)

// trailing is the number of published points used to extrapolate missing ones.
const trailing = 12

// Client is an invest.CPISource for the "BR" location.
type Client struct {
	http    *http.Client
	baseURL string
	today   func() date.Date
	log     zerolog.Logger
}

// New returns a Client using an http.Client, typically a cache.NewClient.
func New(client *http.Client, log zerolog.Logger) *Client {
	return &Client{
		http:    client,
		baseURL: DefaultBaseURL,
		today:   date.Today,
		log:     log.With().Str("component", "ibge").Logger(),
	}
}

// WithBaseURL returns a copy of the client querying another endpoint.
func (c *Client) WithBaseURL(base string) *Client {
	cp := *c
	cp.baseURL = base
	return &cp
}

var _ invest.CPISource = (*Client)(nil)

type response []struct {
	Resultados []struct {
		Series []struct {
			Serie map[string]string `json:"serie"`
		} `json:"series"`
	} `json:"resultados"`
}

// FetchCPI implements invest.CPISource.
//
// Days are the first day of each month, from July 1994 to the current month.
// Months without a published value yet are extrapolated.
func (c *Client) FetchCPI(ctx context.Context, loc string) ([]date.Date, []float64, error) {
	if loc != location {
		return nil, nil, fmt.Errorf("%w: ibge only serves %q, not %q", invest.ErrUnsupportedLocation, location, loc)
	}
	current := c.today().StartOf(date.Monthly)

	var periods []string
	for m := first; !m.After(current); m = m.AddMonth(1) {
		periods = append(periods, m.Format("200601"))
	}
	addr := fmt.Sprintf("%s%d/periodos/%s/variaveis/%d?localidades=N1[all]",
		c.baseURL, aggregate, strings.Join(periods, "%7C"), variable)

	var resp response
	if err := cache.GetJSON(ctx, c.http, addr, &resp); err != nil {
		return nil, nil, fmt.Errorf("error retrieving IPCA: %w", err)
	}
	if len(resp) == 0 || len(resp[0].Resultados) == 0 || len(resp[0].Resultados[0].Series) == 0 {
		return nil, nil, fmt.Errorf("error parsing IPCA: no series")
	}
	serie := resp[0].Resultados[0].Series[0].Serie

	var (
		days   []date.Date
		values []float64
	)
	for _, period := range slices.Sorted(maps.Keys(serie)) {
		on, err := time.Parse("200601", period)
		if err != nil {
			return nil, nil, fmt.Errorf("error parsing IPCA period %q: %w", period, err)
		}
		v, err := strconv.ParseFloat(serie[period], 64)
		if err != nil {
			// unpublished values are "..." or "-".
			continue
		}
		days = append(days, date.FromTime(on))
		values = append(values, v)
	}
	if len(days) == 0 {
		return nil, nil, fmt.Errorf("error parsing IPCA: no published value")
	}

	if last := days[len(days)-1]; last.Before(current) {
		c.log.Info().Str("last", last.String()).Msg("extrapolating unpublished IPCA values")
		days, values = Extrapolate(days, values, current)
	}
	return days, values, nil
}

// monthIndex returns a month number suitable for regressions.
func monthIndex(d date.Date) float64 { return float64(d.Year()*12 + int(d.Month()) - 1) }

// Extrapolate appends monthly values up to the month of until, following the
// linear regression of the trailing published values.
func Extrapolate(days []date.Date, values []float64, until date.Date) ([]date.Date, []float64) {
	if len(days) == 0 {
		return days, values
	}
	n := min(trailing, len(days))
	xs := make([]float64, n)
	for i, d := range days[len(days)-n:] {
		xs[i] = monthIndex(d)
	}
	ys := values[len(values)-n:]

	alpha, beta := ys[0], 0.0
	if n > 1 {
		alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	}

	days, values = slices.Clone(days), slices.Clone(values)
	until = until.StartOf(date.Monthly)
	for m := days[len(days)-1].StartOf(date.Monthly).AddMonth(1); !m.After(until); m = m.AddMonth(1) {
		days = append(days, m)
		values = append(values, alpha+beta*monthIndex(m))
	}
	return days, values
}
