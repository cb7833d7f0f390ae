// Package insee fetches the French consumer price index from the INSEE
// macro-economic database.
package insee

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
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
)

// DefaultBaseURL is the INSEE series download endpoint.
const DefaultBaseURL = "https://bdm.insee.fr/series/"

// IPC is the idBank of the monthly consumer price index, all households, France.
const IPC = "001759970"

const (
	location  = "FR"
	firstYear = 1990
)

// Client is an invest.CPISource for the "FR" location.
type Client struct {
	http    *http.Client
	baseURL string
	idBank  string
	today   func() date.Date
	log     zerolog.Logger
}

// New returns a Client of the IPC series.
func New(client *http.Client, log zerolog.Logger) *Client {
	return &Client{
		http:    client,
		baseURL: DefaultBaseURL,
		idBank:  IPC,
		today:   date.Today,
		log:     log.With().Str("component", "insee").Logger(),
	}
}

// WithBaseURL returns a copy of the client querying another endpoint.
func (c *Client) WithBaseURL(base string) *Client {
	cp := *c
	cp.baseURL = base
	return &cp
}

var _ invest.CPISource = (*Client)(nil)

// FetchCPI implements invest.CPISource. Days are the first day of each period.
func (c *Client) FetchCPI(ctx context.Context, loc string) ([]date.Date, []float64, error) {
	if loc != location {
		return nil, nil, fmt.Errorf("%w: insee only serves %q, not %q", invest.ErrUnsupportedLocation, location, loc)
	}
	series, err := c.getSeries(ctx, c.idBank, firstYear, c.today().Year())
	if err != nil {
		return nil, nil, err
	}
	days := slices.SortedFunc(maps.Keys(series.Values), date.Date.Compare)
	if len(days) == 0 {
		return nil, nil, fmt.Errorf("no value in INSEE series %s", c.idBank)
	}
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = series.Values[d]
	}
	return days, values, nil
}

// getSeries downloads and parses an INSEE time series, for whole years.
func (c *Client) getSeries(ctx context.Context, idBank string, from, to int) (*Series, error) {
	addr := fmt.Sprintf("%s%s/csv?lang=fr&ordre=antechronologique&transposition=donneescolonne&periodeDebut=1&anneeDebut=%d&periodeFin=12&anneeFin=%d&revision=sansrevisions",
		c.baseURL, idBank, from, to)
	c.log.Debug().Str("url", addr).Msg("downloading from INSEE")

	body, err := cache.Get(ctx, c.http, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to download from INSEE for ID %s: %w", idBank, err)
	}

	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive from INSEE response: %w", err)
	}

	var foundFiles []string
	for _, f := range zipReader.File {
		foundFiles = append(foundFiles, f.Name)
		if f.Name != "valeurs_trimestrielles.csv" && f.Name != "valeurs_mensuelles.csv" {
			continue
		}
		csvFile, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open '%s' from zip archive: %w", f.Name, err)
		}
		defer csvFile.Close()
		return parseSeries(csvFile)
	}
	return nil, fmt.Errorf("could not find a values file (mensuelles or trimestrielles) in downloaded zip file for ID %s (found: %s)", idBank, strings.Join(foundFiles, ", "))
}

// Series holds the data from an INSEE time series CSV file.
type Series struct {
	Libelle    string
	IDBank     string
	LastUpdate time.Time
	Values     map[date.Date]float64
}

// parseDate parses a period like "2025-T2" or "2025-08" into its first day.
func parseDate(s string) (date.Date, error) {
	year, period, ok := strings.Cut(s, "-")
	if !ok {
		return date.Date{}, fmt.Errorf("unrecognized insee date format: %q", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid year in date %q: %w", s, err)
	}
	if q, ok := strings.CutPrefix(period, "T"); ok {
		quarter, err := strconv.Atoi(q)
		if err != nil || quarter < 1 || quarter > 4 {
			return date.Date{}, fmt.Errorf("invalid quarter in quarterly date %q", s)
		}
		return date.New(y, time.Month(3*quarter-2), 1), nil
	}
	month, err := strconv.Atoi(period)
	if err != nil || month < 1 || month > 12 {
		return date.Date{}, fmt.Errorf("invalid month in monthly date %q", s)
	}
	return date.New(y, time.Month(month), 1), nil
}

// parseSeries reads the INSEE CSV format: three header lines, a column
// header, then one period per line, most recent first.
func parseSeries(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 4 || len(records[0]) < 2 || len(records[1]) < 2 || len(records[2]) < 2 {
		return nil, fmt.Errorf("not enough records in csv to parse series")
	}

	series := &Series{
		Libelle: records[0][1],
		IDBank:  records[1][1],
		Values:  make(map[date.Date]float64),
	}
	series.LastUpdate, err = time.Parse("02/01/2006 15:04", records[2][1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse last update date %q: %w", records[2][1], err)
	}

	for _, rec := range records[4:] {
		if len(rec) < 2 || rec[1] == "" {
			continue
		}
		day, err := parseDate(rec[0])
		if err != nil {
			return nil, err
		}
		val, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse value %q for date %q: %w", rec[1], rec[0], err)
		}
		series.Values[day] = val
	}
	return series, nil
}
