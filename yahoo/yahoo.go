// Package yahoo fetches daily histories from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/invest"
	"github.com/etnz/invest/cache"
	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Yahoo Finance chart API endpoint.
const DefaultBaseURL = "https://query2.finance.yahoo.com/v8/finance/chart/"

const query = "?range=50y&region=US&interval=1d&lang=en&events=div%2Csplit"

// Client is an invest.HistorySource over the Yahoo Finance chart API.
type Client struct {
	http    *http.Client
	baseURL string
	suffix  string // appended to every symbol
	log     zerolog.Logger
}

// New returns a Client using an http.Client, typically a daily cache.NewClient.
func New(client *http.Client, log zerolog.Logger) *Client {
	return &Client{
		http:    client,
		baseURL: DefaultBaseURL,
		log:     log.With().Str("component", "yahoo").Logger(),
	}
}

// WithBaseURL returns a copy of the client querying another endpoint.
func (c *Client) WithBaseURL(base string) *Client {
	cp := *c
	cp.baseURL = base
	return &cp
}

// Pairs returns a copy of the client for currency pairs: "USDBRL" is fetched
// as "USDBRL=X".
func (c *Client) Pairs() *Client {
	cp := *c
	cp.suffix = "=X"
	return &cp
}

var _ invest.HistorySource = (*Client)(nil)

// FetchHistory implements invest.HistorySource.
//
// The whole available history is fetched, and samples outside r are dropped.
// A zero r.From or r.To is unbounded.
func (c *Client) FetchHistory(ctx context.Context, symbol string, r date.Range) (*invest.History, error) {
	addr := c.baseURL + url.PathEscape(symbol+c.suffix) + query
	c.log.Debug().Str("symbol", symbol+c.suffix).Msg("fetching history")

	var jobj any
	if err := cache.GetJSON(ctx, c.http, addr, &jobj); err != nil {
		return nil, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	h, err := decode(jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", symbol, err)
	}
	return h.Within(r), nil
}

// get returns the value at path, or nil if there is none.
func get(path string, jobj any) any {
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	return v
}

func number(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// decode reads a chart API payload.
func decode(jobj any) (*invest.History, error) {
	if msg, ok := get("$.chart.error.description", jobj).(string); ok {
		return nil, errors.New(msg)
	}
	if get("$.chart.result[0]", jobj) == nil {
		return nil, errors.New("no result")
	}
	h := new(invest.History)
	h.Currency, _ = get("$.chart.result[0].meta.currency", jobj).(string)
	offset, _ := number(get("$.chart.result[0].meta.gmtoffset", jobj))
	day := func(ts float64) date.Date { return date.Unix(int64(ts + offset)) }

	timestamps, _ := get("$.chart.result[0].timestamp", jobj).([]any)
	closes, _ := get("$.chart.result[0].indicators.quote[0].close", jobj).([]any)
	if len(timestamps) != len(closes) {
		return nil, fmt.Errorf("%d timestamps for %d closes", len(timestamps), len(closes))
	}
	for i, ts := range timestamps {
		t, ok := number(ts)
		if !ok {
			return nil, fmt.Errorf("invalid timestamp %v", ts)
		}
		d := day(t)
		var c *float64
		if v, ok := number(closes[i]); ok {
			c = &v
		}
		n := len(h.Days)
		switch {
		case n > 0 && h.Days[n-1] == d:
			// the live quote of the day comes on top of its daily sample.
			if c != nil {
				h.Closes[n-1] = c
			}
		case n > 0 && d.Before(h.Days[n-1]):
			continue
		default:
			h.Days = append(h.Days, d)
			h.Closes = append(h.Closes, c)
		}
	}

	if events, ok := get("$.chart.result[0].events.dividends", jobj).(map[string]any); ok {
		for _, e := range events {
			ts, ok1 := number(get("$.date", e))
			amount, ok2 := number(get("$.amount", e))
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("invalid dividend %v", e)
			}
			h.Dividends = append(h.Dividends, invest.Dividend{Date: day(ts), Amount: amount})
		}
		slices.SortFunc(h.Dividends, func(a, b invest.Dividend) int { return a.Date.Compare(b.Date) })
	}
	if events, ok := get("$.chart.result[0].events.splits", jobj).(map[string]any); ok {
		for _, e := range events {
			ts, ok1 := number(get("$.date", e))
			num, ok2 := number(get("$.numerator", e))
			den, ok3 := number(get("$.denominator", e))
			if !ok1 || !ok2 || !ok3 || den == 0 {
				return nil, fmt.Errorf("invalid split %v", e)
			}
			h.Splits = append(h.Splits, invest.Split{Date: day(ts), Numerator: int64(num), Denominator: int64(den)})
		}
		slices.SortFunc(h.Splits, func(a, b invest.Split) int { return a.Date.Compare(b.Date) })
	}
	return h, nil
}
