// Package eodhd fetches daily histories from the EODHD end of day API.
//
// Symbols use the same convention as the rest of the application: "AAPL" is
// a US stock, "PETR4.SA" is traded in Sao Paulo, "^BVSP" is an index and
// currency pairs are fetched with Pairs().
package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/etnz/invest"
	"github.com/etnz/invest/cache"
	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the EODHD API endpoint.
const DefaultBaseURL = "https://eodhd.com/api/"

// APIKeyEnv is the environment variable holding the API key.
// You can get one at https://eodhd.com/
const APIKeyEnv = "INVEST_EODHD_API_KEY"

// quote currency by EODHD exchange code.
var currencies = map[string]string{
	"US":    "USD",
	"SA":    "BRL",
	"PA":    "EUR",
	"F":     "EUR",
	"XETRA": "EUR",
	"LSE":   "GBP",
	"TO":    "CAD",
}

// Client is an invest.HistorySource over the EODHD API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	pairs   bool
	log     zerolog.Logger
}

// New returns a Client using an http.Client, typically a daily cache.NewClient.
func New(client *http.Client, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		http:    client,
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		log:     log.With().Str("component", "eodhd").Logger(),
	}
}

// WithBaseURL returns a copy of the client querying another endpoint.
func (c *Client) WithBaseURL(base string) *Client {
	cp := *c
	cp.baseURL = base
	return &cp
}

// Pairs returns a copy of the client for currency pairs: "USDBRL" is fetched
// as "USDBRL.FOREX".
func (c *Client) Pairs() *Client {
	cp := *c
	cp.pairs = true
	return &cp
}

var _ invest.HistorySource = (*Client)(nil)

// Ticker returns the EODHD ticker of a symbol and its quote currency. The
// currency of an index is unknown.
func (c *Client) Ticker(symbol string) (ticker, currency string, err error) {
	switch {
	case c.pairs:
		if len(symbol) != 6 {
			return "", "", fmt.Errorf("%w: invalid currency pair %q", invest.ErrInvalidInput, symbol)
		}
		return symbol + ".FOREX", symbol[3:], nil
	case strings.HasPrefix(symbol, "^"):
		return symbol[1:] + ".INDX", "", nil
	}
	code, exchange, found := strings.Cut(symbol, ".")
	if !found {
		exchange = "US"
	}
	currency, ok := currencies[exchange]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported exchange %q", invest.ErrDataUnavailable, exchange)
	}
	return code + "." + exchange, currency, nil
}

// FetchHistory implements invest.HistorySource.
//
// A zero r.From or r.To is unbounded.
func (c *Client) FetchHistory(ctx context.Context, symbol string, r date.Range) (*invest.History, error) {
	ticker, currency, err := c.Ticker(symbol)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("symbol", symbol).Str("ticker", ticker).Msg("fetching history")

	h := &invest.History{Currency: currency}
	if c.pairs {
		// the forex close is unreliable, the open of the next day is used instead.
		shifted := r
		if !r.From.IsZero() {
			shifted.From = r.From.Add(1)
		}
		if !r.To.IsZero() {
			shifted.To = r.To.Add(1)
		}
		if err := c.prices(ctx, ticker, shifted, h, true); err != nil {
			return nil, fmt.Errorf("error retrieving %q: %w", symbol, err)
		}
		for i := range h.Days {
			h.Days[i] = h.Days[i].Add(-1)
		}
		return h, nil
	}

	if err := c.prices(ctx, ticker, r, h, false); err != nil {
		return nil, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	if currency == "" {
		return h, nil
	}
	if err := c.splits(ctx, ticker, r, h); err != nil {
		return nil, fmt.Errorf("error retrieving splits of %q: %w", symbol, err)
	}
	if err := c.dividends(ctx, ticker, r, h); err != nil {
		return nil, fmt.Errorf("error retrieving dividends of %q: %w", symbol, err)
	}
	return h, nil
}

// addr returns the address of an endpoint for a ticker.
func (c *Client) addr(endpoint, ticker string, r date.Range) string {
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("api_token", c.apiKey)
	if !r.From.IsZero() {
		q.Set("from", r.From.String())
	}
	if !r.To.IsZero() {
		q.Set("to", r.To.String())
	}
	return c.baseURL + endpoint + "/" + url.PathEscape(ticker) + "?" + q.Encode()
}

// prices fills the daily closes, or opens, of h.
func (c *Client) prices(ctx context.Context, ticker string, r date.Range, h *invest.History, open bool) error {
	// [{"date": "2024-02-13", "open": 675.066, "close": 668.445, "adjusted_close": 67.705, ...}, ...]
	type info struct {
		Date  date.Date `json:"date"`
		Open  *float64  `json:"open"`
		Close *float64  `json:"close"`
	}
	var content []info
	if err := cache.GetJSON(ctx, c.http, c.addr("eod", ticker, r), &content); err != nil {
		return err
	}
	slices.SortStableFunc(content, func(a, b info) int { return a.Date.Compare(b.Date) })
	for _, e := range content {
		if n := len(h.Days); n > 0 && h.Days[n-1] == e.Date {
			continue
		}
		v := e.Close
		if open {
			v = e.Open
		}
		h.Days = append(h.Days, e.Date)
		h.Closes = append(h.Closes, v)
	}
	return nil
}

func (c *Client) splits(ctx context.Context, ticker string, r date.Range, h *invest.History) error {
	// [{"date": "2020-08-31", "split": "4.000000/1.000000"}, ...]
	type info struct {
		Date  date.Date `json:"date"`
		Split string    `json:"split"`
	}
	var content []info
	if err := cache.GetJSON(ctx, c.http, c.addr("splits", ticker, r), &content); err != nil {
		return err
	}
	for _, s := range content {
		num, den, err := ratio(s.Split)
		if err != nil {
			return err
		}
		h.Splits = append(h.Splits, invest.Split{Date: s.Date, Numerator: num, Denominator: den})
	}
	slices.SortFunc(h.Splits, func(a, b invest.Split) int { return a.Date.Compare(b.Date) })
	return nil
}

func (c *Client) dividends(ctx context.Context, ticker string, r date.Range, h *invest.History) error {
	// [{"date": "2024-02-09", "value": 0.24, "currency": "USD", ...}, ...]
	type info struct {
		Date  date.Date       `json:"date"` // ex-dividend date
		Value decimal.Decimal `json:"value"`
	}
	var content []info
	if err := cache.GetJSON(ctx, c.http, c.addr("div", ticker, r), &content); err != nil {
		return err
	}
	for _, d := range content {
		h.Dividends = append(h.Dividends, invest.Dividend{Date: d.Date, Amount: d.Value.InexactFloat64()})
	}
	slices.SortFunc(h.Dividends, func(a, b invest.Dividend) int { return a.Date.Compare(b.Date) })
	return nil
}

// ratio parses a "4.000000/1.000000" split into the smallest integer ratio.
func ratio(split string) (num, den int64, err error) {
	n, d, ok := strings.Cut(split, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid split format %q", split)
	}
	numerator, err := decimal.NewFromString(n)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator in split %q: %w", split, err)
	}
	denominator, err := decimal.NewFromString(d)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator in split %q: %w", split, err)
	}
	if !numerator.IsPositive() || !denominator.IsPositive() {
		return 0, 0, fmt.Errorf("invalid split %q", split)
	}
	// scale both terms to integers
	exp := -min(numerator.Exponent(), denominator.Exponent(), 0)
	num, den = numerator.Shift(exp).IntPart(), denominator.Shift(exp).IntPart()
	g := gcd(num, den)
	return num / g, den / g, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
