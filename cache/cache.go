// Package cache provides an http.Client whose responses are stored on disk
// and reused until the current period ends.
package cache

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
)

// DiskCache implements a simple disk cache for HTTP responses.
//
// Entries are keyed by the current period, so they expire when the period
// changes. A daily period uses the trading day: a response fetched on friday
// is still valid during the week-end.
type DiskCache struct {
	Base   http.RoundTripper
	Dir    string      // defaults to os.TempDir()
	Period date.Period // zero is Daily
	Log    zerolog.Logger
	Today  func() date.Date // defaults to date.Today
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If none is found, it proceeds with the actual HTTP
// request and caches the new response if it's successful.
func (c *DiskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	key := c.key(req)

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		c.Log.Debug().Str("url", req.URL.String()).Msg("cache hit")
		return cachedResp, nil
	}

	base := c.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err = base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.Log.Info().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Msg(resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		c.Log.Warn().Err(err).Msg("cache write err (ignored)")
	}
	return resp, nil
}

// key computes the file name for a request in the current period.
func (c *DiskCache) key(req *http.Request) string {
	today := date.Today
	if c.Today != nil {
		today = c.Today
	}
	day := today()
	if c.Period == date.Daily {
		day = day.TradingDay()
	}
	rangeID := date.NewRange(day, c.Period).Identifier()
	key := fmt.Sprintf("%s %s %s", rangeID, req.Method, req.URL.String())
	return fmt.Sprintf("%s-%x", c.Period, sha1.Sum([]byte(key)))
}

func (c *DiskCache) dir() string {
	if c.Dir == "" {
		return os.TempDir()
	}
	return c.Dir
}

// get retrieves a cached response from disk
func (c *DiskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk cache
func (c *DiskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir(), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir(), key), content, 0o644)
}

// NewClient returns an http.Client backed by a DiskCache in dir.
func NewClient(dir string, period date.Period, log zerolog.Logger) *http.Client {
	return &http.Client{Transport: &DiskCache{
		Base:   http.DefaultTransport,
		Dir:    dir,
		Period: period,
		Log:    log,
	}}
}

// Get performs an HTTP GET request and returns the response body.
func Get(ctx context.Context, client *http.Client, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// GetJSON performs an HTTP GET request and unmarshals the JSON response body
// into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	body, err := Get(ctx, client, addr)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
