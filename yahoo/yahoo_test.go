package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/invest"
	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chart = `{
  "chart": {
    "result": [{
      "meta": {"currency": "BRL", "symbol": "PETR4.SA", "gmtoffset": -10800},
      "timestamp": [1622552400, 1622638800, 1622725200, 1622746800],
      "events": {
        "dividends": {"1622638800": {"amount": 0.5, "date": 1622638800}},
        "splits": {"1622552400": {"date": 1622552400, "numerator": 2, "denominator": 1, "splitRatio": "2:1"}}
      },
      "indicators": {"quote": [{"close": [10.0, null, 12.0, 13.0]}]}
    }],
    "error": null
  }
}`

func server(t *testing.T, paths map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := paths[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.Client(), zerolog.Nop()).WithBaseURL(srv.URL + "/")
}

func TestFetchHistory(t *testing.T) {
	c := server(t, map[string]string{"/PETR4.SA": chart})

	h, err := c.FetchHistory(context.Background(), "PETR4.SA", date.Range{})
	require.NoError(t, err)

	assert.Equal(t, "BRL", h.Currency)
	assert.Equal(t, []date.Date{date.New(2021, 6, 1), date.New(2021, 6, 2), date.New(2021, 6, 3)}, h.Days)
	require.Len(t, h.Closes, 3)
	assert.Equal(t, 10.0, *h.Closes[0])
	assert.Nil(t, h.Closes[1], "missing closes are kept as nil")
	assert.Equal(t, 13.0, *h.Closes[2], "the live quote replaces the daily sample")
	assert.Equal(t, []invest.Dividend{{Date: date.New(2021, 6, 2), Amount: 0.5}}, h.Dividends)
	assert.Equal(t, []invest.Split{{Date: date.New(2021, 6, 1), Numerator: 2, Denominator: 1}}, h.Splits)
}

func TestFetchHistory_Range(t *testing.T) {
	c := server(t, map[string]string{"/PETR4.SA": chart})

	h, err := c.FetchHistory(context.Background(), "PETR4.SA", date.Range{From: date.New(2021, 6, 2), To: date.New(2021, 6, 2)})
	require.NoError(t, err)
	assert.Equal(t, []date.Date{date.New(2021, 6, 2)}, h.Days)
	assert.Len(t, h.Dividends, 1)
	assert.Empty(t, h.Splits)
}

func TestFetchHistory_Pairs(t *testing.T) {
	c := server(t, map[string]string{"/USDBRL=X": chart})

	_, err := c.Pairs().FetchHistory(context.Background(), "USDBRL", date.Range{})
	assert.NoError(t, err)
	_, err = c.FetchHistory(context.Background(), "USDBRL", date.Range{})
	assert.Error(t, err, "plain client does not append the pair suffix")
}

func TestFetchHistory_Errors(t *testing.T) {
	c := server(t, map[string]string{
		"/EMPTY": `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`,
		"/BAD":   `{"chart":{"result":[{"meta":{"currency":"USD"},"timestamp":[1,2],"indicators":{"quote":[{"close":[1]}]}}],"error":null}}`,
	})

	_, err := c.FetchHistory(context.Background(), "UNKNOWN", date.Range{})
	assert.Error(t, err)

	_, err = c.FetchHistory(context.Background(), "EMPTY", date.Range{})
	assert.ErrorContains(t, err, "delisted")

	_, err = c.FetchHistory(context.Background(), "BAD", date.Range{})
	assert.ErrorContains(t, err, "2 timestamps for 1 closes")
}
