package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/invest/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(`{"value": 42}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDiskCache_Hit(t *testing.T) {
	srv, hits := counting(t, http.StatusOK)
	today := date.New(2025, 9, 10)
	client := &http.Client{Transport: &DiskCache{Dir: t.TempDir(), Log: zerolog.Nop(), Today: func() date.Date { return today }}}

	var got struct{ Value int }
	for range 3 {
		require.NoError(t, GetJSON(context.Background(), client, srv.URL+"/x", &got))
	}
	assert.Equal(t, 42, got.Value)
	assert.Equal(t, int32(1), hits.Load())

	today = today.Add(1)
	require.NoError(t, GetJSON(context.Background(), client, srv.URL+"/x", &got))
	assert.Equal(t, int32(2), hits.Load(), "daily entries expire the next day")
}

func TestDiskCache_WeekEnd(t *testing.T) {
	srv, hits := counting(t, http.StatusOK)
	today := date.New(2025, 9, 12) // friday
	client := &http.Client{Transport: &DiskCache{Dir: t.TempDir(), Log: zerolog.Nop(), Today: func() date.Date { return today }}}

	_, err := Get(context.Background(), client, srv.URL)
	require.NoError(t, err)
	today = date.New(2025, 9, 14) // sunday
	_, err = Get(context.Background(), client, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDiskCache_Monthly(t *testing.T) {
	srv, hits := counting(t, http.StatusOK)
	today := date.New(2025, 9, 1)
	client := &http.Client{Transport: &DiskCache{Dir: t.TempDir(), Period: date.Monthly, Log: zerolog.Nop(), Today: func() date.Date { return today }}}

	_, err := Get(context.Background(), client, srv.URL)
	require.NoError(t, err)
	today = date.New(2025, 9, 30)
	_, err = Get(context.Background(), client, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDiskCache_ErrorsAreNotCached(t *testing.T) {
	srv, hits := counting(t, http.StatusNotFound)
	client := &http.Client{Transport: &DiskCache{Dir: t.TempDir(), Log: zerolog.Nop()}}

	_, err := Get(context.Background(), client, srv.URL)
	assert.Error(t, err)
	_, err = Get(context.Background(), client, srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())
}
