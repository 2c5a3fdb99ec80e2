package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/pkg/config"
	"github.com/wonny/quantedge/pkg/logger"
)

func fetcherFor(url string) *HTTPFetcher {
	cfg := &config.Config{
		Env: "development",
		Quotes: config.QuoteConfig{
			BaseURL:      url + "/",
			BatchTimeout: 2 * time.Second,
		},
	}
	return NewHTTPFetcher(cfg, logger.Nop())
}

func TestHTTPFetcherDecodesBulkResponse(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bulk", r.URL.Path)
		gotQuery = r.URL.Query().Get("symbols")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"M&M": {"sym":"M&M","price":2950.5,"prev_close":2900,"change":50.5,"change_pct":1.74,"updated_at":"2026-01-05T10:00:00"},
				"TCS": {"sym":"TCS","price":4010,"prev_close":4000,"change":10,"change_pct":0.25,"updated_at":"2026-01-05T10:00:00"},
				"HDFC": {"sym":"HDFC","price":1,"change":0,"change_pct":0},
				"BAD": {"sym":"BAD","price":-1}
			},
			"cached": true,
			"count": 4,
			"updated_at": "2026-01-05T10:00:00"
		}`))
	}))
	defer server.Close()

	f := fetcherFor(server.URL)
	fixed := time.Date(2026, 1, 5, 10, 0, 1, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	got, err := f.FetchBatch(context.Background(), []string{"M&M", "TCS", "BAD"})
	require.NoError(t, err)

	assert.Equal(t, "M&M,TCS,BAD", gotQuery)
	require.Len(t, got, 2, "unrequested and negative prices are dropped")

	mm := got["M&M"]
	assert.Equal(t, "M&M", mm.Symbol)
	assert.Equal(t, 2950.5, mm.LastPrice)
	assert.Equal(t, 1.74, mm.ChangePercent)
	assert.Equal(t, 50.5, mm.ChangeAbsolute)
	assert.Equal(t, fixed, mm.FetchedAt)
}

func TestHTTPFetcherMatchesCaseInsensitively(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"NIFTY50":{"price":24000,"change":-12,"change_pct":-0.05}}}`))
	}))
	defer server.Close()

	got, err := fetcherFor(server.URL).FetchBatch(context.Background(), []string{"Nifty50"})
	require.NoError(t, err)
	assert.Equal(t, 24000.0, got["Nifty50"].LastPrice)
}

func TestHTTPFetcherNon2xxIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := fetcherFor(server.URL).FetchBatch(context.Background(), []string{"TCS"})
	assert.ErrorIs(t, err, contracts.ErrNetworkError)
	assert.Equal(t, "network", errorKind(err))
}

func TestHTTPFetcherMalformedBodyIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	_, err := fetcherFor(server.URL).FetchBatch(context.Background(), []string{"TCS"})
	assert.ErrorIs(t, err, contracts.ErrNetworkError)
}

func TestHTTPFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := fetcherFor(server.URL).FetchBatch(ctx, []string{"TCS"})
	assert.ErrorIs(t, err, contracts.ErrNetworkTimeout)
	assert.Equal(t, "timeout", errorKind(err))
}

func TestHTTPFetcherRejectsOversizedBatch(t *testing.T) {
	_, err := fetcherFor("http://127.0.0.1:1").FetchBatch(context.Background(), makeSymbols(MaxBatchSize+1))
	assert.ErrorIs(t, err, contracts.ErrInvalidArgument)

	got, err := fetcherFor("http://127.0.0.1:1").FetchBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
