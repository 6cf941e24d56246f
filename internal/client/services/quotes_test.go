package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OleoMar/alphawave/internal/client/repositories/kv"
)

func quoteServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newQuotes(t *testing.T, baseURL string) *QuoteService {
	t.Helper()
	return NewQuoteService(kv.NewMemoryStore(), testLogger(), QuoteOptions{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		MinInterval: time.Millisecond,
	})
}

func TestFetchQuoteLive(t *testing.T) {
	ctx := context.Background()
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c": 201.5, "d": 2.5, "dp": 1.26}`))
	})

	svc := newQuotes(t, srv.URL)
	quote, live, err := svc.FetchQuote(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, live)
	assert.InDelta(t, 201.5, quote.Current, 1e-9)
	assert.InDelta(t, 1.26, quote.PercentChange, 1e-9)
}

func TestFetchQuoteCached(t *testing.T) {
	ctx := context.Background()
	var calls int32
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"c": 100.0, "d": 1.0, "dp": 1.0}`))
	})

	svc := newQuotes(t, srv.URL)
	_, _, err := svc.FetchQuote(ctx, "TSLA")
	require.NoError(t, err)
	_, live, err := svc.FetchQuote(ctx, "TSLA")
	require.NoError(t, err)

	assert.True(t, live)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchQuoteFallback(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"upstream error status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"missing price data", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"c": 0, "d": 0, "dp": 0}`))
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := quoteServer(t, tt.handler)
			svc := newQuotes(t, srv.URL)

			quote, live, err := svc.FetchQuote(ctx, "TSLA")
			require.NoError(t, err)
			assert.False(t, live)
			assert.InDelta(t, 245.67, quote.Current, 1e-9)
			assert.InDelta(t, 2.23, quote.PercentChange, 1e-9)
		})
	}
}

func TestFetchQuoteUnknownSymbolFallback(t *testing.T) {
	ctx := context.Background()
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	svc := newQuotes(t, srv.URL)
	quote, live, err := svc.FetchQuote(ctx, "XYZ")
	require.NoError(t, err)
	assert.False(t, live)
	assert.InDelta(t, 100, quote.Current, 1e-9)
	assert.InDelta(t, 2.04, quote.PercentChange, 1e-9)
}

func TestFetchQuoteRateLimited(t *testing.T) {
	ctx := context.Background()
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c": 1.0, "d": 0.1, "dp": 0.1}`))
	})

	interval := 50 * time.Millisecond
	svc := NewQuoteService(kv.NewMemoryStore(), testLogger(), QuoteOptions{
		BaseURL:     srv.URL,
		MinInterval: interval,
	})

	start := time.Now()
	_, _, err := svc.FetchQuote(ctx, "AAPL")
	require.NoError(t, err)
	_, _, err = svc.FetchQuote(ctx, "TSLA") // different symbol, cache miss
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), interval)
}

func TestFetchQuoteRateLimitHonorsContext(t *testing.T) {
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c": 1.0, "d": 0.1, "dp": 0.1}`))
	})

	svc := NewQuoteService(kv.NewMemoryStore(), testLogger(), QuoteOptions{
		BaseURL:     srv.URL,
		MinInterval: time.Minute,
	})

	_, _, err := svc.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Cancellation during the rate-limit wait degrades to fallback data.
	quote, live, err := svc.FetchQuote(ctx, "TSLA")
	require.NoError(t, err)
	assert.False(t, live)
	assert.InDelta(t, 245.67, quote.Current, 1e-9)
}

func TestStocksFormatting(t *testing.T) {
	ctx := context.Background()
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	svc := newQuotes(t, srv.URL)
	stocks := svc.Stocks(ctx)
	require.Len(t, stocks, 8)

	byp := map[string]string{}
	for _, s := range stocks {
		byp[s.Symbol] = s.Change
		assert.False(t, s.Live)
	}
	assert.Equal(t, "+2.2%", byp["TSLA"])
	assert.Equal(t, "+1.8%", byp["AAPL"])

	for _, s := range stocks {
		if s.Symbol == "TSLA" {
			assert.Equal(t, "Tesla Inc", s.Name)
		}
	}
}

func TestWatchlistFormatting(t *testing.T) {
	ctx := context.Background()
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	svc := newQuotes(t, srv.URL)
	svc.SetPriceFormatter(func(amount float64) string { return fmt.Sprintf("USD %.2f", amount) })

	items := svc.Watchlist(ctx)
	require.Len(t, items, 10)

	for _, item := range items {
		if item.Symbol == "TSM" {
			assert.Equal(t, "+8.40%", item.Change)
			assert.Equal(t, "USD 158.75", item.Price)
		}
	}
}

func TestQuoteCachePersistence(t *testing.T) {
	ctx := context.Background()
	var calls int32
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"c": 300.0, "d": 3.0, "dp": 1.0}`))
	})

	store := kv.NewMemoryStore()
	svc := NewQuoteService(store, testLogger(), QuoteOptions{BaseURL: srv.URL, MinInterval: time.Millisecond})
	_, _, err := svc.FetchQuote(ctx, "NVDA")
	require.NoError(t, err)

	// A new service over the same store restores the cache and serves the
	// quote without another upstream call.
	restored := NewQuoteService(store, testLogger(), QuoteOptions{BaseURL: srv.URL, MinInterval: time.Millisecond})
	restored.LoadCache(ctx)

	quote, live, err := restored.FetchQuote(ctx, "NVDA")
	require.NoError(t, err)
	assert.True(t, live)
	assert.InDelta(t, 300.0, quote.Current, 1e-9)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
