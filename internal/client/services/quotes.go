package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/OleoMar/alphawave/internal/client/models"
	"github.com/OleoMar/alphawave/internal/client/repositories/kv"
	"github.com/OleoMar/alphawave/internal/common"
	"github.com/OleoMar/alphawave/internal/logging"
)

const (
	defaultQuoteInterval = time.Second
	defaultQuoteTTL      = 5 * time.Minute
)

// fallbackQuotes are served when the upstream API is unreachable, returns a
// non-200 status, or reports a zero price.
var fallbackQuotes = map[string]models.Quote{
	"TSLA":  {Current: 245.67, Change: 5.35, PercentChange: 2.23},
	"AAPL":  {Current: 198.85, Change: 3.53, PercentChange: 1.81},
	"NVDA":  {Current: 875.43, Change: 15.22, PercentChange: 1.77},
	"AMD":   {Current: 142.18, Change: 3.23, PercentChange: 2.32},
	"META":  {Current: 485.23, Change: 6.56, PercentChange: 1.37},
	"AMZN":  {Current: 191.10, Change: 2.65, PercentChange: 1.41},
	"GOOGL": {Current: 158.71, Change: 2.89, PercentChange: 1.85},
	"NFLX":  {Current: 485.32, Change: 6.42, PercentChange: 1.34},
	"SPOT":  {Current: 555.87, Change: 2.32, PercentChange: 0.42},
	"PFE":   {Current: 122.49, Change: 2.98, PercentChange: 2.49},
	"LLY":   {Current: 753.71, Change: 3.78, PercentChange: 0.50},
	"TEAM":  {Current: 209.62, Change: 4.02, PercentChange: 1.96},
	"TSM":   {Current: 158.75, Change: 12.29, PercentChange: 8.40},
}

var genericFallback = models.Quote{Current: 100, Change: 2, PercentChange: 2.04}

var companyNames = map[string]string{
	"TSLA":  "Tesla Inc",
	"AAPL":  "Apple Inc",
	"NVDA":  "NVIDIA Corp",
	"AMD":   "Advanced Micro Devices",
	"META":  "Meta Platforms",
	"AMZN":  "Amazon.com Inc",
	"GOOGL": "Alphabet Inc",
	"NFLX":  "Netflix Inc",
	"SPOT":  "Spotify Technology",
	"PFE":   "Pfizer Inc",
	"LLY":   "Eli Lilly and Co",
	"TEAM":  "Atlassian Corp",
	"TSM":   "Taiwan Semiconductor",
}

var stockSymbols = []string{"TSLA", "AAPL", "NVDA", "AMD", "META", "AMZN", "GOOGL", "NFLX"}

var watchlistSymbols = []string{"AAPL", "GOOGL", "TSLA", "AMZN", "NFLX", "SPOT", "PFE", "LLY", "TEAM", "TSM"}

func companyName(symbol string) string {
	if name, ok := companyNames[symbol]; ok {
		return name
	}
	return symbol + " Inc"
}

type cachedQuote struct {
	Quote   models.Quote `json:"quote"`
	FetchAt time.Time    `json:"fetchedAt"`
	Live    bool         `json:"live"`
}

// QuoteOptions tunes the quote fetcher. Zero values select the defaults.
type QuoteOptions struct {
	BaseURL     string
	APIKey      string
	MinInterval time.Duration
	CacheTTL    time.Duration
}

// QuoteService fetches live quotes from the upstream API with client-side
// rate limiting and a short-lived cache, degrading to a fixed fallback
// table when the upstream is unavailable.
type QuoteService struct {
	httpClient *http.Client
	store      kv.Store
	log        logging.Logger

	baseURL     string
	apiKey      string
	minInterval time.Duration
	cacheTTL    time.Duration
	now         func() time.Time

	// formatPrice renders an amount in the viewer's locale and region
	// currency. Defaults to plain USD when unset.
	formatPrice func(float64) string

	mu        sync.Mutex
	lastFetch time.Time
	cache     map[string]cachedQuote
}

// NewQuoteService constructs a QuoteService backed by store for cache
// persistence across restarts.
func NewQuoteService(store kv.Store, log logging.Logger, opts QuoteOptions) *QuoteService {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://finnhub.io/api/v1"
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = defaultQuoteInterval
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultQuoteTTL
	}
	return &QuoteService{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		store:       store,
		log:         log,
		baseURL:     opts.BaseURL,
		apiKey:      opts.APIKey,
		minInterval: opts.MinInterval,
		cacheTTL:    opts.CacheTTL,
		now:         time.Now,
		formatPrice: func(amount float64) string { return fmt.Sprintf("$%.2f", amount) },
		cache:       map[string]cachedQuote{},
	}
}

// SetPriceFormatter installs the locale-aware price renderer. Intended to be
// wired to the location service's currency formatting.
func (s *QuoteService) SetPriceFormatter(fn func(float64) string) {
	if fn != nil {
		s.formatPrice = fn
	}
}

// FetchQuote returns the quote for symbol together with whether it is live
// upstream data. Cached values younger than the cache TTL are served
// without a network call. All failure modes degrade to the fallback table,
// so the returned error is always nil today; the signature leaves room for
// ctx cancellation.
func (s *QuoteService) FetchQuote(ctx context.Context, symbol string) (models.Quote, bool, error) {
	s.mu.Lock()
	if entry, ok := s.cache[symbol]; ok && s.now().Sub(entry.FetchAt) < s.cacheTTL {
		s.mu.Unlock()
		return entry.Quote, entry.Live, nil
	}

	// Rate limiting is enforced under the lock, serializing upstream
	// requests at most one per interval.
	if err := s.waitForRateLimitLocked(ctx); err != nil {
		s.mu.Unlock()
		return fallbackQuote(symbol), false, nil
	}
	s.lastFetch = s.now()
	s.mu.Unlock()

	quote, err := s.fetchUpstream(ctx, symbol)
	if err != nil {
		s.log.Warn(ctx, "quote fetch failed, using fallback data", "symbol", symbol, "error", err)
		return fallbackQuote(symbol), false, nil
	}

	s.mu.Lock()
	s.cache[symbol] = cachedQuote{Quote: quote, FetchAt: s.now(), Live: true}
	s.mu.Unlock()
	s.persistCache(ctx)

	return quote, true, nil
}

func (s *QuoteService) waitForRateLimitLocked(ctx context.Context) error {
	wait := s.minInterval - s.now().Sub(s.lastFetch)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *QuoteService) fetchUpstream(ctx context.Context, symbol string) (models.Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&token=%s", s.baseURL, url.QueryEscape(symbol), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Quote{}, fmt.Errorf("%w: quote API returned %d", common.ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}

	var quote models.Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return models.Quote{}, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	if quote.Current == 0 {
		return models.Quote{}, fmt.Errorf("%w: no price data for %s", common.ErrNetwork, symbol)
	}
	return quote, nil
}

func fallbackQuote(symbol string) models.Quote {
	if q, ok := fallbackQuotes[symbol]; ok {
		return q
	}
	return genericFallback
}

// Stocks returns the dashboard stock summary list with percent changes
// formatted to one decimal.
func (s *QuoteService) Stocks(ctx context.Context) []models.StockSummary {
	out := make([]models.StockSummary, 0, len(stockSymbols))
	for _, symbol := range stockSymbols {
		quote, live, _ := s.FetchQuote(ctx, symbol)
		out = append(out, models.StockSummary{
			Symbol: symbol,
			Name:   companyName(symbol),
			Change: fmt.Sprintf("%+.1f%%", quote.PercentChange),
			Live:   live,
		})
	}
	return out
}

// Watchlist returns the watchlist with prices rendered by the installed
// formatter and percent changes formatted to two decimals.
func (s *QuoteService) Watchlist(ctx context.Context) []models.WatchlistItem {
	out := make([]models.WatchlistItem, 0, len(watchlistSymbols))
	for _, symbol := range watchlistSymbols {
		quote, live, _ := s.FetchQuote(ctx, symbol)
		out = append(out, models.WatchlistItem{
			Symbol: symbol,
			Name:   companyName(symbol),
			Price:  s.formatPrice(quote.Current),
			Change: fmt.Sprintf("%+.2f%%", quote.PercentChange),
			Live:   live,
		})
	}
	return out
}

func (s *QuoteService) persistCache(ctx context.Context) {
	s.mu.Lock()
	data, err := json.Marshal(s.cache)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn(ctx, "could not encode quote cache", "error", err)
		return
	}
	if err := s.store.Set(ctx, common.StocksCacheKey, data); err != nil {
		s.log.Warn(ctx, "could not save quote cache", "error", err)
	}
}

// LoadCache restores the persisted quote cache. Entries past the TTL are
// kept in memory but treated as expired by FetchQuote.
func (s *QuoteService) LoadCache(ctx context.Context) {
	raw, err := s.store.Get(ctx, common.StocksCacheKey)
	if err != nil || len(raw) == 0 {
		return
	}
	cache := map[string]cachedQuote{}
	if err := json.Unmarshal(raw, &cache); err != nil {
		s.log.Warn(ctx, "could not parse stored quote cache", "error", err)
		return
	}
	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
}
