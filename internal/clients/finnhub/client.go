// Package finnhub provides a client for the Finnhub stock quote API.
//
// The client owns the whole unreliability story of market data so callers
// can treat prices as a plain synchronous lookup: responses are cached with
// a TTL, transient failures are retried with exponential backoff, and when
// the API stays unreachable a deterministic pseudo-price derived from the
// ticker is served instead of an error.
package finnhub

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alfredorueda/portfolio-service/internal/clientdata"
)

const (
	defaultBaseURL   = "https://finnhub.io/api/v1"
	maxRetryAttempts = 3
	initialBackoff   = 500 * time.Millisecond
	requestTimeout   = 8 * time.Second
)

// Config holds client configuration.
type Config struct {
	APIKey   string
	BaseURL  string        // defaults to the public API; overridden in tests
	TestMode bool          // serve mock prices only, no network calls
	CacheTTL time.Duration // freshness window for cached quotes
}

// Client fetches current stock prices.
type Client struct {
	apiKey     string
	baseURL    string
	testMode   bool
	cacheTTL   time.Duration
	httpClient *http.Client
	cache      *clientdata.Repository // optional; nil disables caching
	log        zerolog.Logger

	mu         sync.Mutex
	mockPrices map[string]decimal.Decimal
}

// cachedQuote is the JSON shape stored in the client data cache.
type cachedQuote struct {
	Price string `json:"price"`
	AsOf  int64  `json:"as_of"`
}

// quoteResponse is the Finnhub /quote payload; "c" is the current price.
type quoteResponse struct {
	Current float64 `json:"c"`
}

// New creates a Finnhub client. A nil cache repository disables quote
// caching (used by tests that only exercise fetch behavior).
func New(cfg Config, cache *clientdata.Repository, log zerolog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		testMode:   cfg.TestMode,
		cacheTTL:   ttl,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      cache,
		log:        log.With().Str("client", "finnhub").Logger(),
		mockPrices: map[string]decimal.Decimal{
			"AAPL":  decimal.RequireFromString("150.00"),
			"MSFT":  decimal.RequireFromString("300.00"),
			"GOOGL": decimal.RequireFromString("2800.00"),
			"AMZN":  decimal.RequireFromString("3300.00"),
			"META":  decimal.RequireFromString("330.00"),
			"TSLA":  decimal.RequireFromString("900.00"),
			"NFLX":  decimal.RequireFromString("550.00"),
			"NVDA":  decimal.RequireFromString("220.00"),
		},
	}
}

// CurrentPrice returns the current market price for a ticker. The result is
// cache-first; on a miss the API is queried with retries, and if every
// attempt fails a stable mock price is returned so read paths stay
// available during outages.
func (c *Client) CurrentPrice(ticker string) (decimal.Decimal, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return decimal.Zero, fmt.Errorf("ticker must not be empty")
	}

	if c.testMode {
		return c.mockPrice(ticker), nil
	}

	if c.cache != nil {
		var cached cachedQuote
		found, err := c.cache.GetPrice(ticker, &cached)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Price cache read failed")
		} else if found {
			price, err := decimal.NewFromString(cached.Price)
			if err == nil {
				return price, nil
			}
			c.log.Warn().Str("ticker", ticker).Str("raw", cached.Price).Msg("Discarding malformed cached price")
		}
	}

	price, err := c.fetchWithRetry(ticker)
	if err != nil {
		price = c.mockPrice(ticker)
		c.log.Warn().
			Err(err).
			Str("ticker", ticker).
			Str("fallback_price", price.String()).
			Msg("Failed to fetch price, serving deterministic fallback")
	}

	if c.cache != nil {
		quote := cachedQuote{Price: price.String(), AsOf: time.Now().Unix()}
		if err := c.cache.StorePrice(ticker, quote, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Price cache write failed")
		}
	}

	return price, nil
}

// fetchWithRetry queries the quote endpoint with exponential backoff and
// jitter between attempts.
func (c *Client) fetchWithRetry(ticker string) (decimal.Decimal, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		price, err := c.fetch(ticker)
		if err == nil {
			return price, nil
		}
		lastErr = err

		if attempt < maxRetryAttempts {
			backoff := backoffDelay(attempt)
			c.log.Debug().
				Err(err).
				Str("ticker", ticker).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Quote fetch failed, retrying")
			time.Sleep(backoff)
		}
	}

	return decimal.Zero, fmt.Errorf("failed to fetch price for %s after %d attempts: %w",
		ticker, maxRetryAttempts, lastErr)
}

func (c *Client) fetch(ticker string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		c.baseURL, url.QueryEscape(ticker), url.QueryEscape(c.apiKey))

	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("quote request returned status %d", resp.StatusCode)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode quote response: %w", err)
	}

	// Finnhub returns c=0 for unknown symbols and outside market data.
	if quote.Current <= 0 {
		return decimal.Zero, fmt.Errorf("no quote available for %s", ticker)
	}

	return decimal.NewFromFloat(quote.Current), nil
}

// backoffDelay computes the exponential backoff with jitter for an attempt.
func backoffDelay(attempt int) time.Duration {
	backoff := initialBackoff << (attempt - 1)
	return backoff + time.Duration(rand.Int63n(int64(initialBackoff)))
}

// mockPrice returns the deterministic price for a ticker: a seeded value for
// well-known symbols, otherwise a stable pseudo-price derived from the
// ticker's hash. The same ticker always maps to the same price, which keeps
// read paths idempotent while the real API is unavailable.
func (c *Client) mockPrice(ticker string) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	if price, ok := c.mockPrices[ticker]; ok {
		return price
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(ticker))
	price := decimal.NewFromInt(50 + int64(h.Sum32()%450))

	c.mockPrices[ticker] = price
	return price
}
