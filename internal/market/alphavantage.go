package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultAlphaVantageURL is the Alpha Vantage query endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

var (
	errNoQuote        = errors.New("data not found")
	errMalformedQuote = errors.New("malformed quote")
)

type globalQuote struct {
	Quote       map[string]string `json:"Global Quote"`
	Note        string            `json:"Note"`
	Information string            `json:"Information"`
}

// ProgressFunc is told how many of the requested symbols are resolved.
type ProgressFunc func(done, total int)

// AlphaVantageClient resolves stock prices through the GLOBAL_QUOTE endpoint.
type AlphaVantageClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	limiter    *rateLimiter
	cache      *quoteCache
	onProgress ProgressFunc
	baseURL    string
	apiKey     string
	retry      common.RetryOptions
}

// NewAlphaVantageClient creates a client. The API key is required.
func NewAlphaVantageClient(cfg Config) (*AlphaVantageClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: alpha vantage API key", common.ErrMissingConfig)
	}
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}

	return &AlphaVantageClient{
		logger:     cfg.logger(),
		httpClient: cfg.httpClient(),
		limiter:    newRateLimiter(cfg.RequestsPerMinute),
		cache:      newQuoteCache(cfg.CacheTTL),
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		retry:      cfg.retryOptions(),
	}, nil
}

// OnProgress registers a callback invoked after each symbol.
func (c *AlphaVantageClient) OnProgress(fn ProgressFunc) {
	c.onProgress = fn
}

// Quotes returns one entry per symbol. Failures for a single symbol are
// flagged on its entry; only cancellation fails the whole call.
func (c *AlphaVantageClient) Quotes(ctx context.Context, symbols []string) ([]model.StockPrice, error) {
	c.cache.prune()

	prices := make([]model.StockPrice, 0, len(symbols))
	for i, symbol := range symbols {
		price, err := c.quote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("stock quote unavailable", "stock", symbol, "error", err)
			prices = append(prices, model.StockPrice{Stock: symbol, Error: quoteMessage(err)})
		} else {
			prices = append(prices, model.StockPrice{Stock: symbol, Price: &price})
		}

		if c.onProgress != nil {
			c.onProgress(i+1, len(symbols))
		}
	}

	return prices, nil
}

func (c *AlphaVantageClient) quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if price, ok := c.cache.get(symbol); ok {
		c.logger.Debug("stock quote served from cache", "stock", symbol)
		return price, nil
	}

	if err := c.limiter.wait(ctx); err != nil {
		return decimal.Decimal{}, err
	}

	var resp globalQuote
	if err := getJSON(ctx, c.httpClient, c.queryURL(symbol), c.retry, &resp); err != nil {
		return decimal.Decimal{}, err
	}

	if note := firstNonEmpty(resp.Note, resp.Information); note != "" && len(resp.Quote) == 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", common.ErrRateLimit, note)
	}

	raw, ok := resp.Quote["05. price"]
	if !ok {
		return decimal.Decimal{}, errNoQuote
	}
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price %q: %w", errMalformedQuote, raw, err)
	}

	c.cache.set(symbol, price)
	return price, nil
}

func (c *AlphaVantageClient) queryURL(symbol string) string {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)
	return c.baseURL + "?" + q.Encode()
}

// Close releases the rate limiter.
func (c *AlphaVantageClient) Close() {
	c.limiter.Close()
}

func quoteMessage(err error) string {
	switch {
	case errors.Is(err, errNoQuote):
		return errNoQuote.Error()
	case errors.Is(err, errMalformedQuote):
		return fmt.Sprintf("failed to extract data: %v", err)
	default:
		return fmt.Sprintf("request failed: %v", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
