// Package market fetches exchange rates and stock quotes for the dashboard.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRetryDelay = 500 * time.Millisecond
	maxErrorBody      = 512
)

// Config configures a market data client.
type Config struct {
	Logger            *slog.Logger
	HTTPClient        *http.Client
	URL               string
	APIKey            string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RetryDelay        time.Duration
	RequestsPerMinute int
	RetryAttempts     int
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return common.DiscardLogger()
	}
	return c.Logger
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func (c Config) retryOptions() common.RetryOptions {
	delay := c.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	return common.RetryOptions{
		MaxAttempts:  c.RetryAttempts,
		InitialDelay: delay,
		MaxDelay:     8 * delay,
		Multiplier:   2.0,
	}
}

// getJSON fetches target and decodes the body into out, retrying transient failures.
func getJSON(ctx context.Context, client *http.Client, target string, opts common.RetryOptions, out any) error {
	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return common.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return common.Permanent(ctx.Err())
			}
			// url.Error carries the query string, which may hold an API key
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				err = urlErr.Err
			}
			return &common.RetryableError{Err: fmt.Errorf("transport error: %w", err), Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		if err := statusError(resp); err != nil {
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return common.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}, opts)
}

func statusError(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
	case resp.StatusCode >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return common.Permanent(err)
	}
}
