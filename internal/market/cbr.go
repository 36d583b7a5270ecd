package market

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultCBRURL is the daily rates feed of the Central Bank of Russia.
const DefaultCBRURL = "https://www.cbr-xml-daily.ru/daily_json.js"

type cbrValute struct {
	CharCode string          `json:"CharCode"`
	Name     string          `json:"Name"`
	Value    decimal.Decimal `json:"Value"`
	Nominal  int             `json:"Nominal"`
}

type cbrDaily struct {
	Valute map[string]cbrValute `json:"Valute"`
	Date   string               `json:"Date"`
}

// CBRClient reads currency rates from the CBR daily feed.
type CBRClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	url        string
	retry      common.RetryOptions
}

// NewCBRClient creates a CBRClient.
func NewCBRClient(cfg Config) *CBRClient {
	url := cfg.URL
	if url == "" {
		url = DefaultCBRURL
	}
	return &CBRClient{
		logger:     cfg.logger(),
		httpClient: cfg.httpClient(),
		url:        url,
		retry:      cfg.retryOptions(),
	}
}

// Rates returns one entry per requested currency, in request order. A
// currency missing from the feed is flagged rather than failing the batch.
func (c *CBRClient) Rates(ctx context.Context, currencies []string) ([]model.CurrencyRate, error) {
	var daily cbrDaily
	if err := getJSON(ctx, c.httpClient, c.url, c.retry, &daily); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	if daily.Valute == nil {
		c.logger.Warn("rates feed has no Valute section", "url", c.url)
		return []model.CurrencyRate{{Error: "failed to extract data: missing Valute section"}}, nil
	}

	rates := make([]model.CurrencyRate, 0, len(currencies))
	for _, currency := range currencies {
		code := strings.ToUpper(strings.TrimSpace(currency))
		valute, ok := daily.Valute[code]
		if !ok {
			rates = append(rates, model.CurrencyRate{Currency: currency, Error: "rate not found"})
			continue
		}
		rate := valute.Value
		rates = append(rates, model.CurrencyRate{Currency: currency, Rate: &rate})
	}

	c.logger.Debug("fetched currency rates", "date", daily.Date, "requested", len(currencies))

	return rates, nil
}
