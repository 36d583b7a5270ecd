// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/spice-report/internal/model"
)

// ReportSink persists a finished report under a name.
type ReportSink interface {
	Save(ctx context.Context, name string, report any) error
}

// TransactionSource materializes a ledger into memory.
type TransactionSource interface {
	Load(ctx context.Context, path string) ([]model.Transaction, error)
}

// RateProvider resolves exchange rates for the given currency codes.
// Per-currency failures are reported through CurrencyRate.Error.
type RateProvider interface {
	Rates(ctx context.Context, currencies []string) ([]model.CurrencyRate, error)
}

// QuoteProvider resolves stock prices for the given tickers.
// Per-symbol failures are reported through StockPrice.Error.
type QuoteProvider interface {
	Quotes(ctx context.Context, symbols []string) ([]model.StockPrice, error)
}

// ReportSinkFunc adapts a function to ReportSink.
type ReportSinkFunc func(ctx context.Context, name string, report any) error

// Save implements ReportSink.
func (f ReportSinkFunc) Save(ctx context.Context, name string, report any) error {
	return f(ctx, name, report)
}
