package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/Veraticus/spice-report/internal/service"
	"golang.org/x/sync/errgroup"
)

// DashboardReportName is the name the dashboard is saved under.
const DashboardReportName = "dashboard"

// DashboardDateLayout is the format of the dashboard reference date.
const DashboardDateLayout = model.PaymentDateLayout

// Greeting picks a salutation for the hour of t.
func Greeting(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 6:
		return "Good night"
	case hour < 12:
		return "Good morning"
	case hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// Assembler builds the month-to-date dashboard from the engine and the
// market data providers.
type Assembler struct {
	engine      *Engine
	rates       service.RateProvider
	quotes      service.QuoteProvider
	settingsErr error
	currencies  []string
	stocks      []string
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithRates sets the exchange rate provider and the currencies to request.
func WithRates(p service.RateProvider, currencies []string) AssemblerOption {
	return func(a *Assembler) {
		a.rates = p
		a.currencies = currencies
	}
}

// WithQuotes sets the stock quote provider and the tickers to request.
func WithQuotes(p service.QuoteProvider, stocks []string) AssemblerOption {
	return func(a *Assembler) {
		a.quotes = p
		a.stocks = stocks
	}
}

// WithSettingsError records that user settings could not be loaded. Market
// sections then carry the failure instead of data.
func WithSettingsError(err error) AssemblerOption {
	return func(a *Assembler) {
		a.settingsErr = err
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(engine *Engine, opts ...AssemblerOption) *Assembler {
	a := &Assembler{engine: engine}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the dashboard for the month of date (DD.MM.YYYY), covering
// the first of that month up to date.
func (a *Assembler) Assemble(ctx context.Context, txns []model.Transaction, date string) (model.Dashboard, error) {
	logger := a.engine.logger

	reference, err := time.Parse(DashboardDateLayout, date)
	if err != nil {
		return model.Dashboard{}, a.fail(fmt.Errorf("%w: reference %q", common.ErrMalformedDate, date))
	}
	start := time.Date(reference.Year(), reference.Month(), 1, 0, 0, 0, 0, reference.Location())

	monthToDate, err := filterBetween(txns, model.FieldOperation, start, reference)
	if err != nil {
		return model.Dashboard{}, a.fail(err)
	}

	top, err := a.engine.Top5(monthToDate)
	if err != nil {
		return model.Dashboard{}, a.fail(err)
	}

	dashboard := model.Dashboard{
		Greeting:        Greeting(a.engine.now()),
		Cards:           a.engine.CardInfo(monthToDate),
		TopTransactions: top,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		dashboard.CurrencyRates, fetchErr = a.resolveRates(gctx)
		return fetchErr
	})
	g.Go(func() error {
		var fetchErr error
		dashboard.StockPrices, fetchErr = a.resolveQuotes(gctx)
		return fetchErr
	})
	if err := g.Wait(); err != nil {
		return model.Dashboard{}, a.fail(err)
	}

	logger.Info("assembled dashboard",
		"date", date,
		"transactions", len(monthToDate),
		"cards", len(dashboard.Cards),
		"rates", len(dashboard.CurrencyRates),
		"stocks", len(dashboard.StockPrices))

	return dashboard, nil
}

func (a *Assembler) resolveRates(ctx context.Context) ([]model.CurrencyRate, error) {
	if a.settingsErr != nil {
		return []model.CurrencyRate{{Error: settingsMessage(a.settingsErr)}}, nil
	}
	if a.rates == nil || len(a.currencies) == 0 {
		return []model.CurrencyRate{}, nil
	}

	rates, err := a.rates.Rates(ctx, a.currencies)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.engine.logger.Warn("currency rates unavailable", "error", err)
		return []model.CurrencyRate{{Error: fmt.Sprintf("request failed: %v", err)}}, nil
	}
	return rates, nil
}

func (a *Assembler) resolveQuotes(ctx context.Context) ([]model.StockPrice, error) {
	if a.settingsErr != nil {
		return []model.StockPrice{{Error: settingsMessage(a.settingsErr)}}, nil
	}
	if a.quotes == nil || len(a.stocks) == 0 {
		return []model.StockPrice{}, nil
	}

	prices, err := a.quotes.Quotes(ctx, a.stocks)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.engine.logger.Warn("stock prices unavailable", "error", err)
		return []model.StockPrice{{Error: fmt.Sprintf("request failed: %v", err)}}, nil
	}
	return prices, nil
}

// fail logs the underlying cause and hides it behind the generic report error.
func (a *Assembler) fail(err error) error {
	a.engine.logger.Error("dashboard failed", "error", err)
	return common.NewUserError("failed to build dashboard", common.ErrReportFailed)
}

func settingsMessage(err error) string {
	return fmt.Sprintf("failed to load user settings: %v", err)
}
