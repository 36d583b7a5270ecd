package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/spice-report/internal/cli"
	"github.com/Veraticus/spice-report/internal/config"
	"github.com/Veraticus/spice-report/internal/market"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/Veraticus/spice-report/internal/report"
	"github.com/Veraticus/spice-report/internal/sink"
	"github.com/Veraticus/spice-report/internal/tui"
	"github.com/spf13/cobra"
)

// unavailableQuotes stands in for the quote provider when it cannot be built,
// so the failure lands on the dashboard instead of aborting it.
type unavailableQuotes struct {
	err error
}

func (u unavailableQuotes) Quotes(context.Context, []string) ([]model.StockPrice, error) {
	return nil, u.err
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the month-to-date overview",
		Long: `Show the month-to-date overview: spending per card, the five largest
purchases, exchange rates and stock prices.

The period runs from the first day of the month of --date up to --date.
Currencies and stocks come from the user settings file.`,
		RunE: runDashboard,
	}

	cmd.Flags().String("date", "", "reference date as DD.MM.YYYY (default: today)")
	cmd.Flags().BoolP("interactive", "i", false, "browse the dashboard in a terminal UI")
	cmd.Flags().Bool("json", false, "print the dashboard as JSON")
	cmd.MarkFlagsMutuallyExclusive("interactive", "json")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	date, _ := cmd.Flags().GetString("date")
	interactive, _ := cmd.Flags().GetBool("interactive")
	asJSON, _ := cmd.Flags().GetBool("json")
	if date == "" {
		date = time.Now().Format(report.DashboardDateLayout)
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	txns, err := s.ledger(ctx)
	if err != nil {
		return err
	}

	opts, cleanup := s.marketOptions(cmd.ErrOrStderr(), !asJSON && !interactive)
	defer cleanup()

	dashboard, err := report.NewAssembler(s.engine, opts...).Assemble(ctx, txns, date)
	if err != nil {
		return err
	}

	if err := s.save(ctx, report.DashboardReportName, dashboard); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case asJSON:
		data, err := sink.Encode(dashboard)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case interactive:
		return tui.Run(ctx, dashboard)
	default:
		_, err = fmt.Fprintln(out, cli.RenderDashboard(dashboard))
		return err
	}
}

// marketOptions wires the rate and quote providers for the currencies and
// stocks in the user settings.
func (s *session) marketOptions(progress io.Writer, showProgress bool) ([]report.AssemblerOption, func()) {
	settings, err := config.LoadUserSettings(s.cfg.Settings)
	if err != nil {
		s.logger.Warn("User settings unavailable", "path", s.cfg.Settings, "error", err)
		return []report.AssemblerOption{report.WithSettingsError(err)}, func() {}
	}

	base := market.Config{
		Logger:            s.logger,
		Timeout:           s.cfg.Market.Timeout,
		CacheTTL:          s.cfg.Market.CacheTTL,
		RequestsPerMinute: s.cfg.Market.RequestsPerMinute,
		RetryAttempts:     s.cfg.Market.RetryAttempts,
	}

	rates := base
	rates.URL = s.cfg.Market.CBRURL
	opts := []report.AssemblerOption{
		report.WithRates(market.NewCBRClient(rates), settings.Currencies),
	}

	quotesConfig := base
	quotesConfig.URL = s.cfg.Market.AlphaVantageURL
	quotesConfig.APIKey = s.cfg.Market.AlphaVantageKey
	quotes, err := market.NewAlphaVantageClient(quotesConfig)
	if err != nil {
		s.logger.Warn("Stock quotes unavailable", "error", err)
		return append(opts, report.WithQuotes(unavailableQuotes{err: err}, settings.Stocks)), func() {}
	}

	if showProgress && len(settings.Stocks) > 0 {
		quotes.OnProgress(cli.NewProgress(progress, "Fetching stock quotes", len(settings.Stocks)))
	}

	return append(opts, report.WithQuotes(quotes, settings.Stocks)), quotes.Close
}
