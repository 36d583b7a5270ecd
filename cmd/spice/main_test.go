package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/config"
	"github.com/Veraticus/spice-report/internal/ingest"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/Veraticus/spice-report/internal/report"
	"github.com/Veraticus/spice-report/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var ledgerRows = [][]any{
	{ingest.ColumnOperationDate, ingest.ColumnPaymentDate, ingest.ColumnCardNumber, ingest.ColumnStatus,
		ingest.ColumnAmount, ingest.ColumnCurrency, ingest.ColumnCategory, ingest.ColumnMCC, ingest.ColumnDescription},
	{"01.11.2021 10:00:00", "01.11.2021", "*1234", "OK", -100, "RUB", "Супермаркеты", "5411", "Лента"},
	{"10.11.2021 12:00:00", "10.11.2021", "*1234", "OK", -75, "RUB", "Супермаркеты", "5411", "Магнит"},
	{"12.11.2021 09:00:00", "12.11.2021", "*5678", "OK", -120, "RUB", "Фастфуд", "5814", "KFC"},
	{"15.10.2021 08:00:00", "15.10.2021", "*5678", "OK", 500, "RUB", "Пополнения", "", "Пополнение"},
}

// testEnv points the global viper at a fresh ledger and temp directories.
type testEnv struct {
	dir      string
	settings string
	archive  string
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())

	dir := t.TempDir()
	env := testEnv{
		dir:      dir,
		settings: filepath.Join(dir, "user_settings.json"),
		archive:  filepath.Join(dir, "reports.db"),
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range ledgerRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	ledger := filepath.Join(dir, "operations.xlsx")
	require.NoError(t, f.SaveAs(ledger))

	// Defaults rather than overrides, so command flags still win.
	viper.SetDefault("ledger.path", ledger)
	viper.SetDefault("reports.dir", filepath.Join(dir, "reports"))
	viper.SetDefault("reports.category_report", filepath.Join(dir, "report.json"))
	viper.SetDefault("settings.path", env.settings)
	viper.SetDefault("archive.path", env.archive)
	viper.Set("market.alphavantage_key", "")

	return env
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSavingsCommand(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, savingsCmd(), "--month", "2021-11", "--limit", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Investment Bank")
	assert.Contains(t, out, "55.00")
}

func TestSavingsCommandErrors(t *testing.T) {
	tests := []struct {
		want error
		name string
		args []string
	}{
		{name: "malformed month", args: []string{"--month", "11.2021"}, want: common.ErrInvalidMonth},
		{name: "non-positive limit", args: []string{"--month", "2021-11", "--limit", "-5"}, want: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			_, err := execute(t, savingsCmd(), tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("month is required", func(t *testing.T) {
		setupEnv(t)
		_, err := execute(t, savingsCmd())
		assert.Error(t, err)
	})
}

func TestSpendingCommand(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, spendingCmd(), "--category", "Супермаркеты", "--date", "12.11.2021")
	require.NoError(t, err)
	assert.Contains(t, out, "Лента")
	assert.Contains(t, out, "Магнит")
	assert.NotContains(t, out, "KFC")

	data, err := os.ReadFile(filepath.Join(env.dir, "report.json"))
	require.NoError(t, err)

	var written []model.Transaction
	require.NoError(t, json.Unmarshal(data, &written))
	require.Len(t, written, 2)
	assert.Equal(t, "01.11.2021 10:00:00", written[0].OperationDate)
}

func TestSpendingCommandOptions(t *testing.T) {
	env := setupEnv(t)
	output := filepath.Join(env.dir, "custom", "fastfood.json")

	_, err := execute(t, spendingCmd(),
		"--category", "Фастфуд", "--window", "3m", "--field", "payment", "--output", output)
	require.NoError(t, err)
	assert.FileExists(t, output)

	_, err = execute(t, spendingCmd(), "--category", "Фастфуд", "--date", "2021-11-12")
	assert.ErrorIs(t, err, common.ErrMalformedDate)

	setupEnv(t)
	_, err = execute(t, spendingCmd(), "--category", "Фастфуд", "--window", "1y")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestCardsAndTopCommands(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, cardsCmd(), "--month", "2021-11")
	require.NoError(t, err)
	assert.Contains(t, out, "1234")
	assert.Contains(t, out, "-175.00")
	assert.Contains(t, out, "5678")

	out, err = execute(t, topCmd(), "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Пополнение")
	assert.Contains(t, out, "KFC")
	assert.NotContains(t, out, "Магнит")
}

func TestTopCommandRejectsCount(t *testing.T) {
	for _, count := range []string{"0", "-1"} {
		t.Run(count, func(t *testing.T) {
			setupEnv(t)
			_, err := execute(t, topCmd(), "-n", count)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}
}

func TestDashboardCommandWithoutSettings(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, dashboardCmd(), "--date", "12.11.2021", "--json")
	require.NoError(t, err)

	var dashboard model.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &dashboard))
	assert.NotEmpty(t, dashboard.Greeting)

	require.Len(t, dashboard.Cards, 1)
	assert.Equal(t, "1234", dashboard.Cards[0].LastDigits)
	assert.True(t, decimal.NewFromInt(-175).Equal(dashboard.Cards[0].TotalSpent))

	require.Len(t, dashboard.CurrencyRates, 1)
	assert.Contains(t, dashboard.CurrencyRates[0].Error, "failed to load user settings")
	require.Len(t, dashboard.StockPrices, 1)
	assert.Contains(t, dashboard.StockPrices[0].Error, "failed to load user settings")
}

func TestDashboardCommandWithMarkets(t *testing.T) {
	env := setupEnv(t)

	cbr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Valute": {"USD": {"CharCode": "USD", "Value": 73.5}}}`))
	}))
	defer cbr.Close()
	quotes := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Global Quote": {"01. symbol": "AAPL", "05. price": "150.00"}}`))
	}))
	defer quotes.Close()

	require.NoError(t, os.WriteFile(env.settings,
		[]byte(`{"user_currencies": ["USD", "EUR"], "user_stocks": ["AAPL"]}`), 0o600))
	viper.Set("market.cbr_url", cbr.URL)
	viper.Set("market.alphavantage_url", quotes.URL)
	viper.Set("market.alphavantage_key", "demo")
	viper.Set("market.requests_per_minute", 600)

	out, err := execute(t, dashboardCmd(), "--date", "12.11.2021", "--json")
	require.NoError(t, err)

	var dashboard model.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &dashboard))

	require.Len(t, dashboard.CurrencyRates, 2)
	require.NotNil(t, dashboard.CurrencyRates[0].Rate)
	assert.True(t, decimal.RequireFromString("73.5").Equal(*dashboard.CurrencyRates[0].Rate))
	assert.Equal(t, "rate not found", dashboard.CurrencyRates[1].Error)

	require.Len(t, dashboard.StockPrices, 1)
	require.NotNil(t, dashboard.StockPrices[0].Price)
	assert.Equal(t, "AAPL", dashboard.StockPrices[0].Stock)
}

func TestDashboardCommandMissingQuoteKey(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(env.settings, []byte(`{"user_currencies": [], "user_stocks": ["AAPL"]}`), 0o600))

	out, err := execute(t, dashboardCmd(), "--date", "12.11.2021")
	require.NoError(t, err)
	assert.Contains(t, out, "Cards")
	assert.Contains(t, out, "missing configuration")
}

func TestReportsCommands(t *testing.T) {
	env := setupEnv(t)
	viper.Set("archive.enabled", true)

	_, err := execute(t, savingsCmd(), "--month", "2021-11", "--limit", "50")
	require.NoError(t, err)
	_, err = execute(t, cardsCmd())
	require.NoError(t, err)

	archive, err := storage.NewArchive(env.archive, nil)
	require.NoError(t, err)
	stored, err := archive.List(context.Background(), report.SavingsReportName, 0)
	require.NoError(t, err)
	require.NoError(t, archive.Close())
	require.Len(t, stored, 1)

	out, err := execute(t, reportsCmd(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, report.SavingsReportName)
	assert.Contains(t, out, cardsReportName)

	out, err = execute(t, reportsCmd(), "show", stored[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"Investment Bank"`)

	_, err = execute(t, reportsCmd(), "show", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveFlagWritesReportDirectory(t *testing.T) {
	env := setupEnv(t)
	viper.Set("reports.save", true)

	_, err := execute(t, topCmd())
	require.NoError(t, err)
	assert.FileExists(t, config.ReportPath(filepath.Join(env.dir, "reports"), topReportName))
}

func TestMissingLedger(t *testing.T) {
	setupEnv(t)
	viper.Set("ledger.path", filepath.Join(t.TempDir(), "absent.xlsx"))

	_, err := execute(t, cardsCmd())
	assert.Error(t, err)

	viper.Set("ledger.path", filepath.Join(t.TempDir(), "ledger.csv"))
	_, err = execute(t, cardsCmd())
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, versionCmd())
	require.NoError(t, err)
	assert.Equal(t, "spice dev\n", out)
}
