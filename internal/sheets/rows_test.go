package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTransactions(t *testing.T) {
	card := "*7197"
	table, err := Render([]model.Transaction{
		{OperationDate: "31.12.2021 16:44:00", PaymentDate: "31.12.2021", CardNumber: &card, Status: "OK",
			Amount: model.Amount(decimal.RequireFromString("-160.89")), Currency: "RUB", Category: "Супермаркеты", MCC: "5411"},
		{OperationDate: "30.12.2021 10:00:00", Status: "FAILED"},
	})
	require.NoError(t, err)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, []int{4}, table.Money)
	assert.Equal(t, []any{"31.12.2021 16:44:00", "31.12.2021", "*7197", "OK", "-160.89", "RUB", "Супермаркеты", "5411", ""}, table.Rows[1])
	assert.Equal(t, []any{"30.12.2021 10:00:00", "", "", "FAILED", "", "", "", "", ""}, table.Rows[2])
}

func TestRenderDashboard(t *testing.T) {
	rate := decimal.RequireFromString("91.8946")
	table, err := Render(model.Dashboard{
		Greeting:        "Good evening",
		Cards:           []model.CardSummary{{LastDigits: "1234", TotalSpent: decimal.NewFromInt(-100), Cashback: decimal.NewFromInt(1)}},
		TopTransactions: []model.RankedEntry{{OperationDate: "01.11.2021", Description: "Books", Amount: decimal.NewFromInt(-100)}},
		CurrencyRates:   []model.CurrencyRate{{Currency: "USD", Rate: &rate}},
		StockPrices:     []model.StockPrice{{Stock: "AAPL", Error: "data not found"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []any{"Good evening"}, table.Rows[0])
	assert.Contains(t, table.Rows, []any{"Cards"})
	assert.Contains(t, table.Rows, []any{"Top transactions"})
	assert.Contains(t, table.Rows, []any{"USD", "91.8946", ""})
	assert.Contains(t, table.Rows, []any{"AAPL", "", "data not found"})
	assert.Equal(t, []any{"AAPL", "", "data not found"}, table.Rows[len(table.Rows)-1])
}

func TestRenderUnsupported(t *testing.T) {
	_, err := Render(map[string]int{})
	assert.ErrorIs(t, err, ErrUnsupportedReport)
}

func TestMockWriter(t *testing.T) {
	mock := NewMockWriter()
	ctx := context.Background()

	require.NoError(t, mock.Save(ctx, "top", []model.RankedEntry{}))
	assert.ErrorIs(t, mock.Save(ctx, "odd", 1), ErrUnsupportedReport)

	boom := errors.New("quota exhausted")
	mock.SetSaveError(boom)
	assert.ErrorIs(t, mock.Save(ctx, "cards", []model.CardSummary{}), boom)

	mock.AssertSaveCalled(t, 3)
	calls := mock.GetSaveCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, "top", calls[0].Name)
	assert.Len(t, calls[0].Table.Rows, 1)

	mock.Reset()
	mock.AssertSaveCalled(t, 0)
}
