package ingest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var ledgerHeader = []any{
	ColumnOperationDate, ColumnPaymentDate, ColumnCardNumber, ColumnStatus,
	ColumnAmount, ColumnCurrency, "Кэшбэк", ColumnCategory, ColumnMCC, ColumnDescription,
}

func writeWorkbook(t *testing.T, rows ...[]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "operations.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelReaderReadFile(t *testing.T) {
	path := writeWorkbook(t,
		ledgerHeader,
		[]any{"31.12.2021 16:44:00", "31.12.2021", "*7197", "OK", -160.89, "RUB", "", "Супермаркеты", "5411", "Колхоз"},
		[]any{"31.12.2021 01:23:42", "31.12.2021", "", "OK", "-64,00", "RUB", "", "Связь", "4814", ""},
		[]any{},
		[]any{"30.12.2021 17:50:30", "30.12.2021", "*5091", "FAILED", "", "RUB", "", "Переводы", "", "Иван"},
	)

	txns, err := NewExcelReader(common.DiscardLogger()).ReadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	first := txns[0]
	assert.Equal(t, "31.12.2021 16:44:00", first.OperationDate)
	assert.Equal(t, "31.12.2021", first.PaymentDate)
	require.NotNil(t, first.CardNumber)
	assert.Equal(t, "*7197", *first.CardNumber)
	assert.Equal(t, "OK", first.Status)
	assert.True(t, first.Amount.Valid)
	assert.True(t, decimal.RequireFromString("-160.89").Equal(first.Amount.Decimal))
	assert.Equal(t, "RUB", first.Currency)
	assert.Equal(t, "Супермаркеты", first.Category)
	assert.Equal(t, "5411", first.MCC)
	require.NotNil(t, first.Description)
	assert.Equal(t, "Колхоз", *first.Description)

	second := txns[1]
	assert.Nil(t, second.CardNumber)
	assert.Nil(t, second.Description)
	assert.True(t, decimal.RequireFromString("-64").Equal(second.Amount.Decimal))

	third := txns[2]
	assert.False(t, third.Amount.Valid)
	assert.Equal(t, "FAILED", third.Status)
}

func TestExcelReaderRead(t *testing.T) {
	path := writeWorkbook(t,
		[]any{ColumnAmount, ColumnOperationDate},
		[]any{"100", "01.01.2022 00:00:00"},
	)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	txns, err := NewExcelReader(common.DiscardLogger()).Read(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "01.01.2022 00:00:00", txns[0].OperationDate)
	assert.Empty(t, txns[0].Category)
}

func TestExcelReaderErrors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		rows    [][]any
	}{
		{
			name:    "missing amount column",
			rows:    [][]any{{ColumnOperationDate, ColumnCategory}, {"01.01.2022 00:00:00", "Кафе"}},
			wantErr: ErrMissingColumn,
		},
		{
			name:    "empty sheet",
			rows:    nil,
			wantErr: ErrMissingColumn,
		},
		{
			name: "unparsable amount",
			rows: [][]any{ledgerHeader, {"01.01.2022 00:00:00", "", "", "", "n/a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, tt.rows...)

			_, err := NewExcelReader(common.DiscardLogger()).ReadFile(context.Background(), path)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
		valid bool
	}{
		{input: "-160.89", want: "-160.89", valid: true},
		{input: "-1 200,50", want: "-1200.5", valid: true},
		{input: " 75 ", want: "75", valid: true},
		{input: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Decimal.String())
			}
		})
	}
}
