package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrMissingColumn is returned when a required ledger column is absent.
var ErrMissingColumn = errors.New("missing ledger column")

// Column headers of the bank export.
const (
	ColumnOperationDate = "Дата операции"
	ColumnPaymentDate   = "Дата платежа"
	ColumnCardNumber    = "Номер карты"
	ColumnStatus        = "Статус"
	ColumnAmount        = "Сумма операции"
	ColumnCurrency      = "Валюта операции"
	ColumnCategory      = "Категория"
	ColumnMCC           = "MCC"
	ColumnDescription   = "Описание"
)

var requiredColumns = []string{ColumnOperationDate, ColumnAmount}

// ExcelReader reads the first sheet of a bank export workbook.
type ExcelReader struct {
	logger *slog.Logger
}

// NewExcelReader creates an ExcelReader.
func NewExcelReader(logger *slog.Logger) *ExcelReader {
	return &ExcelReader{logger: logger}
}

// ReadFile opens the workbook at path and reads it.
func (r *ExcelReader) ReadFile(ctx context.Context, path string) ([]model.Transaction, error) {
	f, err := excelize.OpenFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer r.close(f)

	return r.read(ctx, f)
}

// Read reads a workbook from an arbitrary stream.
func (r *ExcelReader) Read(ctx context.Context, src io.Reader) ([]model.Transaction, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer r.close(f)

	return r.read(ctx, f)
}

func (r *ExcelReader) read(ctx context.Context, f *excelize.File) ([]model.Transaction, error) {
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrMissingColumn, sheet)
	}

	columns := indexHeader(rows[0])
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	transactions := make([]model.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(row) {
			continue
		}

		txn, err := columns.transaction(row)
		if err != nil {
			// header is row 1
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		transactions = append(transactions, txn)
	}

	r.logger.Info("read ledger workbook",
		"sheet", sheet,
		"transactions", len(transactions))

	return transactions, nil
}

func (r *ExcelReader) close(f *excelize.File) {
	if err := f.Close(); err != nil {
		r.logger.Warn("failed to close workbook", "error", err)
	}
}

type header map[string]int

func indexHeader(row []string) header {
	columns := make(header, len(row))
	for i, name := range row {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

func (h header) cell(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) optional(row []string, name string) *string {
	if v := h.cell(row, name); v != "" {
		return &v
	}
	return nil
}

func (h header) transaction(row []string) (model.Transaction, error) {
	amount, err := parseAmount(h.cell(row, ColumnAmount))
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		OperationDate: h.cell(row, ColumnOperationDate),
		PaymentDate:   h.cell(row, ColumnPaymentDate),
		CardNumber:    h.optional(row, ColumnCardNumber),
		Status:        h.cell(row, ColumnStatus),
		Amount:        amount,
		Currency:      h.cell(row, ColumnCurrency),
		Category:      h.cell(row, ColumnCategory),
		MCC:           h.cell(row, ColumnMCC),
		Description:   h.optional(row, ColumnDescription),
	}, nil
}

// parseAmount accepts both decimal separators. An empty cell is a missing amount.
func parseAmount(raw string) (decimal.NullDecimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	v, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return decimal.NewNullDecimal(v), nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
