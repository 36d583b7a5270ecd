package sheets

import (
	"errors"
	"fmt"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedReport is returned for report types without a sheet layout.
var ErrUnsupportedReport = errors.New("report type has no sheet layout")

// Table is a report rendered as sheet rows. Money lists the zero-based
// columns that hold amounts.
type Table struct {
	Rows  [][]any
	Money []int
}

// Render lays out a report as rows with a header line.
func Render(report any) (Table, error) {
	switch r := report.(type) {
	case []model.Transaction:
		return transactionTable(r), nil
	case []model.CardSummary:
		return cardTable(r), nil
	case []model.RankedEntry:
		return rankedTable(r), nil
	case model.SavingsReport:
		return Table{
			Rows:  [][]any{{"Investment Bank"}, {money(r.Total)}},
			Money: []int{0},
		}, nil
	case model.Dashboard:
		return dashboardTable(r), nil
	default:
		return Table{}, fmt.Errorf("%w: %T", ErrUnsupportedReport, report)
	}
}

func transactionTable(txns []model.Transaction) Table {
	rows := make([][]any, 0, len(txns)+1)
	rows = append(rows, []any{
		"Operation date", "Payment date", "Card", "Status", "Amount",
		"Currency", "Category", "MCC", "Description",
	})
	for _, t := range txns {
		rows = append(rows, []any{
			t.OperationDate,
			t.PaymentDate,
			optional(t.CardNumber),
			t.Status,
			nullMoney(t.Amount),
			t.Currency,
			t.Category,
			t.MCC,
			optional(t.Description),
		})
	}
	return Table{Rows: rows, Money: []int{4}}
}

func cardTable(cards []model.CardSummary) Table {
	rows := make([][]any, 0, len(cards)+1)
	rows = append(rows, []any{"Card", "Total spent", "Cashback"})
	for _, c := range cards {
		rows = append(rows, []any{c.LastDigits, money(c.TotalSpent), money(c.Cashback)})
	}
	return Table{Rows: rows, Money: []int{1, 2}}
}

func rankedTable(entries []model.RankedEntry) Table {
	rows := make([][]any, 0, len(entries)+1)
	rows = append(rows, []any{"Date", "Description", "Amount"})
	for _, e := range entries {
		rows = append(rows, []any{e.OperationDate, e.Description, money(e.Amount)})
	}
	return Table{Rows: rows, Money: []int{2}}
}

// dashboardTable stacks the dashboard sections vertically, each with a
// title row, separated by a blank row.
func dashboardTable(d model.Dashboard) Table {
	rows := [][]any{{d.Greeting}, {}}

	section := func(title string, t Table) {
		rows = append(rows, []any{title})
		rows = append(rows, t.Rows...)
		rows = append(rows, []any{})
	}

	section("Cards", cardTable(d.Cards))
	section("Top transactions", rankedTable(d.TopTransactions))

	rates := [][]any{{"Currency", "Rate", "Error"}}
	for _, r := range d.CurrencyRates {
		rates = append(rates, []any{r.Currency, pointerMoney(r.Rate), r.Error})
	}
	section("Currency rates", Table{Rows: rates})

	stocks := [][]any{{"Stock", "Price", "Error"}}
	for _, s := range d.StockPrices {
		stocks = append(stocks, []any{s.Stock, pointerMoney(s.Price), s.Error})
	}
	section("Stock prices", Table{Rows: stocks})

	return Table{Rows: rows[:len(rows)-1]}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return money(d.Decimal)
}

func pointerMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
