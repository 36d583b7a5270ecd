package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const archiveTimeLayout = "2006-01-02 15:04"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// Money formats an amount with two decimals, colored by sign.
func Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	switch {
	case d.IsNegative():
		return NegativeStyle.Render(s)
	case d.IsPositive():
		return PositiveStyle.Render(s)
	default:
		return s
	}
}

// RenderCards renders the per-card spending summary.
func RenderCards(cards []model.CardSummary) string {
	if len(cards) == 0 {
		return SubtleStyle.Render("No card spending in this period.")
	}

	t := newTable("Card", "Spent", "Cashback")
	for _, c := range cards {
		card := c.LastDigits
		if card == "" {
			card = "(no card)"
		}
		t.Row(card, Money(c.TotalSpent), Money(c.Cashback))
	}
	return t.String()
}

// RenderTop renders ranked transactions.
func RenderTop(entries []model.RankedEntry) string {
	if len(entries) == 0 {
		return SubtleStyle.Render("No transactions in this period.")
	}

	t := newTable("#", "Date", "Description", "Amount")
	for i, e := range entries {
		t.Row(fmt.Sprint(i+1), e.OperationDate, e.Description, Money(e.Amount))
	}
	return t.String()
}

// RenderTransactions renders the transactions of a category report with a total.
func RenderTransactions(category string, txns []model.Transaction, total decimal.Decimal) string {
	title := FormatTitle(fmt.Sprintf("Spending in %q", category))
	if len(txns) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, SubtleStyle.Render("No matching transactions."))
	}

	t := newTable("Date", "Card", "Description", "Amount")
	for _, txn := range txns {
		amount := ""
		if txn.Amount.Valid {
			amount = Money(txn.Amount.Decimal)
		}
		t.Row(txn.OperationDate, deref(txn.CardNumber), deref(txn.Description), amount)
	}

	summary := fmt.Sprintf("%d transactions, total %s", len(txns), Money(total))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String(), SubtitleStyle.Render(summary))
}

// RenderSavings renders the round-up savings result.
func RenderSavings(month string, limit decimal.Decimal, report model.SavingsReport) string {
	content := fmt.Sprintf("Month: %s\nRounding step: %s\nWould be saved: %s",
		month, limit.String(), Money(report.Total))
	return RenderBox(ChartIcon+" Investment Bank", content)
}

// RenderDashboard renders every dashboard section.
func RenderDashboard(d model.Dashboard) string {
	sections := []string{
		FormatTitle(d.Greeting),
		TitleStyle.Render("Cards"),
		RenderCards(d.Cards),
		"",
		TitleStyle.Render("Top transactions"),
		RenderTop(d.TopTransactions),
		"",
		TitleStyle.Render("Currency rates"),
		renderRates(d.CurrencyRates),
		"",
		TitleStyle.Render("Stock prices"),
		renderStocks(d.StockPrices),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderRates(rates []model.CurrencyRate) string {
	if len(rates) == 0 {
		return SubtleStyle.Render("No currencies configured.")
	}
	var lines []string
	for _, r := range rates {
		lines = append(lines, quoteLine(r.Currency, r.Rate, r.Error))
	}
	return strings.Join(lines, "\n")
}

func renderStocks(prices []model.StockPrice) string {
	if len(prices) == 0 {
		return SubtleStyle.Render("No stocks configured.")
	}
	var lines []string
	for _, p := range prices {
		lines = append(lines, quoteLine(p.Stock, p.Price, p.Error))
	}
	return strings.Join(lines, "\n")
}

func quoteLine(label string, value *decimal.Decimal, errMsg string) string {
	if label == "" {
		label = "-"
	}
	if errMsg != "" || value == nil {
		return fmt.Sprintf("%-8s %s", label, FormatWarning(errMsg))
	}
	return fmt.Sprintf("%-8s %s", label, value.String())
}

// RenderArchive lists archived reports.
func RenderArchive(reports []model.ArchivedReport) string {
	if len(reports) == 0 {
		return SubtleStyle.Render("The archive is empty.")
	}

	t := newTable("ID", "Report", "Created", "Size")
	for _, r := range reports {
		t.Row(r.ID, r.Name, r.CreatedAt.Local().Format(archiveTimeLayout), fmt.Sprintf("%d B", len(r.Payload)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, FormatTitle(FolderIcon+" Archived reports"), t.String())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
