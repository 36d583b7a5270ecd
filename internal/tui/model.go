// Package tui provides an interactive terminal viewer for the dashboard.
package tui

import (
	"strings"

	"github.com/Veraticus/spice-report/internal/cli"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const defaultTableHeight = 10

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.PrimaryColor).
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(cli.PrimaryColor).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(cli.SubtleColor).
				Border(lipgloss.RoundedBorder(), true, true, false, true).
				BorderForeground(cli.BorderColor).
				Padding(0, 1)
)

type tab struct {
	title string
	table table.Model
}

// Model is the bubbletea model of the dashboard viewer.
type Model struct {
	help     help.Model
	keys     KeyMap
	greeting string
	tabs     []tab
	active   int
}

// New builds the viewer for a dashboard.
func New(d model.Dashboard) Model {
	tabs := []tab{
		{title: "Cards", table: newTable(cardColumns(), cardRows(d.Cards))},
		{title: "Top", table: newTable(topColumns(), topRows(d.TopTransactions))},
		{title: "Rates", table: newTable(quoteColumns("Currency", "Rate"), rateRows(d.CurrencyRates))},
		{title: "Stocks", table: newTable(quoteColumns("Stock", "Price"), stockRows(d.StockPrices))},
	}
	tabs[0].table.Focus()

	return Model{
		help:     help.New(),
		keys:     DefaultKeyMap(),
		greeting: d.Greeting,
		tabs:     tabs,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		// table height includes its header row
		height := max(msg.Height-8, 3)
		for i := range m.tabs {
			m.tabs[i].table.SetHeight(height)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.NextTab):
			m.switchTab(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.switchTab(-1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.tabs[m.active].table, cmd = m.tabs[m.active].table.Update(msg)
	return m, cmd
}

func (m *Model) switchTab(delta int) {
	m.tabs[m.active].table.Blur()
	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	m.tabs[m.active].table.Focus()
}

// View implements tea.Model.
func (m Model) View() string {
	titles := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.active {
			titles[i] = activeTabStyle.Render(t.title)
		} else {
			titles[i] = inactiveTabStyle.Render(t.title)
		}
	}

	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render(m.greeting))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom, titles...))
	b.WriteString("\n")
	b.WriteString(m.tabs[m.active].table.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// ActiveTab returns the title of the selected tab.
func (m Model) ActiveTab() string {
	return m.tabs[m.active].title
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(defaultTableHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cli.BorderColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#1A1A1A")).
		Background(cli.InfoColor)
	t.SetStyles(s)

	return t
}

func cardColumns() []table.Column {
	return []table.Column{
		{Title: "Card", Width: 10},
		{Title: "Spent", Width: 14},
		{Title: "Cashback", Width: 10},
	}
}

func cardRows(cards []model.CardSummary) []table.Row {
	rows := make([]table.Row, 0, len(cards))
	for _, c := range cards {
		card := c.LastDigits
		if card == "" {
			card = "(no card)"
		}
		rows = append(rows, table.Row{card, c.TotalSpent.StringFixed(2), c.Cashback.StringFixed(2)})
	}
	return rows
}

func topColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 20},
		{Title: "Description", Width: 30},
		{Title: "Amount", Width: 14},
	}
}

func topRows(entries []model.RankedEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{e.OperationDate, e.Description, e.Amount.StringFixed(2)})
	}
	return rows
}

func quoteColumns(label, value string) []table.Column {
	return []table.Column{
		{Title: label, Width: 10},
		{Title: value, Width: 14},
		{Title: "Error", Width: 40},
	}
}

func rateRows(rates []model.CurrencyRate) []table.Row {
	rows := make([]table.Row, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, table.Row{r.Currency, optional(r.Rate), r.Error})
	}
	return rows
}

func stockRows(prices []model.StockPrice) []table.Row {
	rows := make([]table.Row, 0, len(prices))
	for _, p := range prices {
		rows = append(rows, table.Row{p.Stock, optional(p.Price), p.Error})
	}
	return rows
}

func optional(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
