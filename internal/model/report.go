package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardSummary aggregates the spending of one card.
type CardSummary struct {
	LastDigits string          `json:"last_digits"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	Cashback   decimal.Decimal `json:"cashback"`
}

// RankedEntry is a single line of the top transactions list.
type RankedEntry struct {
	OperationDate string          `json:"operation_date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
}

// SavingsReport is the result of the round-up savings calculation.
type SavingsReport struct {
	Total decimal.Decimal `json:"Investment Bank"`
}

// CurrencyRate is a currency quote as delivered by a rate provider.
// Error is set when the rate could not be resolved.
type CurrencyRate struct {
	Rate     *decimal.Decimal `json:"rate"`
	Currency string           `json:"currency,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// StockPrice is a stock quote as delivered by a quote provider.
type StockPrice struct {
	Price *decimal.Decimal `json:"price"`
	Stock string           `json:"stock,omitempty"`
	Error string           `json:"error,omitempty"`
}

// Dashboard is the combined month-to-date overview.
type Dashboard struct {
	Greeting        string         `json:"greeting"`
	Cards           []CardSummary  `json:"cards"`
	TopTransactions []RankedEntry  `json:"top_transactions"`
	CurrencyRates   []CurrencyRate `json:"currency_rates"`
	StockPrices     []StockPrice   `json:"stock_prices"`
}

// ArchivedReport is a report stored in the local archive.
type ArchivedReport struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Payload   string
}
