package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/shopspring/decimal"
)

// Layouts used by the bank ledger export.
const (
	OperationDateLayout = "02.01.2006 15:04:05"
	PaymentDateLayout   = "02.01.2006"
)

// DateField selects which ledger date a window or filter looks at.
type DateField string

// Date fields.
const (
	FieldOperation DateField = "operation"
	FieldPayment   DateField = "payment"
)

// Transaction represents a single card operation from the ledger.
// Dates are kept as they appear in the export and parsed strictly on use.
type Transaction struct {
	CardNumber    *string             `json:"card_number"`
	Description   *string             `json:"description"`
	OperationDate string              `json:"operation_date"`
	PaymentDate   string              `json:"payment_date,omitempty"`
	Status        string              `json:"status,omitempty"`
	Currency      string              `json:"currency,omitempty"`
	Category      string              `json:"category"`
	MCC           string              `json:"mcc,omitempty"`
	Amount        decimal.NullDecimal `json:"amount"`
}

// OperationTime parses the operation timestamp.
func (t Transaction) OperationTime() (time.Time, error) {
	return parseDate(t.OperationDate, OperationDateLayout, "operation date")
}

// PaymentTime parses the payment date.
func (t Transaction) PaymentTime() (time.Time, error) {
	return parseDate(t.PaymentDate, PaymentDateLayout, "payment date")
}

// Time parses the date selected by field.
func (t Transaction) Time(field DateField) (time.Time, error) {
	switch field {
	case FieldPayment:
		return t.PaymentTime()
	case FieldOperation, "":
		return t.OperationTime()
	default:
		return time.Time{}, fmt.Errorf("unknown date field %q", field)
	}
}

// HasAmount reports whether the ledger row carried an amount.
func (t Transaction) HasAmount() bool {
	return t.Amount.Valid
}

// IsDebit reports whether the transaction is an expense.
func (t Transaction) IsDebit() bool {
	return t.Amount.Valid && t.Amount.Decimal.IsNegative()
}

func parseDate(value, layout, what string) (time.Time, error) {
	parsed, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q does not match %s", common.ErrMalformedDate, what, value, layout)
	}
	return parsed, nil
}

// Ptr returns a pointer to s. Handy for optional ledger fields.
func Ptr(s string) *string {
	return &s
}

// Amount builds a valid ledger amount.
func Amount(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(v)
}
