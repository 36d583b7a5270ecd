package report

import (
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type txnOption func(*model.Transaction)

func withCategory(c string) txnOption {
	return func(t *model.Transaction) { t.Category = c }
}

func withCard(c string) txnOption {
	return func(t *model.Transaction) { t.CardNumber = model.Ptr(c) }
}

func withDescription(d string) txnOption {
	return func(t *model.Transaction) { t.Description = model.Ptr(d) }
}

func withPaymentDate(d string) txnOption {
	return func(t *model.Transaction) { t.PaymentDate = d }
}

func withoutAmount() txnOption {
	return func(t *model.Transaction) { t.Amount = decimal.NullDecimal{} }
}

func txn(date, amount string, opts ...txnOption) model.Transaction {
	t := model.Transaction{
		OperationDate: date,
		Amount:        model.Amount(dec(amount)),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
