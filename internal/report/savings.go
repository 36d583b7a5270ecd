package report

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
)

// MonthLayout is the format of a savings month, e.g. 2021-10.
const MonthLayout = "2006-01"

// SavingsReportName is the name the savings report is saved under.
const SavingsReportName = "investment_bank"

var one = decimal.NewFromInt(1)

// LimitPayment rounds a debit away from zero to the next multiple of limit.
// Zero stays zero and credits are returned unchanged.
func LimitPayment(limit, amount decimal.Decimal) (decimal.Decimal, error) {
	if !limit.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be positive", common.ErrInvalidLimit, limit)
	}
	if amount.IsZero() {
		return decimal.Zero, nil
	}
	if amount.IsPositive() {
		return amount, nil
	}

	// QuoRem truncates toward zero; step once more to floor a negative quotient.
	quotient, remainder := amount.QuoRem(limit, 0)
	if !remainder.IsZero() {
		quotient = quotient.Sub(one)
	}
	return quotient.Mul(limit), nil
}

// FilterByMonth keeps the transactions whose operation date falls in month.
func (e *Engine) FilterByMonth(month string, txns []model.Transaction) ([]model.Transaction, error) {
	target, err := time.Parse(MonthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %q does not match YYYY-MM", common.ErrInvalidMonth, month)
	}

	selected := make([]model.Transaction, 0, len(txns))
	for i, txn := range txns {
		ts, err := txn.OperationTime()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if ts.Year() == target.Year() && ts.Month() == target.Month() {
			selected = append(selected, txn)
		}
	}
	return selected, nil
}

// InvestmentBank totals what rounding every debit of the month up to limit
// would have put aside.
func (e *Engine) InvestmentBank(month string, txns []model.Transaction, limit decimal.Decimal) (model.SavingsReport, error) {
	if !limit.IsPositive() {
		return model.SavingsReport{}, fmt.Errorf("%w: %s must be positive", common.ErrInvalidLimit, limit)
	}

	monthly, err := e.FilterByMonth(month, txns)
	if err != nil {
		return model.SavingsReport{}, err
	}

	saved := decimal.Zero
	debits := 0
	for _, txn := range monthly {
		if !txn.IsDebit() {
			continue
		}
		rounded, err := LimitPayment(limit, txn.Amount.Decimal)
		if err != nil {
			return model.SavingsReport{}, err
		}
		saved = saved.Add(rounded.Sub(txn.Amount.Decimal).Abs())
		debits++
	}

	report := model.SavingsReport{Total: roundMoney(saved)}
	e.logger.Info("calculated investment bank",
		"month", month,
		"limit", limit.String(),
		"debits", debits,
		"total", report.Total.String())

	return report, nil
}
