package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/Veraticus/spice-report/internal/service"
	"github.com/shopspring/decimal"
)

// CategoryReportName is the name the category report is saved under.
const CategoryReportName = "spending_by_category"

// CategoryOptions tunes SpendingByCategory. Zero values fall back to the
// engine defaults.
type CategoryOptions struct {
	Reference *time.Time
	Window    *Window
	Sink      service.ReportSink
	Mode      ReferenceMode
}

// SpendingByCategory returns the transactions of one category that fall in
// the date window, in input order. When a sink is given the result is saved
// after it has been computed.
func (e *Engine) SpendingByCategory(ctx context.Context, txns []model.Transaction, category string, opts CategoryOptions) ([]model.Transaction, error) {
	window := e.window
	if opts.Window != nil {
		window = *opts.Window
	}

	reference := opts.Reference
	if reference == nil {
		mode := opts.Mode
		if mode == "" {
			mode = e.referenceMode
		}
		if mode == ReferenceNow {
			now := e.now()
			reference = &now
		}
	}

	windowed, err := e.FilterWindow(txns, window, reference)
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}

	result := make([]model.Transaction, 0, len(windowed))
	for _, txn := range windowed {
		if txn.Category == category {
			result = append(result, txn)
		}
	}

	e.logger.Info("built category report",
		"category", category,
		"matched", len(result),
		"total", CategoryTotal(result).String())

	if opts.Sink != nil {
		if err := opts.Sink.Save(ctx, CategoryReportName, result); err != nil {
			return nil, fmt.Errorf("failed to save category report: %w", err)
		}
	}

	return result, nil
}

// CategoryTotal sums the amounts of txns. Rows without an amount are skipped.
func CategoryTotal(txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		if !txn.HasAmount() || txn.Amount.Decimal.IsZero() {
			continue
		}
		total = total.Add(txn.Amount.Decimal)
	}
	return roundMoney(total)
}
