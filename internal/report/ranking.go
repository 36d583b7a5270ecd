package report

import (
	"fmt"
	"sort"

	"github.com/Veraticus/spice-report/internal/common"
	"github.com/Veraticus/spice-report/internal/model"
)

// TopN is the length of the dashboard ranking.
const TopN = 5

// Top5 ranks the five largest transactions by absolute amount.
func (e *Engine) Top5(txns []model.Transaction) ([]model.RankedEntry, error) {
	return e.TopTransactions(txns, TopN)
}

// TopTransactions ranks transactions by absolute amount, largest first.
// Rows without an amount are skipped; ties keep their input order.
func (e *Engine) TopTransactions(txns []model.Transaction, n int) ([]model.RankedEntry, error) {
	ranked := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.HasAmount() {
			ranked = append(ranked, txn)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.Decimal.Abs().GreaterThan(ranked[j].Amount.Decimal.Abs())
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	entries := make([]model.RankedEntry, 0, len(ranked))
	for i, txn := range ranked {
		if txn.Description == nil || txn.OperationDate == "" {
			err := fmt.Errorf("%w: ranked entry %d is missing description or operation date", common.ErrRankingFailed, i+1)
			e.logger.Error("ranking failed", "error", err)
			return nil, err
		}
		entries = append(entries, model.RankedEntry{
			OperationDate: txn.OperationDate,
			Amount:        roundMoney(txn.Amount.Decimal),
			Description:   *txn.Description,
		})
	}

	return entries, nil
}
