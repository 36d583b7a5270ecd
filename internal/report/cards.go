package report

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
)

// cardKey separates a missing card number from an empty one.
type cardKey struct {
	number  string
	present bool
}

// CardInfo sums debits per card. Cards without any debit are omitted.
// A card number that is blank after the mask counts as no card, so only
// the unknown group has an empty LastDigits. Output is ordered by card
// number with the unknown card last.
func (e *Engine) CardInfo(txns []model.Transaction) []model.CardSummary {
	totals := make(map[cardKey]decimal.Decimal)
	for _, txn := range txns {
		if !txn.IsDebit() {
			continue
		}
		key := cardKey{}
		if txn.CardNumber != nil && stripMask(strings.TrimSpace(*txn.CardNumber)) != "" {
			key = cardKey{number: *txn.CardNumber, present: true}
		}
		totals[key] = totals[key].Add(txn.Amount.Decimal)
	}

	keys := make([]cardKey, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].present != keys[j].present {
			return keys[i].present
		}
		return keys[i].number < keys[j].number
	})

	summaries := make([]model.CardSummary, 0, len(keys))
	for _, key := range keys {
		total := totals[key]
		summaries = append(summaries, model.CardSummary{
			LastDigits: stripMask(key.number),
			TotalSpent: roundMoney(total),
			Cashback:   roundMoney(total.Abs().Div(hundred)),
		})
	}

	e.logger.Debug("aggregated cards", "cards", len(summaries), "transactions", len(txns))
	return summaries
}

// stripMask drops the leading masking glyph of a card number.
func stripMask(number string) string {
	_, size := utf8.DecodeRuneInString(number)
	return number[size:]
}
