package report

import (
	"testing"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardInfo(t *testing.T) {
	engine := New()

	t.Run("single card", func(t *testing.T) {
		got := engine.CardInfo([]model.Transaction{txn("01.01.2023 00:00:00", "-200", withCard("*5678"))})
		require.Len(t, got, 1)
		assert.Equal(t, "5678", got[0].LastDigits)
		assert.True(t, dec("-200").Equal(got[0].TotalSpent))
		assert.True(t, dec("2").Equal(got[0].Cashback))
	})

	t.Run("groups, ordering and credits", func(t *testing.T) {
		txns := []model.Transaction{
			txn("01.01.2023 00:00:00", "-100.555", withCard("*7197")),
			txn("01.01.2023 00:00:00", "-50", withCard("*4556")),
			txn("01.01.2023 00:00:00", "1000", withCard("*4556")),
			txn("01.01.2023 00:00:00", "300", withCard("*1111")),
			txn("01.01.2023 00:00:00", "-20"),
			txn("01.01.2023 00:00:00", "0", withCard("*2222")),
			txn("01.01.2023 00:00:00", "-10", withCard("*7197"), withoutAmount()),
		}
		got := engine.CardInfo(txns)
		require.Len(t, got, 3)

		assert.Equal(t, "4556", got[0].LastDigits)
		assert.True(t, dec("-50").Equal(got[0].TotalSpent))
		assert.True(t, dec("0.5").Equal(got[0].Cashback))

		assert.Equal(t, "7197", got[1].LastDigits)
		assert.True(t, dec("-100.56").Equal(got[1].TotalSpent))
		assert.True(t, dec("1.01").Equal(got[1].Cashback))

		// unknown card comes last
		assert.Equal(t, "", got[2].LastDigits)
		assert.True(t, dec("-20").Equal(got[2].TotalSpent))
	})

	t.Run("short and masked identifiers", func(t *testing.T) {
		got := engine.CardInfo([]model.Transaction{
			txn("01.01.2023 00:00:00", "-1", withCard("*12")),
			txn("01.01.2023 00:00:00", "-1", withCard("••1234")),
		})
		require.Len(t, got, 2)
		assert.Equal(t, "12", got[0].LastDigits)
		assert.Equal(t, "•1234", got[1].LastDigits)
	})

	t.Run("totals match debits", func(t *testing.T) {
		txns := []model.Transaction{
			txn("01.01.2023 00:00:00", "-12.30", withCard("*1")),
			txn("01.01.2023 00:00:00", "-7.70", withCard("*2")),
			txn("01.01.2023 00:00:00", "-1.01", withCard("*1")),
			txn("01.01.2023 00:00:00", "44"),
			txn("01.01.2023 00:00:00", "-3.33"),
		}
		sum := decimal.Zero
		for _, card := range engine.CardInfo(txns) {
			sum = sum.Add(card.TotalSpent)
		}
		assert.True(t, dec("-24.34").Equal(sum))
	})

	t.Run("blank identifiers join the unknown card", func(t *testing.T) {
		got := engine.CardInfo([]model.Transaction{
			txn("01.01.2023 00:00:00", "-10", withCard("*5678")),
			txn("01.01.2023 00:00:00", "-1", withCard("")),
			txn("01.01.2023 00:00:00", "-2", withCard("*")),
			txn("01.01.2023 00:00:00", "-3"),
		})
		require.Len(t, got, 2)
		assert.Equal(t, "5678", got[0].LastDigits)
		assert.Equal(t, "", got[1].LastDigits)
		assert.True(t, dec("-6").Equal(got[1].TotalSpent))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, engine.CardInfo(nil))
	})
}
