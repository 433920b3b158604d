package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestReceiptDraft_AddItem(t *testing.T) {
	t.Run("computes amount from quantity and unit price", func(t *testing.T) {
		draft := NewReceiptDraft()

		item, err := draft.AddItem("REG-ORG", "Registration of organization", 3, mustDecimal(t, "100.00"))
		require.NoError(t, err)

		assert.Equal(t, "300", item.Amount.String())
		assert.Len(t, draft.Items, 1)
		assert.NotEmpty(t, item.ID)
	})

	t.Run("rejects duplicate fee type code", func(t *testing.T) {
		draft := NewReceiptDraft()
		_, err := draft.AddItem("REG-ORG", "", 1, mustDecimal(t, "100.00"))
		require.NoError(t, err)

		_, err = draft.AddItem("REG-ORG", "", 2, mustDecimal(t, "100.00"))
		assert.ErrorIs(t, err, ErrDuplicateItem)
		assert.Len(t, draft.Items, 1)
	})

	t.Run("rejects quantity below one", func(t *testing.T) {
		draft := NewReceiptDraft()

		_, err := draft.AddItem("REG-ORG", "", 0, mustDecimal(t, "100.00"))
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = draft.AddItem("REG-ORG", "", -5, mustDecimal(t, "100.00"))
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Empty(t, draft.Items)
	})
}

func TestReceiptDraft_SetQuantity(t *testing.T) {
	t.Run("recomputes amount", func(t *testing.T) {
		draft := NewReceiptDraft()
		item, err := draft.AddItem("ANNUAL-RET", "", 1, mustDecimal(t, "50.25"))
		require.NoError(t, err)

		require.NoError(t, draft.SetQuantity(item.ID, 4))
		assert.Equal(t, "201", draft.Items[0].Amount.String())
	})

	t.Run("zero quantity leaves previous quantity unchanged", func(t *testing.T) {
		draft := NewReceiptDraft()
		item, err := draft.AddItem("ANNUAL-RET", "", 3, mustDecimal(t, "50.25"))
		require.NoError(t, err)

		err = draft.SetQuantity(item.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, int64(3), draft.Items[0].Quantity)
		assert.Equal(t, "150.75", draft.Items[0].Amount.String())
	})

	t.Run("unknown item id", func(t *testing.T) {
		draft := NewReceiptDraft()
		err := draft.SetQuantity("no-such-item", 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReceiptDraft_RemoveItem(t *testing.T) {
	draft := NewReceiptDraft()
	first, err := draft.AddItem("REG-ORG", "", 1, mustDecimal(t, "100.00"))
	require.NoError(t, err)
	_, err = draft.AddItem("LATE-FEE", "", 1, mustDecimal(t, "25.00"))
	require.NoError(t, err)

	require.NoError(t, draft.RemoveItem(first.ID))
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "LATE-FEE", draft.Items[0].FeeTypeCode)

	// removing the last item is allowed; the minimum-item rule only applies at finalize
	require.NoError(t, draft.RemoveItem(draft.Items[0].ID))
	assert.Empty(t, draft.Items)

	assert.ErrorIs(t, draft.RemoveItem("gone"), ErrNotFound)
}

func TestReceiptDraft_Total(t *testing.T) {
	tests := []struct {
		name  string
		items [][2]string // unit price, quantity encoded as strings
		want  string
	}{
		{
			name: "empty draft totals zero",
			want: "0",
		},
		{
			name:  "single item",
			items: [][2]string{{"100.00", "1"}},
			want:  "100",
		},
		{
			name: "fractional prices sum exactly",
			// 0.10 + 0.20 must be exactly 0.30, not a binary float approximation
			items: [][2]string{{"0.10", "1"}, {"0.20", "1"}},
			want:  "0.3",
		},
		{
			name:  "quantities multiply exactly",
			items: [][2]string{{"33.33", "3"}, {"0.01", "1"}},
			want:  "100",
		},
	}

	codes := []string{"A", "B", "C", "D"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NewReceiptDraft()
			for i, pair := range tt.items {
				qty := mustDecimal(t, pair[1]).IntPart()
				_, err := draft.AddItem(codes[i], "", qty, mustDecimal(t, pair[0]))
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, draft.Total().String())
		})
	}
}
