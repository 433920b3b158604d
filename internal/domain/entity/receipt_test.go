package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReceipt_VerifyTotal(t *testing.T) {
	item := func(qty int64, price string) ReceiptItem {
		p, _ := decimal.NewFromString(price)
		return ReceiptItem{
			FeeTypeCode: "REG-ORG",
			Quantity:    qty,
			UnitPrice:   p,
			Amount:      p.Mul(decimal.NewFromInt(qty)),
		}
	}

	t.Run("consistent receipt passes", func(t *testing.T) {
		r := &Receipt{
			ReceiptNumber: "OIR-2025-00001",
			Items:         []ReceiptItem{item(2, "100.00"), {FeeTypeCode: "LATE-FEE", Quantity: 1, UnitPrice: decimal.RequireFromString("12.50"), Amount: decimal.RequireFromString("12.50")}},
			TotalAmount:   decimal.RequireFromString("212.50"),
		}
		assert.NoError(t, r.VerifyTotal())
	})

	t.Run("total drift is detected", func(t *testing.T) {
		r := &Receipt{
			ReceiptNumber: "OIR-2025-00002",
			Items:         []ReceiptItem{item(1, "100.00")},
			TotalAmount:   decimal.RequireFromString("100.01"),
		}
		assert.Error(t, r.VerifyTotal())
	})

	t.Run("item amount drift is detected", func(t *testing.T) {
		bad := item(2, "100.00")
		bad.Amount = decimal.RequireFromString("199.99")
		r := &Receipt{
			ReceiptNumber: "OIR-2025-00003",
			Items:         []ReceiptItem{bad},
			TotalAmount:   decimal.RequireFromString("199.99"),
		}
		assert.Error(t, r.VerifyTotal())
	})
}

func TestReceipt_Cancelled(t *testing.T) {
	r := &Receipt{ReceiptNumber: "OIR-2025-00001"}
	assert.False(t, r.Cancelled())

	r.Cancellation = &Cancellation{
		Reason:      "Duplicate payment",
		CancelledBy: "registrar",
		CancelledAt: time.Now(),
	}
	assert.True(t, r.Cancelled())
}
