package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptDraft is a mutable working set of line items being assembled before
// issuance. Drafts enforce the per-item rules (no duplicate fee type, quantity
// at least 1); the minimum-item rule is only enforced at finalization.
type ReceiptDraft struct {
	ID    string        `json:"id"`
	Items []ReceiptItem `json:"items"`
}

// NewReceiptDraft creates an empty draft
func NewReceiptDraft() *ReceiptDraft {
	return &ReceiptDraft{ID: uuid.NewString()}
}

// AddItem appends a line item with price and description snapshotted from the
// catalog at this instant. A fee type already present in the draft is rejected
// with ErrDuplicateItem; the caller should adjust the quantity instead.
func (d *ReceiptDraft) AddItem(feeTypeCode, description string, quantity int64, unitPrice decimal.Decimal) (*ReceiptItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	for _, item := range d.Items {
		if item.FeeTypeCode == feeTypeCode {
			return nil, ErrDuplicateItem
		}
	}

	item := ReceiptItem{
		ID:          uuid.NewString(),
		FeeTypeCode: feeTypeCode,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      unitPrice.Mul(decimal.NewFromInt(quantity)),
	}
	d.Items = append(d.Items, item)
	return &d.Items[len(d.Items)-1], nil
}

// SetQuantity changes an item's quantity and recomputes its amount.
// Quantities below 1 are rejected and leave the item unchanged.
func (d *ReceiptDraft) SetQuantity(itemID string, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			d.Items[i].Quantity = quantity
			d.Items[i].Amount = d.Items[i].UnitPrice.Mul(decimal.NewFromInt(quantity))
			return nil
		}
	}
	return ErrNotFound
}

// RemoveItem deletes an item from the draft
func (d *ReceiptDraft) RemoveItem(itemID string) error {
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Total returns the exact sum of all item amounts
func (d *ReceiptDraft) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range d.Items {
		sum = sum.Add(item.Amount)
	}
	return sum
}

// FinalizedDraft is a validated draft plus payment metadata, ready for
// issuance. It carries everything the ledger needs to commit a Receipt
// except the receipt number.
type FinalizedDraft struct {
	Items            []ReceiptItem
	OrganizationID   string
	OrganizationName string
	TotalAmount      decimal.Decimal
	PaymentMethod    PaymentMethod
	PaymentReference string
	PaymentDate      time.Time
	IssuedBy         string
}
