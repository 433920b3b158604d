package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptItem is one fee line on a receipt. UnitPrice and Description are
// snapshots taken from the catalog when the item was added; Amount must
// always equal Quantity * UnitPrice.
type ReceiptItem struct {
	ID          string          `json:"id"`
	FeeTypeCode string          `json:"fee_type_code"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Cancellation is the one-way audit sub-record on a voided receipt.
// It is written once and never changes afterwards.
type Cancellation struct {
	Reason      string    `json:"reason"`
	CancelledBy string    `json:"cancelled_by"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// Receipt is an immutable record of a payment. Once issued, the only
// permitted transition is to Cancelled; items and total are never edited
// and the record is never deleted.
type Receipt struct {
	ReceiptNumber    string        `json:"receipt_number"`
	OrganizationID   string        `json:"organization_id"`
	OrganizationName string        `json:"organization_name"`
	Items            []ReceiptItem `json:"items"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	PaymentDate      time.Time     `json:"payment_date"`
	IssuedBy         string        `json:"issued_by"`
	IssuedAt         time.Time     `json:"issued_at"`
	Cancellation     *Cancellation `json:"cancellation,omitempty"`
}

// Cancelled reports whether the receipt has been voided
func (r *Receipt) Cancelled() bool {
	return r.Cancellation != nil
}

// VerifyTotal re-checks the core money invariants: every item amount equals
// quantity * unit price and the receipt total equals the sum of item amounts.
// Checked at issuance and again on every read.
func (r *Receipt) VerifyTotal() error {
	sum := decimal.Zero
	for _, item := range r.Items {
		expected := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		if !item.Amount.Equal(expected) {
			return fmt.Errorf("receipt %s item %s: amount %s does not equal %d x %s",
				r.ReceiptNumber, item.FeeTypeCode, item.Amount, item.Quantity, item.UnitPrice)
		}
		sum = sum.Add(item.Amount)
	}
	if !r.TotalAmount.Equal(sum) {
		return fmt.Errorf("receipt %s: total %s does not equal item sum %s",
			r.ReceiptNumber, r.TotalAmount, sum)
	}
	return nil
}

// ReceiptFilter is a conjunction of query conditions for Find. Query matches
// case-insensitively against receipt number, organization name and payment
// reference; From/To bound the payment date inclusively.
type ReceiptFilter struct {
	Query string
	From  *time.Time
	To    *time.Time
}
