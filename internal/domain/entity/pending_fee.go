package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingFeeStatus is derived from the due date at read time, never stored
type PendingFeeStatus string

const (
	PendingFeeStatusPending PendingFeeStatus = "PENDING"
	PendingFeeStatusOverdue PendingFeeStatus = "OVERDUE"
)

// PendingFee is an unpaid obligation raised by an external workflow against an
// organization. It is keyed by (organization, fee type, workflow) and removed
// when settled against an issued receipt; an unpaid one simply ages into
// overdue and remains tracked indefinitely.
type PendingFee struct {
	ID               int64           `json:"id"`
	OrganizationID   string          `json:"organization_id"`
	OrganizationName string          `json:"organization_name"`
	FeeTypeCode      string          `json:"fee_type_code"`
	Amount           decimal.Decimal `json:"amount"`
	DueDate          time.Time       `json:"due_date"`
	WorkflowID       string          `json:"workflow_id"`
	WorkflowTitle    string          `json:"workflow_title"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Status derives the pending/overdue state against the caller's notion of now
func (f *PendingFee) Status(now time.Time) PendingFeeStatus {
	if f.DueDate.Before(now) {
		return PendingFeeStatusOverdue
	}
	return PendingFeeStatusPending
}
