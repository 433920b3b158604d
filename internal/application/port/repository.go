package port

import (
	"context"

	"github.com/oirpng/receipt-ledger/internal/domain/entity"
)

// FeeTypeRepository defines persistence operations for FeeType
type FeeTypeRepository interface {
	// Upsert creates or replaces a fee type by code
	Upsert(ctx context.Context, feeType *entity.FeeType) error

	// GetByCode retrieves a fee type; returns (nil, nil) when the code is unknown
	GetByCode(ctx context.Context, code string) (*entity.FeeType, error)

	// ListActive returns active fee types ordered by code
	ListActive(ctx context.Context) ([]*entity.FeeType, error)
}

// ReceiptRepository defines persistence operations for Receipt
type ReceiptRepository interface {
	// Create persists a receipt with its items. The receipt is immutable
	// afterwards except for the cancellation sub-record.
	Create(ctx context.Context, receipt *entity.Receipt) error

	// GetByNumber retrieves a receipt with its ordered items; (nil, nil) when unknown
	GetByNumber(ctx context.Context, receiptNumber string) (*entity.Receipt, error)

	// MarkCancelled sets the cancellation sub-record if and only if the
	// receipt is not already cancelled. Returns false when the compare-and-set
	// lost, i.e. another caller cancelled first.
	MarkCancelled(ctx context.Context, receiptNumber string, c entity.Cancellation) (bool, error)

	// Find returns receipts matching the filter, ordered by payment date
	// descending then receipt number descending.
	Find(ctx context.Context, filter entity.ReceiptFilter) ([]*entity.Receipt, error)
}

// PendingFeeRepository defines persistence operations for PendingFee
type PendingFeeRepository interface {
	// Create inserts a pending fee; returns entity.ErrDuplicatePendingFee when
	// the (organization, fee type, workflow) key is already recorded
	Create(ctx context.Context, fee *entity.PendingFee) error

	// DeleteMatching removes at most one pending fee for (organization,
	// fee type), earliest due date first, and reports whether a row was
	// removed. Obligations for other workflows on the same pair are kept.
	DeleteMatching(ctx context.Context, organizationID, feeTypeCode string) (bool, error)

	// List returns pending fees, optionally restricted to one organization
	// (empty organizationID means all), ordered by due date ascending
	List(ctx context.Context, organizationID string) ([]*entity.PendingFee, error)
}

// SequenceRepository hands out per-year receipt sequence values
type SequenceRepository interface {
	// NextValue atomically increments and returns the counter for the year.
	// For a given year the returned values form a gap-free, strictly
	// increasing sequence starting at 1; no two callers ever observe the same
	// value. Values are never reclaimed, including for cancelled receipts.
	NextValue(ctx context.Context, year int) (int64, error)
}

// TransactionManager executes a function within a storage transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
