package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oirpng/receipt-ledger/internal/application/port"
	"github.com/oirpng/receipt-ledger/internal/domain/entity"
)

// LedgerService is the system of record for receipts. Issuance is the single
// commit point: number allocation and persistence succeed or fail together,
// so no partial receipt is ever visible to readers.
type LedgerService interface {
	// Issue commits a finalized draft as an immutable Receipt. The receipt
	// number is scoped to the payment-date year.
	Issue(ctx context.Context, draft *entity.FinalizedDraft) (*entity.Receipt, error)

	// Cancel voids a receipt. Fails with entity.ErrNotFound for an unknown
	// number, entity.ErrAlreadyCancelled when already voided, and
	// entity.ErrMissingReason for an empty reason. Items and total are left
	// untouched for audit.
	Cancel(ctx context.Context, receiptNumber, reason, actor string) (*entity.Receipt, error)

	// Find queries issued receipts. Repeated queries with the same filter
	// return the same order: payment date descending, then number descending.
	Find(ctx context.Context, filter entity.ReceiptFilter) ([]*entity.Receipt, error)

	// Get retrieves one receipt by number
	Get(ctx context.Context, receiptNumber string) (*entity.Receipt, error)
}

type ledgerServiceImpl struct {
	receiptRepo port.ReceiptRepository
	allocator   NumberAllocator
	txManager   port.TransactionManager
	logger      Logger
	now         func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	receiptRepo port.ReceiptRepository,
	allocator NumberAllocator,
	txManager port.TransactionManager,
	logger Logger,
) LedgerService {
	return &ledgerServiceImpl{
		receiptRepo: receiptRepo,
		allocator:   allocator,
		txManager:   txManager,
		logger:      logger,
		now:         time.Now,
	}
}

// Issue commits a finalized draft as an immutable Receipt
func (s *ledgerServiceImpl) Issue(ctx context.Context, draft *entity.FinalizedDraft) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		OrganizationID:   draft.OrganizationID,
		OrganizationName: draft.OrganizationName,
		Items:            draft.Items,
		TotalAmount:      draft.TotalAmount,
		PaymentMethod:    draft.PaymentMethod,
		PaymentReference: draft.PaymentReference,
		PaymentDate:      draft.PaymentDate,
		IssuedBy:         draft.IssuedBy,
		IssuedAt:         s.now(),
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		number, err := s.allocator.Next(ctx, draft.PaymentDate.Year())
		if err != nil {
			return err
		}
		receipt.ReceiptNumber = number

		if err := receipt.VerifyTotal(); err != nil {
			return fmt.Errorf("refusing to issue inconsistent receipt: %w", err)
		}

		return s.receiptRepo.Create(ctx, receipt)
	})
	if err != nil {
		s.logger.Error("Failed to issue receipt",
			"organization", draft.OrganizationID,
			"error", err)
		return nil, err
	}

	s.logger.Info("Receipt issued",
		"receipt_number", receipt.ReceiptNumber,
		"organization", receipt.OrganizationName,
		"total", receipt.TotalAmount.String())
	return receipt, nil
}

// Cancel voids a receipt with a compare-and-set on its status
func (s *ledgerServiceImpl) Cancel(ctx context.Context, receiptNumber, reason, actor string) (*entity.Receipt, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, entity.ErrMissingReason
	}

	var cancelled *entity.Receipt
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		receipt, err := s.receiptRepo.GetByNumber(ctx, receiptNumber)
		if err != nil {
			return err
		}
		if receipt == nil {
			return fmt.Errorf("receipt %s: %w", receiptNumber, entity.ErrNotFound)
		}
		if receipt.Cancelled() {
			return entity.ErrAlreadyCancelled
		}

		c := entity.Cancellation{
			Reason:      reason,
			CancelledBy: actor,
			CancelledAt: s.now(),
		}

		// Re-check under the same transaction that writes, so two concurrent
		// cancellations cannot both report success.
		ok, err := s.receiptRepo.MarkCancelled(ctx, receiptNumber, c)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrAlreadyCancelled
		}

		receipt.Cancellation = &c
		cancelled = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Receipt cancelled",
		"receipt_number", receiptNumber,
		"cancelled_by", actor,
		"reason", reason)
	return cancelled, nil
}

// Find queries issued receipts
func (s *ledgerServiceImpl) Find(ctx context.Context, filter entity.ReceiptFilter) ([]*entity.Receipt, error) {
	receipts, err := s.receiptRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find receipts: %w", err)
	}

	for _, receipt := range receipts {
		if err := receipt.VerifyTotal(); err != nil {
			s.logger.Error("Stored receipt failed total verification", "error", err)
			return nil, err
		}
	}
	return receipts, nil
}

// Get retrieves one receipt by number
func (s *ledgerServiceImpl) Get(ctx context.Context, receiptNumber string) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByNumber(ctx, receiptNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt %s: %w", receiptNumber, err)
	}
	if receipt == nil {
		return nil, fmt.Errorf("receipt %s: %w", receiptNumber, entity.ErrNotFound)
	}
	if err := receipt.VerifyTotal(); err != nil {
		s.logger.Error("Stored receipt failed total verification", "error", err)
		return nil, err
	}
	return receipt, nil
}
