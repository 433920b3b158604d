package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/oirpng/receipt-ledger/internal/application/port"
	"github.com/oirpng/receipt-ledger/internal/domain/entity"
)

// PendingFeeService tracks unpaid fee obligations raised by external
// workflows and reconciles them against issued receipts.
type PendingFeeService interface {
	// Record inserts a pending fee; duplicates keyed by (organization,
	// fee type, workflow) fail with entity.ErrDuplicatePendingFee.
	Record(ctx context.Context, fee *entity.PendingFee) error

	// Settle removes one matching obligation after a receipt is issued,
	// earliest due date first; obligations for other workflows on the same
	// (organization, fee type) pair stay tracked. A missing match is not an
	// error: receipts may legitimately be issued for fees with no tracked
	// obligation, e.g. walk-in payments.
	Settle(ctx context.Context, organizationID, feeTypeCode, receiptNumber string) error

	// ListPending returns outstanding obligations, optionally for one
	// organization. Overdue status is derived at read time, never stored.
	ListPending(ctx context.Context, organizationID string) ([]*entity.PendingFee, error)
}

type pendingFeeServiceImpl struct {
	pendingRepo port.PendingFeeRepository
	logger      Logger
}

// NewPendingFeeService creates a new PendingFeeService
func NewPendingFeeService(pendingRepo port.PendingFeeRepository, logger Logger) PendingFeeService {
	return &pendingFeeServiceImpl{
		pendingRepo: pendingRepo,
		logger:      logger,
	}
}

// Record inserts a pending fee obligation
func (s *pendingFeeServiceImpl) Record(ctx context.Context, fee *entity.PendingFee) error {
	verr := &entity.ValidationError{}
	if strings.TrimSpace(fee.OrganizationID) == "" {
		verr.Add("organization is required")
	}
	if strings.TrimSpace(fee.FeeTypeCode) == "" {
		verr.Add("fee type code is required")
	}
	if strings.TrimSpace(fee.WorkflowID) == "" {
		verr.Add("workflow id is required")
	}
	if fee.DueDate.IsZero() {
		verr.Add("due date is required")
	}
	if verr.HasProblems() {
		return verr
	}

	if err := s.pendingRepo.Create(ctx, fee); err != nil {
		return fmt.Errorf("failed to record pending fee for %s/%s: %w",
			fee.OrganizationID, fee.FeeTypeCode, err)
	}

	s.logger.Info("Pending fee recorded",
		"organization", fee.OrganizationID,
		"fee_type", fee.FeeTypeCode,
		"workflow", fee.WorkflowID,
		"amount", fee.Amount.String())
	return nil
}

// Settle removes the matching obligation, if any
func (s *pendingFeeServiceImpl) Settle(ctx context.Context, organizationID, feeTypeCode, receiptNumber string) error {
	removed, err := s.pendingRepo.DeleteMatching(ctx, organizationID, feeTypeCode)
	if err != nil {
		return fmt.Errorf("failed to settle pending fee for %s/%s: %w",
			organizationID, feeTypeCode, err)
	}

	if removed {
		s.logger.Info("Pending fee settled",
			"organization", organizationID,
			"fee_type", feeTypeCode,
			"receipt_number", receiptNumber)
	}
	return nil
}

// ListPending returns outstanding obligations ordered by due date
func (s *pendingFeeServiceImpl) ListPending(ctx context.Context, organizationID string) ([]*entity.PendingFee, error) {
	fees, err := s.pendingRepo.List(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending fees: %w", err)
	}
	return fees, nil
}
