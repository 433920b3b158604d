package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oirpng/receipt-ledger/internal/domain/entity"
)

// FinalizeParams carries the payment metadata supplied at finalization
type FinalizeParams struct {
	OrganizationID   string
	OrganizationName string
	PaymentMethod    entity.PaymentMethod
	PaymentReference string
	PaymentDate      time.Time
	IssuedBy         string
}

// BuilderService assembles receipt drafts against the fee catalog.
// Draft mutation rules live on entity.ReceiptDraft; the service's job is
// snapshotting catalog data into items and validating finalization.
type BuilderService interface {
	// NewDraft starts an empty draft
	NewDraft() *entity.ReceiptDraft

	// AddItem resolves the fee type via the catalog and appends an item with
	// unit price and description snapshotted at this instant. An inactive or
	// unknown code fails with entity.ErrNotFound; a code already in the draft
	// fails with entity.ErrDuplicateItem.
	AddItem(ctx context.Context, draft *entity.ReceiptDraft, feeTypeCode string, quantity int64) (*entity.ReceiptItem, error)

	// Finalize validates the draft plus payment metadata and returns an
	// immutable FinalizedDraft. All validation problems are aggregated into
	// one entity.ValidationError so callers can show them together.
	Finalize(draft *entity.ReceiptDraft, params FinalizeParams) (*entity.FinalizedDraft, error)
}

type builderServiceImpl struct {
	catalog CatalogService
	logger  Logger
}

// NewBuilderService creates a new BuilderService
func NewBuilderService(catalog CatalogService, logger Logger) BuilderService {
	return &builderServiceImpl{
		catalog: catalog,
		logger:  logger,
	}
}

// NewDraft starts an empty draft
func (s *builderServiceImpl) NewDraft() *entity.ReceiptDraft {
	return entity.NewReceiptDraft()
}

// AddItem snapshots the fee type onto a new draft item
func (s *builderServiceImpl) AddItem(ctx context.Context, draft *entity.ReceiptDraft, feeTypeCode string, quantity int64) (*entity.ReceiptItem, error) {
	feeType, err := s.catalog.Lookup(ctx, feeTypeCode)
	if err != nil {
		return nil, err
	}
	if !feeType.Active {
		return nil, fmt.Errorf("fee type %s is retired: %w", feeTypeCode, entity.ErrNotFound)
	}

	item, err := draft.AddItem(feeType.Code, feeType.Description, quantity, feeType.UnitPrice)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Item added to draft",
		"draft_id", draft.ID,
		"fee_type", feeType.Code,
		"quantity", quantity,
		"amount", item.Amount.String())
	return item, nil
}

// Finalize validates the draft and payment metadata together
func (s *builderServiceImpl) Finalize(draft *entity.ReceiptDraft, params FinalizeParams) (*entity.FinalizedDraft, error) {
	verr := &entity.ValidationError{}

	if len(draft.Items) == 0 {
		verr.Add("receipt must contain at least one item")
	}
	if strings.TrimSpace(params.OrganizationID) == "" {
		verr.Add("organization is required")
	}
	if !params.PaymentMethod.Valid() {
		verr.Add("payment method must be one of CASH, CHECK, BANK_TRANSFER, ONLINE")
	}
	if params.PaymentDate.IsZero() {
		verr.Add("payment date is required")
	}
	if verr.HasProblems() {
		return nil, verr
	}

	items := make([]entity.ReceiptItem, len(draft.Items))
	copy(items, draft.Items)

	return &entity.FinalizedDraft{
		Items:            items,
		OrganizationID:   params.OrganizationID,
		OrganizationName: params.OrganizationName,
		TotalAmount:      draft.Total(),
		PaymentMethod:    params.PaymentMethod,
		PaymentReference: params.PaymentReference,
		PaymentDate:      params.PaymentDate,
		IssuedBy:         params.IssuedBy,
	}, nil
}
