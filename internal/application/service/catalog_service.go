package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/oirpng/receipt-ledger/internal/application/port"
	"github.com/oirpng/receipt-ledger/internal/domain/entity"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CatalogService manages the fee type catalog
type CatalogService interface {
	// Upsert creates or updates a fee type. Price changes never affect issued
	// receipts because items snapshot their unit price at selection time.
	Upsert(ctx context.Context, feeType *entity.FeeType) error

	// Lookup resolves a fee type code; returns entity.ErrNotFound for unknown codes
	Lookup(ctx context.Context, code string) (*entity.FeeType, error)

	// ListActive returns active fee types ordered by code
	ListActive(ctx context.Context) ([]*entity.FeeType, error)
}

type catalogServiceImpl struct {
	feeTypeRepo port.FeeTypeRepository
	logger      Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(feeTypeRepo port.FeeTypeRepository, logger Logger) CatalogService {
	return &catalogServiceImpl{
		feeTypeRepo: feeTypeRepo,
		logger:      logger,
	}
}

// Upsert creates or updates a fee type
func (s *catalogServiceImpl) Upsert(ctx context.Context, feeType *entity.FeeType) error {
	verr := &entity.ValidationError{}
	if strings.TrimSpace(feeType.Code) == "" {
		verr.Add("code is required")
	}
	if strings.TrimSpace(feeType.Name) == "" {
		verr.Add("name is required")
	}
	if feeType.UnitPrice.IsNegative() {
		verr.Add("unit price must not be negative")
	}
	if verr.HasProblems() {
		return verr
	}

	if err := s.feeTypeRepo.Upsert(ctx, feeType); err != nil {
		s.logger.Error("Failed to upsert fee type", "code", feeType.Code, "error", err)
		return fmt.Errorf("failed to upsert fee type %s: %w", feeType.Code, err)
	}

	s.logger.Info("Fee type upserted", "code", feeType.Code, "active", feeType.Active)
	return nil
}

// Lookup resolves a fee type code
func (s *catalogServiceImpl) Lookup(ctx context.Context, code string) (*entity.FeeType, error) {
	feeType, err := s.feeTypeRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up fee type %s: %w", code, err)
	}
	if feeType == nil {
		return nil, fmt.Errorf("fee type %s: %w", code, entity.ErrNotFound)
	}
	return feeType, nil
}

// ListActive returns active fee types ordered by code
func (s *catalogServiceImpl) ListActive(ctx context.Context) ([]*entity.FeeType, error) {
	feeTypes, err := s.feeTypeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active fee types: %w", err)
	}
	return feeTypes, nil
}
