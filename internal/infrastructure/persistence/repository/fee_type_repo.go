package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oirpng/receipt-ledger/internal/application/port"
	"github.com/oirpng/receipt-ledger/internal/domain/entity"
	"github.com/oirpng/receipt-ledger/internal/infrastructure/persistence/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FeeTypeRepository implements port.FeeTypeRepository
type FeeTypeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFeeTypeRepository creates a new fee type repository
func NewFeeTypeRepository(db *sql.DB, logger *zap.Logger) port.FeeTypeRepository {
	return &FeeTypeRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates or replaces a fee type by code. Fee types are never deleted;
// retiring one only clears the active flag.
func (r *FeeTypeRepository) Upsert(ctx context.Context, feeType *entity.FeeType) error {
	query := `
		INSERT INTO fee_types (
			code, name, unit_price, description, legal_reference, active
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			unit_price = excluded.unit_price,
			description = excluded.description,
			legal_reference = excluded.legal_reference,
			active = excluded.active,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		feeType.Code,
		feeType.Name,
		feeType.UnitPrice.String(),
		feeType.Description,
		feeType.LegalReference,
		feeType.Active,
	)
	if err != nil {
		r.logger.Error("Failed to upsert fee type", zap.String("code", feeType.Code), zap.Error(err))
		return storageErr("failed to upsert fee type", err)
	}

	return nil
}

// GetByCode retrieves a fee type; (nil, nil) when the code is unknown
func (r *FeeTypeRepository) GetByCode(ctx context.Context, code string) (*entity.FeeType, error) {
	query := `
		SELECT code, name, unit_price, description, legal_reference, active,
			created_at, updated_at
		FROM fee_types
		WHERE code = ?
	`

	var feeType entity.FeeType
	var unitPrice string

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, code).Scan(
		&feeType.Code,
		&feeType.Name,
		&unitPrice,
		&feeType.Description,
		&feeType.LegalReference,
		&feeType.Active,
		&feeType.CreatedAt,
		&feeType.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get fee type", zap.String("code", code), zap.Error(err))
		return nil, storageErr("failed to get fee type", err)
	}

	feeType.UnitPrice, err = decimal.NewFromString(unitPrice)
	if err != nil {
		return nil, fmt.Errorf("fee type %s has invalid unit price %q: %w", code, unitPrice, err)
	}

	return &feeType, nil
}

// ListActive returns active fee types ordered by code
func (r *FeeTypeRepository) ListActive(ctx context.Context) ([]*entity.FeeType, error) {
	query := `
		SELECT code, name, unit_price, description, legal_reference, active,
			created_at, updated_at
		FROM fee_types
		WHERE active = 1
		ORDER BY code
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list active fee types", zap.Error(err))
		return nil, storageErr("failed to list active fee types", err)
	}
	defer rows.Close()

	var feeTypes []*entity.FeeType
	for rows.Next() {
		var feeType entity.FeeType
		var unitPrice string

		if err := rows.Scan(
			&feeType.Code,
			&feeType.Name,
			&unitPrice,
			&feeType.Description,
			&feeType.LegalReference,
			&feeType.Active,
			&feeType.CreatedAt,
			&feeType.UpdatedAt,
		); err != nil {
			return nil, storageErr("failed to scan fee type", err)
		}

		feeType.UnitPrice, err = decimal.NewFromString(unitPrice)
		if err != nil {
			return nil, fmt.Errorf("fee type %s has invalid unit price %q: %w", feeType.Code, unitPrice, err)
		}
		feeTypes = append(feeTypes, &feeType)
	}

	return feeTypes, rows.Err()
}

// Verify interface compliance
var _ port.FeeTypeRepository = (*FeeTypeRepository)(nil)
