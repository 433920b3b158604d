package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/oirpng/receipt-ledger/internal/application/port"
	"github.com/oirpng/receipt-ledger/internal/domain/entity"
	"github.com/oirpng/receipt-ledger/internal/infrastructure/persistence/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PendingFeeRepository implements port.PendingFeeRepository
type PendingFeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPendingFeeRepository creates a new pending fee repository
func NewPendingFeeRepository(db *sql.DB, logger *zap.Logger) port.PendingFeeRepository {
	return &PendingFeeRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a pending fee. The unique index on
// (organization_id, fee_type_code, workflow_id) rejects duplicates.
func (r *PendingFeeRepository) Create(ctx context.Context, fee *entity.PendingFee) error {
	query := `
		INSERT INTO pending_fees (
			organization_id, organization_name, fee_type_code, amount,
			due_date, workflow_id, workflow_title
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		fee.OrganizationID,
		fee.OrganizationName,
		fee.FeeTypeCode,
		fee.Amount.String(),
		fee.DueDate,
		fee.WorkflowID,
		fee.WorkflowTitle,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return entity.ErrDuplicatePendingFee
		}
		r.logger.Error("Failed to create pending fee",
			zap.String("organization", fee.OrganizationID),
			zap.String("fee_type", fee.FeeTypeCode), zap.Error(err))
		return storageErr("failed to create pending fee", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storageErr("failed to get last insert id", err)
	}

	fee.ID = id
	return nil
}

// DeleteMatching removes one pending fee for (organization, fee type), the
// earliest-due first. Obligations for the same pair coexist per workflow, and
// one issued receipt settles exactly one of them.
func (r *PendingFeeRepository) DeleteMatching(ctx context.Context, organizationID, feeTypeCode string) (bool, error) {
	query := `
		DELETE FROM pending_fees
		WHERE id = (
			SELECT id FROM pending_fees
			WHERE organization_id = ? AND fee_type_code = ?
			ORDER BY due_date, id
			LIMIT 1
		)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, organizationID, feeTypeCode)
	if err != nil {
		r.logger.Error("Failed to delete pending fee",
			zap.String("organization", organizationID),
			zap.String("fee_type", feeTypeCode), zap.Error(err))
		return false, storageErr("failed to delete pending fee", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("failed to read rows affected", err)
	}
	return affected > 0, nil
}

// List returns pending fees ordered by due date ascending
func (r *PendingFeeRepository) List(ctx context.Context, organizationID string) ([]*entity.PendingFee, error) {
	query := `
		SELECT id, organization_id, organization_name, fee_type_code, amount,
			due_date, workflow_id, workflow_title, created_at
		FROM pending_fees
	`
	var args []interface{}
	if organizationID != "" {
		query += ` WHERE organization_id = ?`
		args = append(args, organizationID)
	}
	query += ` ORDER BY due_date, id`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list pending fees", zap.Error(err))
		return nil, storageErr("failed to list pending fees", err)
	}
	defer rows.Close()

	var fees []*entity.PendingFee
	for rows.Next() {
		var fee entity.PendingFee
		var amount string

		if err := rows.Scan(
			&fee.ID,
			&fee.OrganizationID,
			&fee.OrganizationName,
			&fee.FeeTypeCode,
			&amount,
			&fee.DueDate,
			&fee.WorkflowID,
			&fee.WorkflowTitle,
			&fee.CreatedAt,
		); err != nil {
			return nil, storageErr("failed to scan pending fee", err)
		}

		if fee.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("pending fee %d has invalid amount %q: %w", fee.ID, amount, err)
		}
		fees = append(fees, &fee)
	}

	return fees, rows.Err()
}

// Verify interface compliance
var _ port.PendingFeeRepository = (*PendingFeeRepository)(nil)
