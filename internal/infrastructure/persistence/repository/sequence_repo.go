package repository

import (
	"context"
	"database/sql"

	"github.com/oirpng/receipt-ledger/internal/application/port"
	"github.com/oirpng/receipt-ledger/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// SequenceRepository implements port.SequenceRepository over a per-year
// counter row. The single UPSERT increment is serialized by sqlite, so
// concurrent callers always observe distinct, contiguous values.
type SequenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *sql.DB, logger *zap.Logger) port.SequenceRepository {
	return &SequenceRepository{
		db:     db,
		logger: logger,
	}
}

// NextValue atomically increments and returns the counter for the year
func (r *SequenceRepository) NextValue(ctx context.Context, year int) (int64, error) {
	query := `
		INSERT INTO receipt_sequences (year, last_value) VALUES (?, 1)
		ON CONFLICT(year) DO UPDATE SET last_value = last_value + 1
		RETURNING last_value
	`

	var value int64
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, year).Scan(&value)
	if err != nil {
		r.logger.Error("Failed to advance receipt sequence", zap.Int("year", year), zap.Error(err))
		return 0, storageErr("failed to advance receipt sequence", err)
	}

	return value, nil
}

// Verify interface compliance
var _ port.SequenceRepository = (*SequenceRepository)(nil)
