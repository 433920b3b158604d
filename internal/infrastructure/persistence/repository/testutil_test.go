package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oirpng/receipt-ledger/internal/domain/entity"
	"github.com/oirpng/receipt-ledger/pkg/database"
)

// newTestDB opens a temp-file database and applies the real migrations, so
// repository tests run against the exact production schema.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.Open(database.Config{
		Path:            filepath.Join(t.TempDir(), "ledger_test.db"),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations(filepath.Join("..", "..", "..", "..", "migrations")))

	return db
}

// seedFeeType inserts a fee type so item and pending fee foreign keys resolve
func seedFeeType(t *testing.T, db *sql.DB, code, price string) {
	t.Helper()

	repo := NewFeeTypeRepository(db, zap.NewNop())
	err := repo.Upsert(context.Background(), &entity.FeeType{
		Code:      code,
		Name:      "Fee " + code,
		UnitPrice: decimal.RequireFromString(price),
		Active:    true,
	})
	require.NoError(t, err)
}
