package repository

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/oirpng/receipt-ledger/internal/domain/entity"
)

// storageErr classifies a driver-level failure. Constraint violations keep
// their own identity so a rejected write is never mistaken for an outage.
// The core never retries; callers decide on retry/backoff policy.
func storageErr(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%s: %v: %w", op, err, entity.ErrConstraintViolated)
	}
	return fmt.Errorf("%s: %v: %w", op, err, entity.ErrStorageUnavailable)
}
