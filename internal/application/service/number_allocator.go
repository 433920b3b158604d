package service

import (
	"context"
	"fmt"

	"github.com/oirpng/receipt-ledger/internal/application/port"
)

// NumberAllocator hands out unique, strictly increasing receipt numbers.
// Numbers are scoped by year and formatted PREFIX-YEAR-NNNNN; a consumed
// number is never reused, including for cancelled receipts.
type NumberAllocator interface {
	Next(ctx context.Context, year int) (string, error)
}

type numberAllocatorImpl struct {
	sequenceRepo port.SequenceRepository
	prefix       string
	padWidth     int
}

// NewNumberAllocator creates a new NumberAllocator
func NewNumberAllocator(sequenceRepo port.SequenceRepository, prefix string, padWidth int) NumberAllocator {
	return &numberAllocatorImpl{
		sequenceRepo: sequenceRepo,
		prefix:       prefix,
		padWidth:     padWidth,
	}
}

// Next allocates the next number for the year
func (a *numberAllocatorImpl) Next(ctx context.Context, year int) (string, error) {
	value, err := a.sequenceRepo.NextValue(ctx, year)
	if err != nil {
		return "", fmt.Errorf("failed to allocate receipt number for %d: %w", year, err)
	}
	return fmt.Sprintf("%s-%d-%0*d", a.prefix, year, a.padWidth, value), nil
}
