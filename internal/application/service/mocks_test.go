package service

import (
	"context"

	"github.com/oirpng/receipt-ledger/internal/domain/entity"
)

// testLogger is a no-op Logger for tests
type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockFeeTypeRepo struct {
	upsertFunc     func(ctx context.Context, feeType *entity.FeeType) error
	getByCodeFunc  func(ctx context.Context, code string) (*entity.FeeType, error)
	listActiveFunc func(ctx context.Context) ([]*entity.FeeType, error)
}

func (m *mockFeeTypeRepo) Upsert(ctx context.Context, feeType *entity.FeeType) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, feeType)
	}
	return nil
}

func (m *mockFeeTypeRepo) GetByCode(ctx context.Context, code string) (*entity.FeeType, error) {
	if m.getByCodeFunc != nil {
		return m.getByCodeFunc(ctx, code)
	}
	return nil, nil
}

func (m *mockFeeTypeRepo) ListActive(ctx context.Context) ([]*entity.FeeType, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, nil
}

type mockReceiptRepo struct {
	createFunc        func(ctx context.Context, receipt *entity.Receipt) error
	getByNumberFunc   func(ctx context.Context, receiptNumber string) (*entity.Receipt, error)
	markCancelledFunc func(ctx context.Context, receiptNumber string, c entity.Cancellation) (bool, error)
	findFunc          func(ctx context.Context, filter entity.ReceiptFilter) ([]*entity.Receipt, error)
}

func (m *mockReceiptRepo) Create(ctx context.Context, receipt *entity.Receipt) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, receipt)
	}
	return nil
}

func (m *mockReceiptRepo) GetByNumber(ctx context.Context, receiptNumber string) (*entity.Receipt, error) {
	if m.getByNumberFunc != nil {
		return m.getByNumberFunc(ctx, receiptNumber)
	}
	return nil, nil
}

func (m *mockReceiptRepo) MarkCancelled(ctx context.Context, receiptNumber string, c entity.Cancellation) (bool, error) {
	if m.markCancelledFunc != nil {
		return m.markCancelledFunc(ctx, receiptNumber, c)
	}
	return true, nil
}

func (m *mockReceiptRepo) Find(ctx context.Context, filter entity.ReceiptFilter) ([]*entity.Receipt, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter)
	}
	return nil, nil
}

type mockSequenceRepo struct {
	nextValueFunc func(ctx context.Context, year int) (int64, error)
	last          int64
}

func (m *mockSequenceRepo) NextValue(ctx context.Context, year int) (int64, error) {
	if m.nextValueFunc != nil {
		return m.nextValueFunc(ctx, year)
	}
	m.last++
	return m.last, nil
}

type mockPendingRepo struct {
	createFunc         func(ctx context.Context, fee *entity.PendingFee) error
	deleteMatchingFunc func(ctx context.Context, organizationID, feeTypeCode string) (bool, error)
	listFunc           func(ctx context.Context, organizationID string) ([]*entity.PendingFee, error)
}

func (m *mockPendingRepo) Create(ctx context.Context, fee *entity.PendingFee) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, fee)
	}
	fee.ID = 1
	return nil
}

func (m *mockPendingRepo) DeleteMatching(ctx context.Context, organizationID, feeTypeCode string) (bool, error) {
	if m.deleteMatchingFunc != nil {
		return m.deleteMatchingFunc(ctx, organizationID, feeTypeCode)
	}
	return true, nil
}

func (m *mockPendingRepo) List(ctx context.Context, organizationID string) ([]*entity.PendingFee, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, organizationID)
	}
	return nil, nil
}

// mockTxManager runs the function directly; issuance atomicity itself is
// covered by the sqlite-backed repository tests
type mockTxManager struct{}

func (mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
