package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oirpng/receipt-ledger/internal/domain/entity"
)

func finalizedDraft(t *testing.T) *entity.FinalizedDraft {
	t.Helper()
	price := decimal.RequireFromString("100.00")
	return &entity.FinalizedDraft{
		Items: []entity.ReceiptItem{{
			ID:          "item-1",
			FeeTypeCode: "REG-ORG",
			Quantity:    1,
			UnitPrice:   price,
			Amount:      price,
		}},
		OrganizationID:   "org-7",
		OrganizationName: "PNG Teachers Association",
		TotalAmount:      price,
		PaymentMethod:    entity.PaymentMethodBankTransfer,
		PaymentReference: "BT1",
		PaymentDate:      time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		IssuedBy:         "clerk-1",
	}
}

func newTestLedger(receiptRepo *mockReceiptRepo, seqRepo *mockSequenceRepo) LedgerService {
	allocator := NewNumberAllocator(seqRepo, "OIR", 5)
	return NewLedgerService(receiptRepo, allocator, mockTxManager{}, testLogger{})
}

func TestLedgerService_Issue(t *testing.T) {
	t.Run("assigns number scoped to payment-date year", func(t *testing.T) {
		var created *entity.Receipt
		receiptRepo := &mockReceiptRepo{
			createFunc: func(ctx context.Context, receipt *entity.Receipt) error {
				created = receipt
				return nil
			},
		}
		ledger := newTestLedger(receiptRepo, &mockSequenceRepo{})

		receipt, err := ledger.Issue(context.Background(), finalizedDraft(t))
		require.NoError(t, err)

		assert.Equal(t, "OIR-2025-00001", receipt.ReceiptNumber)
		assert.Equal(t, "100", receipt.TotalAmount.String())
		assert.False(t, receipt.IssuedAt.IsZero())
		require.NotNil(t, created)
		assert.Equal(t, receipt.ReceiptNumber, created.ReceiptNumber)
	})

	t.Run("consecutive issuances differ by exactly one", func(t *testing.T) {
		seqRepo := &mockSequenceRepo{}
		ledger := newTestLedger(&mockReceiptRepo{}, seqRepo)

		first, err := ledger.Issue(context.Background(), finalizedDraft(t))
		require.NoError(t, err)

		second := finalizedDraft(t)
		second.OrganizationID = "org-8"
		second.OrganizationName = "PNG Maritime Workers Union"
		secondReceipt, err := ledger.Issue(context.Background(), second)
		require.NoError(t, err)

		assert.Equal(t, "OIR-2025-00001", first.ReceiptNumber)
		assert.Equal(t, "OIR-2025-00002", secondReceipt.ReceiptNumber)
	})

	t.Run("allocation failure aborts issuance", func(t *testing.T) {
		seqRepo := &mockSequenceRepo{
			nextValueFunc: func(ctx context.Context, year int) (int64, error) {
				return 0, entity.ErrStorageUnavailable
			},
		}
		var createCalled bool
		receiptRepo := &mockReceiptRepo{
			createFunc: func(ctx context.Context, receipt *entity.Receipt) error {
				createCalled = true
				return nil
			},
		}
		ledger := newTestLedger(receiptRepo, seqRepo)

		_, err := ledger.Issue(context.Background(), finalizedDraft(t))
		assert.ErrorIs(t, err, entity.ErrStorageUnavailable)
		assert.False(t, createCalled)
	})

	t.Run("refuses a draft whose total does not match its items", func(t *testing.T) {
		ledger := newTestLedger(&mockReceiptRepo{}, &mockSequenceRepo{})

		bad := finalizedDraft(t)
		bad.TotalAmount = decimal.RequireFromString("999.99")
		_, err := ledger.Issue(context.Background(), bad)
		assert.Error(t, err)
	})
}

func TestLedgerService_Cancel(t *testing.T) {
	issued := func() *entity.Receipt {
		price := decimal.RequireFromString("100.00")
		return &entity.Receipt{
			ReceiptNumber: "OIR-2025-00001",
			Items: []entity.ReceiptItem{{
				FeeTypeCode: "REG-ORG", Quantity: 1, UnitPrice: price, Amount: price,
			}},
			TotalAmount: price,
		}
	}

	t.Run("sets cancellation sub-record and leaves total untouched", func(t *testing.T) {
		receiptRepo := &mockReceiptRepo{
			getByNumberFunc: func(ctx context.Context, n string) (*entity.Receipt, error) {
				return issued(), nil
			},
		}
		ledger := newTestLedger(receiptRepo, &mockSequenceRepo{})

		receipt, err := ledger.Cancel(context.Background(), "OIR-2025-00001", "Duplicate payment", "registrar")
		require.NoError(t, err)

		require.NotNil(t, receipt.Cancellation)
		assert.Equal(t, "Duplicate payment", receipt.Cancellation.Reason)
		assert.Equal(t, "registrar", receipt.Cancellation.CancelledBy)
		assert.Equal(t, "100", receipt.TotalAmount.String())
		assert.Len(t, receipt.Items, 1)
	})

	t.Run("empty reason", func(t *testing.T) {
		ledger := newTestLedger(&mockReceiptRepo{}, &mockSequenceRepo{})
		_, err := ledger.Cancel(context.Background(), "OIR-2025-00001", "  ", "registrar")
		assert.ErrorIs(t, err, entity.ErrMissingReason)
	})

	t.Run("unknown receipt", func(t *testing.T) {
		ledger := newTestLedger(&mockReceiptRepo{}, &mockSequenceRepo{})
		_, err := ledger.Cancel(context.Background(), "OIR-2025-99999", "reason", "registrar")
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})

	t.Run("already cancelled", func(t *testing.T) {
		r := issued()
		r.Cancellation = &entity.Cancellation{Reason: "first", CancelledBy: "a", CancelledAt: time.Now()}
		receiptRepo := &mockReceiptRepo{
			getByNumberFunc: func(ctx context.Context, n string) (*entity.Receipt, error) {
				return r, nil
			},
		}
		ledger := newTestLedger(receiptRepo, &mockSequenceRepo{})

		_, err := ledger.Cancel(context.Background(), "OIR-2025-00001", "second", "b")
		assert.ErrorIs(t, err, entity.ErrAlreadyCancelled)
	})

	t.Run("losing the compare-and-set reports already cancelled", func(t *testing.T) {
		receiptRepo := &mockReceiptRepo{
			getByNumberFunc: func(ctx context.Context, n string) (*entity.Receipt, error) {
				return issued(), nil
			},
			markCancelledFunc: func(ctx context.Context, n string, c entity.Cancellation) (bool, error) {
				return false, nil
			},
		}
		ledger := newTestLedger(receiptRepo, &mockSequenceRepo{})

		_, err := ledger.Cancel(context.Background(), "OIR-2025-00001", "reason", "registrar")
		assert.ErrorIs(t, err, entity.ErrAlreadyCancelled)
	})
}

func TestLedgerService_Find(t *testing.T) {
	t.Run("re-verifies totals on read", func(t *testing.T) {
		corrupt := &entity.Receipt{
			ReceiptNumber: "OIR-2025-00001",
			Items: []entity.ReceiptItem{{
				FeeTypeCode: "REG-ORG",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("100.00"),
				Amount:      decimal.RequireFromString("100.00"),
			}},
			TotalAmount: decimal.RequireFromString("50.00"),
		}
		receiptRepo := &mockReceiptRepo{
			findFunc: func(ctx context.Context, filter entity.ReceiptFilter) ([]*entity.Receipt, error) {
				return []*entity.Receipt{corrupt}, nil
			},
		}
		ledger := newTestLedger(receiptRepo, &mockSequenceRepo{})

		_, err := ledger.Find(context.Background(), entity.ReceiptFilter{})
		assert.Error(t, err)
	})
}

func TestNumberAllocator_Next(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		width  int
		value  int64
		year   int
		want   string
	}{
		{"first of year", "OIR", 5, 1, 2025, "OIR-2025-00001"},
		{"zero padding holds", "OIR", 5, 42, 2025, "OIR-2025-00042"},
		{"width overflow keeps digits", "OIR", 5, 123456, 2025, "OIR-2025-123456"},
		{"custom prefix", "RCPT", 4, 7, 2031, "RCPT-2031-0007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seqRepo := &mockSequenceRepo{
				nextValueFunc: func(ctx context.Context, year int) (int64, error) {
					assert.Equal(t, tt.year, year)
					return tt.value, nil
				},
			}
			allocator := NewNumberAllocator(seqRepo, tt.prefix, tt.width)

			got, err := allocator.Next(context.Background(), tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
