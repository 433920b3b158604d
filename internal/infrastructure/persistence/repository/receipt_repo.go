package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/oirpng/receipt-ledger/internal/application/port"
	"github.com/oirpng/receipt-ledger/internal/domain/entity"
	"github.com/oirpng/receipt-ledger/internal/infrastructure/persistence/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptRepository implements port.ReceiptRepository
type ReceiptRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *sql.DB, logger *zap.Logger) port.ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a receipt with its items. Expected to run inside the
// issuance transaction so the number allocation commits with the receipt.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	query := `
		INSERT INTO receipts (
			receipt_number, organization_id, organization_name, total_amount,
			payment_method, payment_reference, payment_date, issued_by, issued_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := sqlite.ExecutorFrom(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		receipt.ReceiptNumber,
		receipt.OrganizationID,
		receipt.OrganizationName,
		receipt.TotalAmount.String(),
		string(receipt.PaymentMethod),
		receipt.PaymentReference,
		receipt.PaymentDate,
		receipt.IssuedBy,
		receipt.IssuedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create receipt",
			zap.String("receipt_number", receipt.ReceiptNumber), zap.Error(err))
		return storageErr("failed to create receipt", err)
	}

	itemQuery := `
		INSERT INTO receipt_items (
			id, receipt_number, position, fee_type_code, description,
			quantity, unit_price, amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, item := range receipt.Items {
		_, err := exec.ExecContext(ctx, itemQuery,
			item.ID,
			receipt.ReceiptNumber,
			i,
			item.FeeTypeCode,
			item.Description,
			item.Quantity,
			item.UnitPrice.String(),
			item.Amount.String(),
		)
		if err != nil {
			r.logger.Error("Failed to create receipt item",
				zap.String("receipt_number", receipt.ReceiptNumber),
				zap.String("fee_type", item.FeeTypeCode), zap.Error(err))
			return storageErr("failed to create receipt item", err)
		}
	}

	return nil
}

// GetByNumber retrieves a receipt with its ordered items; (nil, nil) when unknown
func (r *ReceiptRepository) GetByNumber(ctx context.Context, receiptNumber string) (*entity.Receipt, error) {
	query := `
		SELECT receipt_number, organization_id, organization_name, total_amount,
			payment_method, payment_reference, payment_date, issued_by, issued_at,
			cancel_reason, cancelled_by, cancelled_at
		FROM receipts
		WHERE receipt_number = ?
	`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, receiptNumber)
	receipt, err := r.scanReceipt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get receipt",
			zap.String("receipt_number", receiptNumber), zap.Error(err))
		return nil, err
	}

	items, err := r.loadItems(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	receipt.Items = items

	return receipt, nil
}

// MarkCancelled performs the compare-and-set to cancelled. The WHERE clause
// on cancelled_at makes two concurrent cancellations resolve to one winner.
func (r *ReceiptRepository) MarkCancelled(ctx context.Context, receiptNumber string, c entity.Cancellation) (bool, error) {
	query := `
		UPDATE receipts
		SET cancel_reason = ?, cancelled_by = ?, cancelled_at = ?
		WHERE receipt_number = ? AND cancelled_at IS NULL
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		c.Reason,
		c.CancelledBy,
		c.CancelledAt,
		receiptNumber,
	)
	if err != nil {
		r.logger.Error("Failed to mark receipt cancelled",
			zap.String("receipt_number", receiptNumber), zap.Error(err))
		return false, storageErr("failed to mark receipt cancelled", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("failed to read rows affected", err)
	}
	return affected == 1, nil
}

// Find returns receipts matching the filter, payment date descending then
// receipt number descending, so repeated queries are deterministic.
func (r *ReceiptRepository) Find(ctx context.Context, filter entity.ReceiptFilter) ([]*entity.Receipt, error) {
	query := `
		SELECT receipt_number, organization_id, organization_name, total_amount,
			payment_method, payment_reference, payment_date, issued_by, issued_at,
			cancel_reason, cancelled_by, cancelled_at
		FROM receipts
		WHERE 1 = 1
	`
	var args []interface{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` AND (
			LOWER(receipt_number) LIKE '%' || ? || '%' ESCAPE '\'
			OR LOWER(organization_name) LIKE '%' || ? || '%' ESCAPE '\'
			OR LOWER(payment_reference) LIKE '%' || ? || '%' ESCAPE '\'
		)`
		lowered := escapeLike(strings.ToLower(q))
		args = append(args, lowered, lowered, lowered)
	}
	if filter.From != nil {
		query += ` AND payment_date >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += ` AND payment_date <= ?`
		args = append(args, *filter.To)
	}

	// Comparing length before text keeps the number tie-break numeric once a
	// year's sequence outgrows its zero padding.
	query += ` ORDER BY payment_date DESC, length(receipt_number) DESC, receipt_number DESC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to find receipts", zap.Error(err))
		return nil, storageErr("failed to find receipts", err)
	}
	defer rows.Close()

	var receipts []*entity.Receipt
	for rows.Next() {
		receipt, err := r.scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate receipts", err)
	}

	for _, receipt := range receipts {
		items, err := r.loadItems(ctx, receipt.ReceiptNumber)
		if err != nil {
			return nil, err
		}
		receipt.Items = items
	}

	return receipts, nil
}

// escapeLike escapes LIKE metacharacters so user queries match literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ReceiptRepository) scanReceipt(row rowScanner) (*entity.Receipt, error) {
	var receipt entity.Receipt
	var totalAmount, paymentMethod string
	var cancelReason, cancelledBy sql.NullString
	var cancelledAt sql.NullTime

	err := row.Scan(
		&receipt.ReceiptNumber,
		&receipt.OrganizationID,
		&receipt.OrganizationName,
		&totalAmount,
		&paymentMethod,
		&receipt.PaymentReference,
		&receipt.PaymentDate,
		&receipt.IssuedBy,
		&receipt.IssuedAt,
		&cancelReason,
		&cancelledBy,
		&cancelledAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, storageErr("failed to scan receipt", err)
	}

	receipt.TotalAmount, err = decimal.NewFromString(totalAmount)
	if err != nil {
		return nil, fmt.Errorf("receipt %s has invalid total %q: %w", receipt.ReceiptNumber, totalAmount, err)
	}
	receipt.PaymentMethod = entity.PaymentMethod(paymentMethod)

	if cancelledAt.Valid {
		receipt.Cancellation = &entity.Cancellation{
			Reason:      cancelReason.String,
			CancelledBy: cancelledBy.String,
			CancelledAt: cancelledAt.Time,
		}
	}

	return &receipt, nil
}

func (r *ReceiptRepository) loadItems(ctx context.Context, receiptNumber string) ([]entity.ReceiptItem, error) {
	query := `
		SELECT id, fee_type_code, description, quantity, unit_price, amount
		FROM receipt_items
		WHERE receipt_number = ?
		ORDER BY position
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, receiptNumber)
	if err != nil {
		return nil, storageErr("failed to load receipt items", err)
	}
	defer rows.Close()

	var items []entity.ReceiptItem
	for rows.Next() {
		var item entity.ReceiptItem
		var unitPrice, amount string

		if err := rows.Scan(
			&item.ID,
			&item.FeeTypeCode,
			&item.Description,
			&item.Quantity,
			&unitPrice,
			&amount,
		); err != nil {
			return nil, storageErr("failed to scan receipt item", err)
		}

		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("receipt %s item has invalid unit price %q: %w", receiptNumber, unitPrice, err)
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("receipt %s item has invalid amount %q: %w", receiptNumber, amount, err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Verify interface compliance
var _ port.ReceiptRepository = (*ReceiptRepository)(nil)
