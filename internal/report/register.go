// Package report renders read-only ledger data for presentation collaborators.
// The ledger itself only hands out exact decimal amounts and raw identifiers;
// all formatting happens here, outside the core.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/oirpng/receipt-ledger/internal/application/service"
	"github.com/oirpng/receipt-ledger/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Receipt Register"

var registerHeaders = []string{
	"Receipt No", "Payment Date", "Organization", "Payment Method",
	"Reference", "Total Amount", "Status", "Cancel Reason",
}

// RegisterExporter writes the receipt register as an xlsx workbook
type RegisterExporter struct {
	ledger service.LedgerService
	logger service.Logger
}

// NewRegisterExporter creates a new RegisterExporter
func NewRegisterExporter(ledger service.LedgerService, logger service.Logger) *RegisterExporter {
	return &RegisterExporter{
		ledger: ledger,
		logger: logger,
	}
}

// Export writes one row per receipt matching the filter, in the ledger's
// stable find order. Amounts are written as their exact decimal strings.
func (e *RegisterExporter) Export(ctx context.Context, filter entity.ReceiptFilter, w io.Writer) error {
	receipts, err := e.ledger.Find(ctx, filter)
	if err != nil {
		return err
	}

	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(registerSheet)
	if err != nil {
		return fmt.Errorf("failed to create register sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for col, header := range registerHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(registerSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
	}

	for i, receipt := range receipts {
		status := "ISSUED"
		cancelReason := ""
		if receipt.Cancelled() {
			status = "CANCELLED"
			cancelReason = receipt.Cancellation.Reason
		}

		values := []interface{}{
			receipt.ReceiptNumber,
			receipt.PaymentDate.Format("2006-01-02"),
			receipt.OrganizationName,
			string(receipt.PaymentMethod),
			receipt.PaymentReference,
			receipt.TotalAmount.String(),
			status,
			cancelReason,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(registerSheet, cell, value); err != nil {
				return fmt.Errorf("failed to write register row %d: %w", i+1, err)
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write register workbook: %w", err)
	}

	e.logger.Info("Receipt register exported", "receipts", len(receipts))
	return nil
}
