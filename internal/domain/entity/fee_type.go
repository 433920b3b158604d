package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeType is a priced, catalog-defined category of regulatory fee or fine.
// Unit prices are snapshotted onto receipt items at selection time, so editing
// a fee type never alters already-issued receipts. Fee types are never
// deleted; retired ones are deactivated so historical receipts stay resolvable.
type FeeType struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Description    string          `json:"description"`
	LegalReference string          `json:"legal_reference"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
