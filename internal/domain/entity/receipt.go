package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt recepción borrador contra una orden de compra.
type Receipt struct {
	ID              string
	CompanyID       string
	Number          string
	PurchaseOrderID string
	WarehouseID     string
	Status          string
	ReceiptDate     time.Time
	PostedAt        *time.Time
	PostedBy        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []ReceiptLine
}

// ReceiptLine cantidad recibida de una línea de la orden al costo real de la recepción.
type ReceiptLine struct {
	ID        string
	ReceiptID string
	POLineID  string
	ItemID    string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}
