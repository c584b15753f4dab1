package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura; el núcleo solo emite borradores.
const (
	InvoiceStatusDraft = "DRAFT"
)

// Invoice factura borrador emitida al contabilizar un despacho.
type Invoice struct {
	ID         string
	CompanyID  string
	CustomerID string
	OrderID    string
	ShipmentID string
	Number     string
	Date       time.Time
	NetTotal   decimal.Decimal
	TaxRate    decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvoiceDetail línea de la factura borrador.
type InvoiceDetail struct {
	ID          string
	InvoiceID   string
	OrderLineID string
	ItemID      string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Subtotal    decimal.Decimal
}
