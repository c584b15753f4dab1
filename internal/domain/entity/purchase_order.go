package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de cabecera de una orden de compra.
const (
	PurchaseOrderDraft             = "draft"
	PurchaseOrderConfirmed         = "confirmed"
	PurchaseOrderPartiallyReceived = "partially_received"
	PurchaseOrderFullyReceived     = "fully_received"
	PurchaseOrderCancelled         = "cancelled"
)

// PurchaseOrder cabecera de la orden de compra (abastecimiento).
type PurchaseOrder struct {
	ID          string
	CompanyID   string
	Number      string
	SupplierID  string
	WarehouseID string
	Status      string
	OrderDate   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []PurchaseOrderLine
}

// PurchaseOrderLine línea de la orden. QtyReceived solo la incrementa el motor de recepciones.
type PurchaseOrderLine struct {
	ID          string
	OrderID     string
	LineNo      int
	ItemID      string
	QtyOrdered  decimal.Decimal
	QtyReceived decimal.Decimal
	UnitCost    decimal.Decimal
	Status      string
}

// Remaining cantidad pendiente de recibir (nunca negativa).
func (l *PurchaseOrderLine) Remaining() decimal.Decimal {
	r := l.QtyOrdered.Sub(l.QtyReceived)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Line busca una línea por ID.
func (o *PurchaseOrder) Line(lineID string) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}
