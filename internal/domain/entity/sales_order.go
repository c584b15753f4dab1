package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de cabecera de un pedido de venta.
const (
	SalesOrderDraft            = "draft"
	SalesOrderConfirmed        = "confirmed"
	SalesOrderPartiallyShipped = "partially_shipped"
	SalesOrderFullyShipped     = "fully_shipped"
	SalesOrderCancelled        = "cancelled"
)

// Estados de línea compartidos por pedidos de venta y de compra.
const (
	LineOpen      = "open"
	LinePartial   = "partial"
	LineFulfilled = "fulfilled"
	LineReceived  = "received"
	LineCancelled = "cancelled"
)

// SalesOrder cabecera del pedido de venta.
type SalesOrder struct {
	ID          string
	CompanyID   string
	Number      string
	CustomerID  string
	WarehouseID string
	Status      string
	OrderDate   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []SalesOrderLine
}

// SalesOrderLine línea del pedido. QtyShipped solo la incrementa el motor de despachos.
type SalesOrderLine struct {
	ID         string
	OrderID    string
	LineNo     int
	ItemID     string
	QtyOrdered decimal.Decimal
	QtyShipped decimal.Decimal
	UnitPrice  decimal.Decimal
	Discount   decimal.Decimal // fracción 0..1
	Status     string
}

// Remaining cantidad pendiente de despacho (nunca negativa).
func (l *SalesOrderLine) Remaining() decimal.Decimal {
	r := l.QtyOrdered.Sub(l.QtyShipped)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Line busca una línea por ID.
func (o *SalesOrder) Line(lineID string) *SalesOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}
