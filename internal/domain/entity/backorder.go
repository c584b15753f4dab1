package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un backorder.
const (
	BackorderOpen      = "open"
	BackorderPartial   = "partial"
	BackorderFulfilled = "fulfilled"
)

// Backorder cantidad aún adeudada de una línea de pedido tras un despacho parcial (uno por línea).
type Backorder struct {
	ID             string
	CompanyID      string
	OrderID        string
	OrderLineID    string
	ItemID         string
	WarehouseID    string
	QtyBackordered decimal.Decimal
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
