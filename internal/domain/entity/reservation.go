package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva.
const (
	ReservationActive    = "active"
	ReservationFulfilled = "fulfilled"
	ReservationCancelled = "cancelled"
)

// Reservation retiene stock de una bodega contra una línea de pedido de venta.
type Reservation struct {
	ID          string
	CompanyID   string
	ItemID      string
	WarehouseID string
	OrderID     string
	OrderLineID string
	Quantity    decimal.Decimal
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
