package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipment despacho borrador contra un pedido de venta; al contabilizarse genera salidas del libro.
type Shipment struct {
	ID          string
	CompanyID   string
	Number      string
	OrderID     string
	WarehouseID string
	Status      string
	ShipDate    time.Time
	InvoiceID   string
	PostedAt    *time.Time
	PostedBy    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []ShipmentLine
}

// ShipmentLine cantidad a despachar de una línea de pedido al costo registrado.
type ShipmentLine struct {
	ID          string
	ShipmentID  string
	OrderLineID string
	ItemID      string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}
