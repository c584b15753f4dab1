package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Adjustment ajuste por conteo físico en una bodega.
type Adjustment struct {
	ID             string
	CompanyID      string
	Number         string
	WarehouseID    string
	Reason         string
	Status         string
	AdjustmentDate time.Time
	PostedAt       *time.Time
	PostedBy       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Lines          []AdjustmentLine
}

// AdjustmentLine QtySystem se toma del libro al crear la línea; QtyActual es lo contado.
// UnitCost nil = costo estándar del ítem al contabilizar.
type AdjustmentLine struct {
	ID           string
	AdjustmentID string
	ItemID       string
	QtySystem    decimal.Decimal
	QtyActual    decimal.Decimal
	UnitCost     *decimal.Decimal
}

// Delta diferencia a contabilizar (contado - sistema).
func (l *AdjustmentLine) Delta() decimal.Decimal {
	return l.QtyActual.Sub(l.QtySystem)
}
