package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de costeo soportados por un ítem. Solo el promedio ponderado recalcula costo.
const (
	CostingMethodAverage = "average"
	CostingMethodFIFO    = "fifo"
)

// Item representa un artículo inventariable.
// Cost es el costo promedio ponderado y solo lo modifica el motor de costeo al recibir.
type Item struct {
	ID            string
	CompanyID     string
	Code          string // código único por empresa
	Name          string
	UnitMeasure   string
	CostingMethod string
	Cost          decimal.Decimal // costo estándar / promedio vigente
	Price         decimal.Decimal // precio de venta
	ReorderPoint  decimal.Decimal
	ReorderQty    decimal.Decimal
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UsesAverageCost indica si el ítem recalcula costo en cada recepción.
func (i *Item) UsesAverageCost() bool {
	return i.CostingMethod == "" || i.CostingMethod == CostingMethodAverage
}
