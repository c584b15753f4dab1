package entity

import "github.com/shopspring/decimal"

// Availability cifras derivadas de (ítem, bodega). WarehouseID vacío = agregado de todas las bodegas.
type Availability struct {
	ItemID      string
	WarehouseID string
	OnHand      decimal.Decimal
	Committed   decimal.Decimal
	Available   decimal.Decimal
}

// NewAvailability calcula Available = OnHand - Committed.
func NewAvailability(itemID, warehouseID string, onHand, committed decimal.Decimal) Availability {
	return Availability{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		OnHand:      onHand,
		Committed:   committed,
		Available:   onHand.Sub(committed),
	}
}
