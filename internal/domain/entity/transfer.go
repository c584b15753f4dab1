package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer traslado borrador entre dos bodegas distintas.
type Transfer struct {
	ID                string
	CompanyID         string
	Number            string
	SourceWarehouseID string
	DestWarehouseID   string
	Status            string
	TransferDate      time.Time
	PostedAt          *time.Time
	PostedBy          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Lines             []TransferLine
}

// TransferLine cantidad trasladada; UnitCost se fija al crear (costo del ítem si no se indica).
type TransferLine struct {
	ID         string
	TransferID string
	ItemID     string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
}
