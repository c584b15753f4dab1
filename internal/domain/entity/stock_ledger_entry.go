package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de stock.
const (
	LedgerTxReceipt     = "receipt"
	LedgerTxShipment    = "shipment"
	LedgerTxAdjustment  = "adjustment"
	LedgerTxTransferIn  = "transfer_in"
	LedgerTxTransferOut = "transfer_out"
)

// Tipos de documento de origen de un movimiento.
const (
	ReferenceShipment   = "shipment"
	ReferenceReceipt    = "receipt"
	ReferenceTransfer   = "transfer"
	ReferenceAdjustment = "adjustment"
)

// StockLedgerEntry es un movimiento firmado e inmutable del libro de stock.
// El on-hand de (ítem, bodega) es la suma de Quantity de todas sus entradas.
type StockLedgerEntry struct {
	ID            string
	CompanyID     string
	ItemID        string
	WarehouseID   string
	TxType        string
	ReferenceType string
	ReferenceID   string
	Quantity      decimal.Decimal // positivo entrada, negativo salida
	UnitCost      decimal.Decimal
	PostingDate   time.Time
	CreatedAt     time.Time
	CreatedBy     string
}

// TotalCost valor del movimiento (firmado).
func (e *StockLedgerEntry) TotalCost() decimal.Decimal {
	return e.Quantity.Mul(e.UnitCost)
}

// LedgerFilter criterios de consulta del libro.
type LedgerFilter struct {
	CompanyID   string
	ItemID      string
	WarehouseID string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
