package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReserveLineRequest línea de reserva; warehouse_id vacío = bodega del pedido.
type ReserveLineRequest struct {
	OrderLineID string          `json:"order_line_id"`
	ItemID      string          `json:"item_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ReserveStockRequest body para POST /api/orders/:id/reservations.
type ReserveStockRequest struct {
	Lines []ReserveLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReservationResponse reserva creada.
type ReservationResponse struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	OrderLineID string          `json:"order_line_id,omitempty"`
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Status      string          `json:"status"`
}

// ReleaseReservationsResponse resultado de liberar reservas.
type ReleaseReservationsResponse struct {
	OrderID  string `json:"order_id"`
	Released int    `json:"released"`
}

// DraftLineRequest línea genérica de documento borrador. Cada documento usa los campos que le aplican:
// despacho (order_line_id, quantity), recepción (po_line_id, quantity), traslado (item_id, quantity),
// ajuste (item_id, qty_actual).
type DraftLineRequest struct {
	OrderLineID string           `json:"order_line_id,omitempty"`
	POLineID    string           `json:"po_line_id,omitempty"`
	ItemID      string           `json:"item_id,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	QtyActual   decimal.Decimal  `json:"qty_actual"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// CreateShipmentRequest body para POST /api/shipments.
type CreateShipmentRequest struct {
	OrderID     string             `json:"order_id" validate:"required"`
	WarehouseID string             `json:"warehouse_id"`
	ShipDate    *time.Time         `json:"ship_date,omitempty"`
	Lines       []DraftLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateReceiptRequest body para POST /api/receipts.
type CreateReceiptRequest struct {
	PurchaseOrderID string             `json:"purchase_order_id" validate:"required"`
	WarehouseID     string             `json:"warehouse_id"`
	ReceiptDate     *time.Time         `json:"receipt_date,omitempty"`
	Lines           []DraftLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceWarehouseID string             `json:"source_warehouse_id" validate:"required"`
	DestWarehouseID   string             `json:"dest_warehouse_id" validate:"required,nefield=SourceWarehouseID"`
	TransferDate      *time.Time         `json:"transfer_date,omitempty"`
	Lines             []DraftLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateAdjustmentRequest body para POST /api/adjustments.
type CreateAdjustmentRequest struct {
	WarehouseID    string             `json:"warehouse_id" validate:"required"`
	Reason         string             `json:"reason" validate:"max=500"`
	AdjustmentDate *time.Time         `json:"adjustment_date,omitempty"`
	Lines          []DraftLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DocumentLineResponse línea de un documento borrador o contabilizado.
type DocumentLineResponse struct {
	ID          string           `json:"id"`
	OrderLineID string           `json:"order_line_id,omitempty"`
	POLineID    string           `json:"po_line_id,omitempty"`
	ItemID      string           `json:"item_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	QtySystem   *decimal.Decimal `json:"qty_system,omitempty"`
	QtyActual   *decimal.Decimal `json:"qty_actual,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// DocumentResponse documento borrador (despacho, recepción, traslado o ajuste).
type DocumentResponse struct {
	ID     string                 `json:"id"`
	Type   string                 `json:"type"`
	Number string                 `json:"number,omitempty"`
	Status string                 `json:"status"`
	Date   time.Time              `json:"date"`
	Lines  []DocumentLineResponse `json:"lines"`
}

// LedgerEntryResponse movimiento del libro de stock.
type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	WarehouseID   string          `json:"warehouse_id"`
	TxType        string          `json:"tx_type"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	PostingDate   time.Time       `json:"posting_date"`
	CreatedBy     string          `json:"created_by"`
}

// LedgerListResponse página del libro.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// InvoiceDraftResponse factura borrador emitida por un despacho.
type InvoiceDraftResponse struct {
	ID         string          `json:"id"`
	Number     string          `json:"number"`
	NetTotal   decimal.Decimal `json:"net_total"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// BackorderResponse estado del backorder de una línea.
type BackorderResponse struct {
	OrderLineID    string          `json:"order_line_id"`
	ItemID         string          `json:"item_id"`
	QtyBackordered decimal.Decimal `json:"qty_backordered"`
	Status         string          `json:"status"`
}

// PostingResponse resultado de contabilizar cualquier documento.
type PostingResponse struct {
	DocumentID  string                `json:"document_id"`
	Number      string                `json:"number"`
	Entries     []LedgerEntryResponse `json:"entries"`
	OrderStatus string                `json:"order_status,omitempty"`
	Invoice     *InvoiceDraftResponse `json:"invoice,omitempty"`
	Backorders  []BackorderResponse   `json:"backorders,omitempty"`
	// ItemCosts costo promedio recalculado por ítem (solo recepciones).
	ItemCosts map[string]decimal.Decimal `json:"item_costs,omitempty"`
}

// AvailabilityResponse cifras de disponibilidad; warehouse_id vacío = agregado.
type AvailabilityResponse struct {
	ItemID      string                 `json:"item_id"`
	WarehouseID string                 `json:"warehouse_id,omitempty"`
	OnHand      decimal.Decimal        `json:"on_hand"`
	Committed   decimal.Decimal        `json:"committed"`
	Available   decimal.Decimal        `json:"available"`
	ByWarehouse []AvailabilityResponse `json:"by_warehouse,omitempty"`
}

// SequenceRequest body para POST /api/sequences/:doc_type/next. scope se anida bajo la empresa del token.
type SequenceRequest struct {
	Scope string `json:"scope" validate:"max=100"`
}

// SequenceResponse número emitido.
type SequenceResponse struct {
	Scope   string `json:"scope"`
	DocType string `json:"doc_type"`
	Number  string `json:"number"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un ítem en o bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ItemID              string          `json:"item_id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Available           decimal.Decimal `json:"available"`
	ReorderPoint        decimal.Decimal `json:"reorder_point"`
	Deficit             decimal.Decimal `json:"deficit"`             // ReorderPoint - Available
	SuggestedOrderQty   decimal.Decimal `json:"suggested_order_qty"` // ReorderQty o 1.5×ReorderPoint - Available
	UnitCost            decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"`
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`
	UnitsShippedLast90d decimal.Decimal `json:"units_shipped_last_90d"`
	Priority            int             `json:"priority"` // 1 = más urgente
}

// InvoiceLineResponse línea de factura con los datos del ítem.
type InvoiceLineResponse struct {
	OrderLineID string          `json:"order_line_id"`
	ItemID      string          `json:"item_id"`
	ItemCode    string          `json:"item_code"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse factura borrador completa.
type InvoiceResponse struct {
	InvoiceDraftResponse
	CustomerID     string                `json:"customer_id"`
	OrderID        string                `json:"order_id"`
	ShipmentID     string                `json:"shipment_id"`
	ShipmentNumber string                `json:"shipment_number,omitempty"`
	Date           time.Time             `json:"date"`
	Status         string                `json:"status"`
	Lines          []InvoiceLineResponse `json:"lines"`
}
