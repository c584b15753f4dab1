package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrderLineRequest línea de pedido de venta.
type SalesOrderLineRequest struct {
	ItemID     string          `json:"item_id" validate:"required"`
	QtyOrdered decimal.Decimal `json:"qty_ordered"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Discount   decimal.Decimal `json:"discount"` // fracción 0..1
}

// CreateSalesOrderRequest entrada para registrar un pedido de venta en borrador.
type CreateSalesOrderRequest struct {
	Number      string                  `json:"number" validate:"omitempty,max=50"`
	CustomerID  string                  `json:"customer_id" validate:"required"`
	WarehouseID string                  `json:"warehouse_id" validate:"required"`
	OrderDate   *time.Time              `json:"order_date,omitempty"`
	Lines       []SalesOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SalesOrderLineResponse línea de pedido con sus contadores.
type SalesOrderLineResponse struct {
	ID         string          `json:"id"`
	LineNo     int             `json:"line_no"`
	ItemID     string          `json:"item_id"`
	QtyOrdered decimal.Decimal `json:"qty_ordered"`
	QtyShipped decimal.Decimal `json:"qty_shipped"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Discount   decimal.Decimal `json:"discount"`
	Status     string          `json:"status"`
}

// SalesOrderResponse pedido de venta.
type SalesOrderResponse struct {
	ID          string                   `json:"id"`
	Number      string                   `json:"number"`
	CustomerID  string                   `json:"customer_id"`
	WarehouseID string                   `json:"warehouse_id"`
	Status      string                   `json:"status"`
	OrderDate   time.Time                `json:"order_date"`
	Lines       []SalesOrderLineResponse `json:"lines"`
}

// PurchaseOrderLineRequest línea de orden de compra.
type PurchaseOrderLineRequest struct {
	ItemID     string          `json:"item_id" validate:"required"`
	QtyOrdered decimal.Decimal `json:"qty_ordered"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest entrada para registrar una orden de compra en borrador.
type CreatePurchaseOrderRequest struct {
	Number      string                     `json:"number" validate:"omitempty,max=50"`
	SupplierID  string                     `json:"supplier_id" validate:"required"`
	WarehouseID string                     `json:"warehouse_id" validate:"required"`
	OrderDate   *time.Time                 `json:"order_date,omitempty"`
	Lines       []PurchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseOrderLineResponse línea de orden de compra con lo recibido.
type PurchaseOrderLineResponse struct {
	ID          string          `json:"id"`
	LineNo      int             `json:"line_no"`
	ItemID      string          `json:"item_id"`
	QtyOrdered  decimal.Decimal `json:"qty_ordered"`
	QtyReceived decimal.Decimal `json:"qty_received"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Status      string          `json:"status"`
}

// PurchaseOrderResponse orden de compra.
type PurchaseOrderResponse struct {
	ID          string                      `json:"id"`
	Number      string                      `json:"number"`
	SupplierID  string                      `json:"supplier_id"`
	WarehouseID string                      `json:"warehouse_id"`
	Status      string                      `json:"status"`
	OrderDate   time.Time                   `json:"order_date"`
	Lines       []PurchaseOrderLineResponse `json:"lines"`
}
