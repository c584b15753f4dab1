package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Code string `json:"code" validate:"required,min=1,max=50"`
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// CreateItemRequest entrada para crear un ítem. El costo inicial solo cambia luego por recepciones.
type CreateItemRequest struct {
	Code          string           `json:"code" validate:"required,min=1,max=50"`
	Name          string           `json:"name" validate:"required,min=1,max=200"`
	UnitMeasure   string           `json:"unit_measure" validate:"omitempty,max=20"`
	CostingMethod string           `json:"costing_method" validate:"omitempty,oneof=average fifo"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	ReorderPoint  decimal.Decimal  `json:"reorder_point"`
	ReorderQty    decimal.Decimal  `json:"reorder_qty"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	UnitMeasure   string          `json:"unit_measure"`
	CostingMethod string          `json:"costing_method"`
	Cost          decimal.Decimal `json:"cost"`
	Price         decimal.Decimal `json:"price"`
	ReorderPoint  decimal.Decimal `json:"reorder_point"`
	ReorderQty    decimal.Decimal `json:"reorder_qty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
