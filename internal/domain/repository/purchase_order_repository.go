package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// PurchaseOrderRepository puerto para órdenes de compra (cabecera + líneas).
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	UpdateLine(ctx context.Context, line *entity.PurchaseOrderLine) error
	UpdateStatus(ctx context.Context, id, status string) error
}
