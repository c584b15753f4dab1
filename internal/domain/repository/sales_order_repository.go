package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// SalesOrderRepository puerto para pedidos de venta (cabecera + líneas).
type SalesOrderRepository interface {
	Create(ctx context.Context, order *entity.SalesOrder) error
	GetByID(ctx context.Context, id string) (*entity.SalesOrder, error)
	// GetForUpdate bloquea cabecera y líneas hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error)
	UpdateLine(ctx context.Context, line *entity.SalesOrderLine) error
	UpdateStatus(ctx context.Context, id, status string) error
}
