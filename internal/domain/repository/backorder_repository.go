package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// BackorderRepository puerto de persistencia de backorders (uno por línea de pedido).
type BackorderRepository interface {
	GetByOrderLine(ctx context.Context, orderLineID string) (*entity.Backorder, error)
	// Upsert inserta o actualiza por línea de pedido.
	Upsert(ctx context.Context, b *entity.Backorder) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Backorder, error)
}
