package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReservationRepository puerto de persistencia de reservas.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	// ListActiveByOrder devuelve las reservas activas del pedido en orden de creación.
	ListActiveByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error)
	// SumActive cantidad comprometida de (ítem, bodega).
	SumActive(ctx context.Context, itemID, warehouseID string) (decimal.Decimal, error)
	// SumActiveByItem cantidad comprometida del ítem por bodega.
	SumActiveByItem(ctx context.Context, itemID string) (map[string]decimal.Decimal, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateQuantity(ctx context.Context, id string, qty decimal.Decimal) error
}
