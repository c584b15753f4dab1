package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLedgerRepository libro de stock de solo anexado: no hay Update ni Delete.
// Append nunca rechaza por saldo resultante; esa verificación es del motor que lo invoca,
// dentro de la misma transacción y antes de llamar.
type StockLedgerRepository interface {
	Append(ctx context.Context, entry *entity.StockLedgerEntry) error
	// SumQuantity on-hand de (ítem, bodega); upTo limita por fecha de contabilización (inclusive).
	SumQuantity(ctx context.Context, itemID, warehouseID string, upTo *time.Time) (decimal.Decimal, error)
	// SumByItem on-hand del ítem por bodega.
	SumByItem(ctx context.Context, itemID string) (map[string]decimal.Decimal, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockLedgerEntry, error)
	List(ctx context.Context, filter entity.LedgerFilter) ([]*entity.StockLedgerEntry, error)
}

// StockLockRepository ancla de bloqueo por (ítem, bodega).
// Lock crea la fila si no existe y la bloquea (SELECT FOR UPDATE) hasta el fin de la transacción.
type StockLockRepository interface {
	Lock(ctx context.Context, itemID, warehouseID string) error
}
