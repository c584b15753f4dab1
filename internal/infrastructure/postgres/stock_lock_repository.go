package postgres

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockLockRepository = (*StockLockRepo)(nil)

// StockLockRepo ancla de bloqueo por (ítem, bodega) sobre la tabla stock_locks.
type StockLockRepo struct {
	q Querier
}

// NewStockLockRepository construye el adaptador. Pasar la tx: el bloqueo dura hasta su fin.
func NewStockLockRepository(q Querier) *StockLockRepo {
	return &StockLockRepo{q: q}
}

// Lock crea la fila ancla si no existe y la bloquea (SELECT FOR UPDATE).
func (r *StockLockRepo) Lock(ctx context.Context, itemID, warehouseID string) error {
	if !validID(itemID, warehouseID) {
		return domain.NotFoundf("par %s/%s", itemID, warehouseID)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_locks (item_id, warehouse_id) VALUES ($1, $2)
		ON CONFLICT (item_id, warehouse_id) DO NOTHING`, itemID, warehouseID)
	if err != nil {
		return wrap("insert stock lock", err)
	}
	var one int
	err = r.q.QueryRow(ctx, `
		SELECT 1 FROM stock_locks WHERE item_id = $1 AND warehouse_id = $2
		FOR UPDATE`, itemID, warehouseID).Scan(&one)
	return wrap("lock stock pair", err)
}
