package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + bloqueos de fila).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}
	return nil
}

// Repos agrupa los adaptadores sobre un mismo Querier (pool o tx).
type Repos struct {
	q Querier
}

var _ repository.Repos = (*Repos)(nil)

// NewRepos construye los repos sobre q.
func NewRepos(q Querier) *Repos { return &Repos{q: q} }

func (r *Repos) Items() repository.ItemRepository           { return NewItemRepository(r.q) }
func (r *Repos) Warehouses() repository.WarehouseRepository { return NewWarehouseRepository(r.q) }
func (r *Repos) Ledger() repository.StockLedgerRepository   { return NewStockLedgerRepository(r.q) }
func (r *Repos) StockLocks() repository.StockLockRepository { return NewStockLockRepository(r.q) }
func (r *Repos) Reservations() repository.ReservationRepository {
	return NewReservationRepository(r.q)
}
func (r *Repos) Backorders() repository.BackorderRepository { return NewBackorderRepository(r.q) }
func (r *Repos) SalesOrders() repository.SalesOrderRepository {
	return NewSalesOrderRepository(r.q)
}
func (r *Repos) PurchaseOrders() repository.PurchaseOrderRepository {
	return NewPurchaseOrderRepository(r.q)
}
func (r *Repos) Shipments() repository.ShipmentRepository     { return NewShipmentRepository(r.q) }
func (r *Repos) Receipts() repository.ReceiptRepository       { return NewReceiptRepository(r.q) }
func (r *Repos) Transfers() repository.TransferRepository     { return NewTransferRepository(r.q) }
func (r *Repos) Adjustments() repository.AdjustmentRepository { return NewAdjustmentRepository(r.q) }
func (r *Repos) Invoices() repository.InvoiceRepository       { return NewInvoiceRepository(r.q) }
func (r *Repos) Sequences() repository.SequenceRepository     { return NewSequenceRepository(r.q) }
