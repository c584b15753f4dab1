package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

// StockLedgerRepo implementación del libro de stock sobre PostgreSQL (usable con pool o tx).
// La tabla rechaza UPDATE y DELETE por trigger.
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

const ledgerColumns = `id, company_id, item_id, warehouse_id, tx_type, reference_type, reference_id,
	quantity, unit_cost, posting_date, created_at, created_by`

// Append anexa un movimiento.
func (r *StockLedgerRepo) Append(ctx context.Context, e *entity.StockLedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.PostingDate.IsZero() {
		e.PostingDate = e.CreatedAt
	}
	query := `
		INSERT INTO stock_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.CompanyID, e.ItemID, e.WarehouseID, e.TxType, e.ReferenceType, e.ReferenceID,
		e.Quantity, e.UnitCost, e.PostingDate, e.CreatedAt, nullable(e.CreatedBy),
	)
	return wrap("append ledger entry", err)
}

// SumQuantity on-hand de (ítem, bodega), opcionalmente hasta una fecha de contabilización.
func (r *StockLedgerRepo) SumQuantity(ctx context.Context, itemID, warehouseID string, upTo *time.Time) (decimal.Decimal, error) {
	if !validID(itemID, warehouseID) {
		return decimal.Zero, nil
	}
	query := `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_ledger
		WHERE item_id = $1 AND warehouse_id = $2 AND ($3::timestamptz IS NULL OR posting_date <= $3)`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, itemID, warehouseID, upTo).Scan(&total); err != nil {
		return decimal.Zero, wrap("sum ledger quantity", err)
	}
	return total, nil
}

// SumByItem on-hand del ítem por bodega.
func (r *StockLedgerRepo) SumByItem(ctx context.Context, itemID string) (map[string]decimal.Decimal, error) {
	if !validID(itemID) {
		return map[string]decimal.Decimal{}, nil
	}
	query := `
		SELECT warehouse_id, SUM(quantity) FROM stock_ledger
		WHERE item_id = $1 GROUP BY warehouse_id`
	rows, err := r.q.Query(ctx, query, itemID)
	if err != nil {
		return nil, wrap("sum ledger by item", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var wh string
		var q decimal.Decimal
		if err := rows.Scan(&wh, &q); err != nil {
			return nil, wrap("scan ledger sum", err)
		}
		out[wh] = q
	}
	return out, wrap("sum ledger by item", rows.Err())
}

// ListByReference movimientos generados por un documento.
func (r *StockLedgerRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockLedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger
		WHERE reference_type = $1 AND reference_id = $2 ORDER BY seq`
	return r.list(ctx, "list ledger by reference", query, referenceType, referenceID)
}

// List movimientos de la empresa con filtros opcionales, ordenados por fecha de contabilización.
func (r *StockLedgerRepo) List(ctx context.Context, f entity.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	if (f.ItemID != "" && !validID(f.ItemID)) || (f.WarehouseID != "" && !validID(f.WarehouseID)) {
		return nil, nil
	}
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE company_id = $1`
	args := []any{f.CompanyID}
	pos := 2
	if f.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, f.ItemID)
		pos++
	}
	if f.WarehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, f.WarehouseID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND posting_date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND posting_date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY posting_date, seq LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limitOrAll(f.Limit), f.Offset)
	return r.list(ctx, "list ledger", query, args...)
}

func (r *StockLedgerRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockLedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var list []*entity.StockLedgerEntry
	for rows.Next() {
		var e entity.StockLedgerEntry
		var createdBy *string
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ItemID, &e.WarehouseID, &e.TxType, &e.ReferenceType,
			&e.ReferenceID, &e.Quantity, &e.UnitCost, &e.PostingDate, &e.CreatedAt, &createdBy); err != nil {
			return nil, wrap("scan ledger entry", err)
		}
		e.CreatedBy = deref(createdBy)
		list = append(list, &e)
	}
	return list, wrap(op, rows.Err())
}
