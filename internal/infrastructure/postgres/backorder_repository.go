package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.BackorderRepository = (*BackorderRepo)(nil)

// BackorderRepo un backorder por línea de pedido.
type BackorderRepo struct {
	q Querier
}

// NewBackorderRepository construye el adaptador.
func NewBackorderRepository(q Querier) *BackorderRepo {
	return &BackorderRepo{q: q}
}

const backorderColumns = `id, company_id, order_id, order_line_id, item_id, warehouse_id,
	qty_backordered, status, created_at, updated_at`

func scanBackorder(row interface{ Scan(...any) error }) (*entity.Backorder, error) {
	var b entity.Backorder
	if err := row.Scan(&b.ID, &b.CompanyID, &b.OrderID, &b.OrderLineID, &b.ItemID, &b.WarehouseID,
		&b.QtyBackordered, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByOrderLine backorder de la línea, o nil.
func (r *BackorderRepo) GetByOrderLine(ctx context.Context, orderLineID string) (*entity.Backorder, error) {
	if !validID(orderLineID) {
		return nil, nil
	}
	b, err := scanBackorder(r.q.QueryRow(ctx, `SELECT `+backorderColumns+` FROM backorders WHERE order_line_id = $1`, orderLineID))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get backorder", err)
	}
	return b, nil
}

// Upsert inserta o actualiza por línea de pedido conservando id y created_at.
func (r *BackorderRepo) Upsert(ctx context.Context, b *entity.Backorder) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO backorders (` + backorderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), COALESCE($10, now()))
		ON CONFLICT (order_line_id) DO UPDATE SET
			qty_backordered = EXCLUDED.qty_backordered,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		b.ID, b.CompanyID, b.OrderID, b.OrderLineID, b.ItemID, b.WarehouseID,
		b.QtyBackordered, b.Status, nullTime(b.CreatedAt), nullTime(b.UpdatedAt),
	).Scan(&b.ID, &b.CreatedAt)
	return wrap("upsert backorder", err)
}

// ListByOrder backorders del pedido.
func (r *BackorderRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Backorder, error) {
	if !validID(orderID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+backorderColumns+` FROM backorders WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, wrap("list backorders", err)
	}
	defer rows.Close()
	var list []*entity.Backorder
	for rows.Next() {
		b, err := scanBackorder(rows)
		if err != nil {
			return nil, wrap("scan backorder", err)
		}
		list = append(list, b)
	}
	return list, wrap("list backorders", rows.Err())
}
