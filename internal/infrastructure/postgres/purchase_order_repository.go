package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra (cabecera + líneas) sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste cabecera y líneas.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO purchase_orders (id, company_id, number, supplier_id, warehouse_id, status, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		o.ID, o.CompanyID, nullable(o.Number), o.SupplierID, o.WarehouseID, o.Status, o.OrderDate,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return wrap("insert purchase order", err)
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		if l.Status == "" {
			l.Status = entity.LineOpen
		}
		l.OrderID = o.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_lines (id, order_id, line_no, item_id, qty_ordered, qty_received, unit_cost, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, l.OrderID, l.LineNo, l.ItemID, l.QtyOrdered, l.QtyReceived, l.UnitCost, l.Status,
		)
		if err != nil {
			return wrap("insert purchase order line", err)
		}
	}
	return nil
}

// GetByID orden de compra con sus líneas, o nil.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera y las líneas.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id, lock string) (*entity.PurchaseOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	var o entity.PurchaseOrder
	var number *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, supplier_id, warehouse_id, status, order_date, created_at, updated_at
		FROM purchase_orders WHERE id = $1`+lock, id,
	).Scan(&o.ID, &o.CompanyID, &number, &o.SupplierID, &o.WarehouseID, &o.Status, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get purchase order", err)
	}
	o.Number = deref(number)

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, line_no, item_id, qty_ordered, qty_received, unit_cost, status
		FROM purchase_order_lines WHERE order_id = $1 ORDER BY line_no`+lock, o.ID)
	if err != nil {
		return nil, wrap("get purchase order lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.LineNo, &l.ItemID, &l.QtyOrdered, &l.QtyReceived,
			&l.UnitCost, &l.Status); err != nil {
			return nil, wrap("scan purchase order line", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get purchase order lines", err)
	}
	return &o, nil
}

// UpdateLine persiste cantidad recibida y estado de la línea.
func (r *PurchaseOrderRepo) UpdateLine(ctx context.Context, l *entity.PurchaseOrderLine) error {
	if !validID(l.ID) {
		return domain.NotFoundf("línea de orden de compra %s", l.ID)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines SET qty_received = $2, status = $3 WHERE id = $1`,
		l.ID, l.QtyReceived, l.Status)
	if err != nil {
		return wrap("update purchase order line", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("línea de orden de compra %s", l.ID)
	}
	return nil
}

// UpdateStatus cambia el estado de la orden.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if !validID(id) {
		return domain.NotFoundf("orden de compra %s", id)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrap("update purchase order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("orden de compra %s", id)
	}
	return nil
}
