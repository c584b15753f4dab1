package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo pedidos de venta (cabecera + líneas) sobre PostgreSQL.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador.
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// Create persiste cabecera y líneas.
func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO sales_orders (id, company_id, number, customer_id, warehouse_id, status, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		o.ID, o.CompanyID, nullable(o.Number), o.CustomerID, o.WarehouseID, o.Status, o.OrderDate,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return wrap("insert sales order", err)
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
			INSERT INTO sales_order_lines (id, order_id, line_no, item_id, qty_ordered, qty_shipped, unit_price, discount, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, l.OrderID, l.LineNo, l.ItemID, l.QtyOrdered, l.QtyShipped, l.UnitPrice, l.Discount, l.Status,
		)
		if err != nil {
			return wrap("insert sales order line", err)
		}
	}
	return nil
}

// GetByID pedido con sus líneas, o nil.
func (r *SalesOrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera y las líneas.
func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *SalesOrderRepo) get(ctx context.Context, id, lock string) (*entity.SalesOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	var o entity.SalesOrder
	var number *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, customer_id, warehouse_id, status, order_date, created_at, updated_at
		FROM sales_orders WHERE id = $1`+lock, id,
	).Scan(&o.ID, &o.CompanyID, &number, &o.CustomerID, &o.WarehouseID, &o.Status, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get sales order", err)
	}
	o.Number = deref(number)

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, line_no, item_id, qty_ordered, qty_shipped, unit_price, discount, status
		FROM sales_order_lines WHERE order_id = $1 ORDER BY line_no`+lock, o.ID)
	if err != nil {
		return nil, wrap("get sales order lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SalesOrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.LineNo, &l.ItemID, &l.QtyOrdered, &l.QtyShipped,
			&l.UnitPrice, &l.Discount, &l.Status); err != nil {
			return nil, wrap("scan sales order line", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get sales order lines", err)
	}
	return &o, nil
}

// UpdateLine persiste cantidad despachada y estado de la línea.
func (r *SalesOrderRepo) UpdateLine(ctx context.Context, l *entity.SalesOrderLine) error {
	if !validID(l.ID) {
		return domain.NotFoundf("línea de pedido %s", l.ID)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales_order_lines SET qty_shipped = $2, status = $3 WHERE id = $1`,
		l.ID, l.QtyShipped, l.Status)
	if err != nil {
		return wrap("update sales order line", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("línea de pedido %s", l.ID)
	}
	return nil
}

// UpdateStatus cambia el estado del pedido.
func (r *SalesOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if !validID(id) {
		return domain.NotFoundf("pedido %s", id)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE sales_orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrap("update sales order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("pedido %s", id)
	}
	return nil
}
