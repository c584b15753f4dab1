package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de reservas sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste una reserva. seq fija el orden de creación.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	if res.UpdatedAt.IsZero() {
		res.UpdatedAt = res.CreatedAt
	}
	query := `
		INSERT INTO reservations (id, company_id, item_id, warehouse_id, order_id, order_line_id,
			quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.CompanyID, res.ItemID, res.WarehouseID, res.OrderID, nullable(res.OrderLineID),
		res.Quantity, res.Status, res.CreatedAt, res.UpdatedAt,
	)
	return wrap("insert reservation", err)
}

// ListActiveByOrder reservas activas del pedido en orden de creación.
func (r *ReservationRepo) ListActiveByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error) {
	if !validID(orderID) {
		return nil, nil
	}
	query := `
		SELECT id, company_id, item_id, warehouse_id, order_id, order_line_id::text, quantity, status, created_at, updated_at
		FROM reservations WHERE order_id = $1 AND status = 'active' ORDER BY seq`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, wrap("list active reservations", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		var line *string
		if err := rows.Scan(&res.ID, &res.CompanyID, &res.ItemID, &res.WarehouseID, &res.OrderID, &line,
			&res.Quantity, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, wrap("scan reservation", err)
		}
		res.OrderLineID = deref(line)
		list = append(list, &res)
	}
	return list, wrap("list active reservations", rows.Err())
}

// SumActive cantidad comprometida de (ítem, bodega).
func (r *ReservationRepo) SumActive(ctx context.Context, itemID, warehouseID string) (decimal.Decimal, error) {
	if !validID(itemID, warehouseID) {
		return decimal.Zero, nil
	}
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM reservations
		WHERE item_id = $1 AND warehouse_id = $2 AND status = 'active'`, itemID, warehouseID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrap("sum active reservations", err)
	}
	return total, nil
}

// SumActiveByItem cantidad comprometida del ítem por bodega.
func (r *ReservationRepo) SumActiveByItem(ctx context.Context, itemID string) (map[string]decimal.Decimal, error) {
	if !validID(itemID) {
		return map[string]decimal.Decimal{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT warehouse_id, SUM(quantity) FROM reservations
		WHERE item_id = $1 AND status = 'active' GROUP BY warehouse_id`, itemID)
	if err != nil {
		return nil, wrap("sum active reservations by item", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var wh string
		var q decimal.Decimal
		if err := rows.Scan(&wh, &q); err != nil {
			return nil, wrap("scan reservation sum", err)
		}
		out[wh] = q
	}
	return out, wrap("sum active reservations by item", rows.Err())
}

// UpdateStatus cambia el estado de la reserva.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if !validID(id) {
		return domain.NotFoundf("reserva %s", id)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrap("update reservation status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("reserva %s", id)
	}
	return nil
}

// UpdateQuantity reduce (o fija) la cantidad retenida.
func (r *ReservationRepo) UpdateQuantity(ctx context.Context, id string, qty decimal.Decimal) error {
	if !validID(id) {
		return domain.NotFoundf("reserva %s", id)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE reservations SET quantity = $2, updated_at = now() WHERE id = $1`, id, qty)
	if err != nil {
		return wrap("update reservation quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("reserva %s", id)
	}
	return nil
}
