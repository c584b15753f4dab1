package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, company_id, code, name, unit_measure, costing_method, cost, price,
	reorder_point, reorder_qty, active, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(&it.ID, &it.CompanyID, &it.Code, &it.Name, &it.UnitMeasure, &it.CostingMethod,
		&it.Cost, &it.Price, &it.ReorderPoint, &it.ReorderQty, &it.Active, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un ítem. Código duplicado en la empresa → Conflict.
func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	query := `
		INSERT INTO items (id, company_id, code, name, unit_measure, costing_method, cost, price,
			reorder_point, reorder_qty, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		it.ID, it.CompanyID, it.Code, it.Name, it.UnitMeasure, it.CostingMethod, it.Cost, it.Price,
		it.ReorderPoint, it.ReorderQty, it.Active,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	return wrap("insert item", err)
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get item", err)
	}
	return it, nil
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get item for update", err)
	}
	return it, nil
}

// UpdateCost fija el costo vigente del ítem.
func (r *ItemRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	if !validID(id) {
		return domain.NotFoundf("ítem %s", id)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE items SET cost = $2, updated_at = now() WHERE id = $1`, id, cost)
	if err != nil {
		return wrap("update item cost", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("ítem %s", id)
	}
	return nil
}

// ListByCompany lista ítems de la empresa ordenados por código. limit 0 = todos.
func (r *ItemRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE company_id = $1 ORDER BY code LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limitOrAll(limit), offset)
	if err != nil {
		return nil, wrap("list items", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrap("scan item", err)
		}
		list = append(list, it)
	}
	return list, wrap("list items", rows.Err())
}

// limitOrAll traduce limit 0 a NULL (LIMIT ALL).
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
