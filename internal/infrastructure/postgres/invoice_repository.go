package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura borrador. Número repetido en la empresa → Conflict.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, company_id, customer_id, order_id, shipment_id, number, date,
			net_total, tax_rate, tax_total, grand_total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, COALESCE($13, now()), COALESCE($14, now()))
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		inv.ID, inv.CompanyID, inv.CustomerID, inv.OrderID, inv.ShipmentID, inv.Number, inv.Date,
		inv.NetTotal, inv.TaxRate, inv.TaxTotal, inv.GrandTotal, inv.Status,
		nullTime(inv.CreatedAt), nullTime(inv.UpdatedAt),
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	return wrap("insert invoice", err)
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(ctx context.Context, d *entity.InvoiceDetail) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_details (id, invoice_id, order_line_id, item_id, quantity, unit_price, discount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.InvoiceID, d.OrderLineID, d.ItemID, d.Quantity, d.UnitPrice, d.Discount, d.Subtotal,
	)
	return wrap("insert invoice detail", err)
}

// GetByID obtiene la cabecera de una factura.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT id, company_id, customer_id, order_id, shipment_id, number, date,
			net_total, tax_rate, tax_total, grand_total, status, created_at, updated_at
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.OrderID, &inv.ShipmentID, &inv.Number, &inv.Date,
		&inv.NetTotal, &inv.TaxRate, &inv.TaxTotal, &inv.GrandTotal, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get invoice", err)
	}
	return &inv, nil
}

// GetDetailsByInvoiceID obtiene las líneas de una factura.
func (r *InvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	if !validID(invoiceID) {
		return nil, nil
	}
	query := `
		SELECT id, invoice_id, order_line_id, item_id, quantity, unit_price, discount, subtotal
		FROM invoice_details WHERE invoice_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, wrap("list invoice details", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.OrderLineID, &d.ItemID, &d.Quantity, &d.UnitPrice, &d.Discount, &d.Subtotal); err != nil {
			return nil, wrap("scan invoice detail", err)
		}
		list = append(list, &d)
	}
	return list, wrap("list invoice details", rows.Err())
}
