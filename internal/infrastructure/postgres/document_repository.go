package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Los cuatro documentos contabilizables comparten forma: cabecera con número, estado y datos de
// contabilización, más líneas. MarkPosted solo afecta borradores: un segundo intento devuelve
// AlreadyPosted aunque el caller no haya bloqueado la cabecera.

func markPosted(ctx context.Context, q Querier, table, id, number string, postedAt *time.Time, postedBy string, extra string, extraArgs ...any) error {
	if !validID(id) {
		return domain.NotFoundf("%s %s", table, id)
	}
	args := append([]any{id, number, postedAt, postedBy}, extraArgs...)
	cmd, err := q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET status = 'posted', number = $2, posted_at = $3, posted_by = $4, updated_at = now()%s
		WHERE id = $1 AND status = 'draft'`, table, extra), args...)
	if err != nil {
		return wrap("mark "+table+" posted", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrAlreadyPosted, table, id)
	}
	return nil
}

func lockSuffix(forUpdate bool) string {
	if forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

// ── Despachos ────────────────────────────────────────────────────────────────

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo despachos sobre PostgreSQL.
type ShipmentRepo struct{ q Querier }

// NewShipmentRepository construye el adaptador.
func NewShipmentRepository(q Querier) *ShipmentRepo { return &ShipmentRepo{q: q} }

// Create persiste el borrador y sus líneas.
func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO shipments (id, company_id, number, order_id, warehouse_id, status, ship_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		s.ID, s.CompanyID, nullable(s.Number), s.OrderID, s.WarehouseID, s.Status, s.ShipDate,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return wrap("insert shipment", err)
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.ShipmentID = s.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO shipment_lines (id, shipment_id, order_line_id, item_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.ShipmentID, l.OrderLineID, l.ItemID, l.Quantity, l.UnitCost); err != nil {
			return wrap("insert shipment line", err)
		}
	}
	return nil
}

// GetByID despacho con líneas, o nil.
func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera del despacho.
func (r *ShipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.get(ctx, id, true)
}

func (r *ShipmentRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Shipment, error) {
	if !validID(id) {
		return nil, nil
	}
	var s entity.Shipment
	var number, invoiceID, postedBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, order_id, warehouse_id, status, ship_date, invoice_id::text,
			posted_at, posted_by, created_at, updated_at
		FROM shipments WHERE id = $1`+lockSuffix(forUpdate), id,
	).Scan(&s.ID, &s.CompanyID, &number, &s.OrderID, &s.WarehouseID, &s.Status, &s.ShipDate, &invoiceID,
		&s.PostedAt, &postedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get shipment", err)
	}
	s.Number, s.InvoiceID, s.PostedBy = deref(number), deref(invoiceID), deref(postedBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, shipment_id, order_line_id, item_id, quantity, unit_cost
		FROM shipment_lines WHERE shipment_id = $1 ORDER BY seq`, s.ID)
	if err != nil {
		return nil, wrap("get shipment lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.ShipmentLine
		if err := rows.Scan(&l.ID, &l.ShipmentID, &l.OrderLineID, &l.ItemID, &l.Quantity, &l.UnitCost); err != nil {
			return nil, wrap("scan shipment line", err)
		}
		s.Lines = append(s.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get shipment lines", err)
	}
	return &s, nil
}

// MarkPosted fija número, factura y datos de contabilización.
func (r *ShipmentRepo) MarkPosted(ctx context.Context, s *entity.Shipment) error {
	return markPosted(ctx, r.q, "shipments", s.ID, s.Number, s.PostedAt, s.PostedBy,
		", invoice_id = $5", nullable(s.InvoiceID))
}

// ── Recepciones ──────────────────────────────────────────────────────────────

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo recepciones de compra sobre PostgreSQL.
type ReceiptRepo struct{ q Querier }

// NewReceiptRepository construye el adaptador.
func NewReceiptRepository(q Querier) *ReceiptRepo { return &ReceiptRepo{q: q} }

// Create persiste el borrador y sus líneas.
func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	if rc.ID == "" {
		rc.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO receipts (id, company_id, number, purchase_order_id, warehouse_id, status, receipt_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		rc.ID, rc.CompanyID, nullable(rc.Number), rc.PurchaseOrderID, rc.WarehouseID, rc.Status, rc.ReceiptDate,
	).Scan(&rc.CreatedAt, &rc.UpdatedAt)
	if err != nil {
		return wrap("insert receipt", err)
	}
	for i := range rc.Lines {
		l := &rc.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.ReceiptID = rc.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO receipt_lines (id, receipt_id, po_line_id, item_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.ReceiptID, l.POLineID, l.ItemID, l.Quantity, l.UnitCost); err != nil {
			return wrap("insert receipt line", err)
		}
	}
	return nil
}

// GetByID recepción con líneas, o nil.
func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera de la recepción.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.get(ctx, id, true)
}

func (r *ReceiptRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Receipt, error) {
	if !validID(id) {
		return nil, nil
	}
	var rc entity.Receipt
	var number, postedBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, purchase_order_id, warehouse_id, status, receipt_date,
			posted_at, posted_by, created_at, updated_at
		FROM receipts WHERE id = $1`+lockSuffix(forUpdate), id,
	).Scan(&rc.ID, &rc.CompanyID, &number, &rc.PurchaseOrderID, &rc.WarehouseID, &rc.Status, &rc.ReceiptDate,
		&rc.PostedAt, &postedBy, &rc.CreatedAt, &rc.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get receipt", err)
	}
	rc.Number, rc.PostedBy = deref(number), deref(postedBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, receipt_id, po_line_id, item_id, quantity, unit_cost
		FROM receipt_lines WHERE receipt_id = $1 ORDER BY seq`, rc.ID)
	if err != nil {
		return nil, wrap("get receipt lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.ReceiptLine
		if err := rows.Scan(&l.ID, &l.ReceiptID, &l.POLineID, &l.ItemID, &l.Quantity, &l.UnitCost); err != nil {
			return nil, wrap("scan receipt line", err)
		}
		rc.Lines = append(rc.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get receipt lines", err)
	}
	return &rc, nil
}

// MarkPosted fija número y datos de contabilización.
func (r *ReceiptRepo) MarkPosted(ctx context.Context, rc *entity.Receipt) error {
	return markPosted(ctx, r.q, "receipts", rc.ID, rc.Number, rc.PostedAt, rc.PostedBy, "")
}

// ── Traslados ────────────────────────────────────────────────────────────────

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados entre bodegas sobre PostgreSQL.
type TransferRepo struct{ q Querier }

// NewTransferRepository construye el adaptador.
func NewTransferRepository(q Querier) *TransferRepo { return &TransferRepo{q: q} }

// Create persiste el borrador y sus líneas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO transfers (id, company_id, number, source_warehouse_id, dest_warehouse_id, status, transfer_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		t.ID, t.CompanyID, nullable(t.Number), t.SourceWarehouseID, t.DestWarehouseID, t.Status, t.TransferDate,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return wrap("insert transfer", err)
	}
	for i := range t.Lines {
		l := &t.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.TransferID = t.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO transfer_lines (id, transfer_id, item_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5)`,
			l.ID, l.TransferID, l.ItemID, l.Quantity, l.UnitCost); err != nil {
			return wrap("insert transfer line", err)
		}
	}
	return nil
}

// GetByID traslado con líneas, o nil.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera del traslado.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, id, true)
}

func (r *TransferRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Transfer, error) {
	if !validID(id) {
		return nil, nil
	}
	var t entity.Transfer
	var number, postedBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, source_warehouse_id, dest_warehouse_id, status, transfer_date,
			posted_at, posted_by, created_at, updated_at
		FROM transfers WHERE id = $1`+lockSuffix(forUpdate), id,
	).Scan(&t.ID, &t.CompanyID, &number, &t.SourceWarehouseID, &t.DestWarehouseID, &t.Status, &t.TransferDate,
		&t.PostedAt, &postedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get transfer", err)
	}
	t.Number, t.PostedBy = deref(number), deref(postedBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, item_id, quantity, unit_cost
		FROM transfer_lines WHERE transfer_id = $1 ORDER BY seq`, t.ID)
	if err != nil {
		return nil, wrap("get transfer lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(&l.ID, &l.TransferID, &l.ItemID, &l.Quantity, &l.UnitCost); err != nil {
			return nil, wrap("scan transfer line", err)
		}
		t.Lines = append(t.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get transfer lines", err)
	}
	return &t, nil
}

// MarkPosted fija número y datos de contabilización.
func (r *TransferRepo) MarkPosted(ctx context.Context, t *entity.Transfer) error {
	return markPosted(ctx, r.q, "transfers", t.ID, t.Number, t.PostedAt, t.PostedBy, "")
}

// ── Ajustes ──────────────────────────────────────────────────────────────────

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo ajustes por conteo físico sobre PostgreSQL.
type AdjustmentRepo struct{ q Querier }

// NewAdjustmentRepository construye el adaptador.
func NewAdjustmentRepository(q Querier) *AdjustmentRepo { return &AdjustmentRepo{q: q} }

// Create persiste el borrador y sus líneas.
func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.Adjustment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO adjustments (id, company_id, number, warehouse_id, reason, status, adjustment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		a.ID, a.CompanyID, nullable(a.Number), a.WarehouseID, a.Reason, a.Status, a.AdjustmentDate,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return wrap("insert adjustment", err)
	}
	for i := range a.Lines {
		l := &a.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.AdjustmentID = a.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO adjustment_lines (id, adjustment_id, item_id, qty_system, qty_actual, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.AdjustmentID, l.ItemID, l.QtySystem, l.QtyActual, l.UnitCost); err != nil {
			return wrap("insert adjustment line", err)
		}
	}
	return nil
}

// GetByID ajuste con líneas, o nil.
func (r *AdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.Adjustment, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera del ajuste.
func (r *AdjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Adjustment, error) {
	return r.get(ctx, id, true)
}

func (r *AdjustmentRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Adjustment, error) {
	if !validID(id) {
		return nil, nil
	}
	var a entity.Adjustment
	var number, postedBy *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, warehouse_id, reason, status, adjustment_date,
			posted_at, posted_by, created_at, updated_at
		FROM adjustments WHERE id = $1`+lockSuffix(forUpdate), id,
	).Scan(&a.ID, &a.CompanyID, &number, &a.WarehouseID, &a.Reason, &a.Status, &a.AdjustmentDate,
		&a.PostedAt, &postedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap("get adjustment", err)
	}
	a.Number, a.PostedBy = deref(number), deref(postedBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, adjustment_id, item_id, qty_system, qty_actual, unit_cost
		FROM adjustment_lines WHERE adjustment_id = $1 ORDER BY seq`, a.ID)
	if err != nil {
		return nil, wrap("get adjustment lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.AdjustmentLine
		var cost *decimal.Decimal
		if err := rows.Scan(&l.ID, &l.AdjustmentID, &l.ItemID, &l.QtySystem, &l.QtyActual, &cost); err != nil {
			return nil, wrap("scan adjustment line", err)
		}
		l.UnitCost = cost
		a.Lines = append(a.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get adjustment lines", err)
	}
	return &a, nil
}

// MarkPosted fija número y datos de contabilización.
func (r *AdjustmentRepo) MarkPosted(ctx context.Context, a *entity.Adjustment) error {
	return markPosted(ctx, r.q, "adjustments", a.ID, a.Number, a.PostedAt, a.PostedBy, "")
}
