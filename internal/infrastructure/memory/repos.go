package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

// ── Ítems ────────────────────────────────────────────────────────────────────

type itemRepo struct{ *repos }

func (r itemRepo) Create(_ context.Context, item *entity.Item) error {
	ensureID(&item.ID)
	if _, ok := r.st.items[item.ID]; ok {
		return fmt.Errorf("%w: ítem %s ya existe", domain.ErrConflict, item.ID)
	}
	for _, it := range r.st.items {
		if it.CompanyID == item.CompanyID && it.Code == item.Code {
			return fmt.Errorf("%w: código de ítem %s duplicado", domain.ErrConflict, item.Code)
		}
	}
	stamp(&item.CreatedAt, &item.UpdatedAt, r.now())
	r.st.items[item.ID] = *item
	return nil
}

func (r itemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	it, ok := r.st.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r itemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r itemRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	it, ok := r.st.items[id]
	if !ok {
		return domain.NotFoundf("ítem %s", id)
	}
	it.Cost = cost
	it.UpdatedAt = r.now()
	r.st.items[id] = it
	return nil
}

func (r itemRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.st.items {
		if it.CompanyID == companyID {
			it := it
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, limit, offset), nil
}

// ── Bodegas ──────────────────────────────────────────────────────────────────

type warehouseRepo struct{ *repos }

func (r warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	ensureID(&w.ID)
	if _, ok := r.st.warehouses[w.ID]; ok {
		return fmt.Errorf("%w: bodega %s ya existe", domain.ErrConflict, w.ID)
	}
	for _, existing := range r.st.warehouses {
		if existing.CompanyID == w.CompanyID && existing.Code == w.Code {
			return fmt.Errorf("%w: código de bodega %s duplicado", domain.ErrConflict, w.Code)
		}
	}
	stamp(&w.CreatedAt, &w.UpdatedAt, r.now())
	r.st.warehouses[w.ID] = *w
	return nil
}

func (r warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r warehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.st.warehouses {
		if w.CompanyID == companyID {
			w := w
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, limit, offset), nil
}

// ── Libro de stock ───────────────────────────────────────────────────────────

type ledgerRepo struct{ *repos }

func (r ledgerRepo) Append(_ context.Context, e *entity.StockLedgerEntry) error {
	ensureID(&e.ID)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	if e.PostingDate.IsZero() {
		e.PostingDate = e.CreatedAt
	}
	r.st.ledger = append(r.st.ledger, *e)
	return nil
}

func (r ledgerRepo) SumQuantity(_ context.Context, itemID, warehouseID string, upTo *time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.st.ledger {
		if e.ItemID != itemID || e.WarehouseID != warehouseID {
			continue
		}
		if upTo != nil && e.PostingDate.After(*upTo) {
			continue
		}
		total = total.Add(e.Quantity)
	}
	return total, nil
}

func (r ledgerRepo) SumByItem(_ context.Context, itemID string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, e := range r.st.ledger {
		if e.ItemID == itemID {
			out[e.WarehouseID] = out[e.WarehouseID].Add(e.Quantity)
		}
	}
	return out, nil
}

func (r ledgerRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]*entity.StockLedgerEntry, error) {
	var out []*entity.StockLedgerEntry
	for _, e := range r.st.ledger {
		if e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r ledgerRepo) List(_ context.Context, f entity.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	var out []*entity.StockLedgerEntry
	for _, e := range r.st.ledger {
		switch {
		case f.CompanyID != "" && e.CompanyID != f.CompanyID,
			f.ItemID != "" && e.ItemID != f.ItemID,
			f.WarehouseID != "" && e.WarehouseID != f.WarehouseID,
			f.From != nil && e.PostingDate.Before(*f.From),
			f.To != nil && e.PostingDate.After(*f.To):
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PostingDate.Before(out[j].PostingDate) })
	return page(out, f.Limit, f.Offset), nil
}

// lockRepo registra el ancla; la exclusión real la da el mutex de Run.
type lockRepo struct{ *repos }

func (r lockRepo) Lock(_ context.Context, itemID, warehouseID string) error {
	r.st.locks[pairKey{itemID, warehouseID}] = struct{}{}
	return nil
}

// ── Reservas ─────────────────────────────────────────────────────────────────

type reservationRepo struct{ *repos }

func (r reservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	ensureID(&res.ID)
	stamp(&res.CreatedAt, &res.UpdatedAt, r.now())
	r.st.reservations[res.ID] = *res
	r.st.reservationSeq = append(r.st.reservationSeq, res.ID)
	return nil
}

func (r reservationRepo) ListActiveByOrder(_ context.Context, orderID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, id := range r.st.reservationSeq {
		res := r.st.reservations[id]
		if res.OrderID == orderID && res.Status == entity.ReservationActive {
			out = append(out, &res)
		}
	}
	return out, nil
}

func (r reservationRepo) SumActive(_ context.Context, itemID, warehouseID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, res := range r.st.reservations {
		if res.Status == entity.ReservationActive && res.ItemID == itemID && res.WarehouseID == warehouseID {
			total = total.Add(res.Quantity)
		}
	}
	return total, nil
}

func (r reservationRepo) SumActiveByItem(_ context.Context, itemID string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, res := range r.st.reservations {
		if res.Status == entity.ReservationActive && res.ItemID == itemID {
			out[res.WarehouseID] = out[res.WarehouseID].Add(res.Quantity)
		}
	}
	return out, nil
}

func (r reservationRepo) UpdateStatus(_ context.Context, id, status string) error {
	res, ok := r.st.reservations[id]
	if !ok {
		return domain.NotFoundf("reserva %s", id)
	}
	res.Status = status
	res.UpdatedAt = r.now()
	r.st.reservations[id] = res
	return nil
}

func (r reservationRepo) UpdateQuantity(_ context.Context, id string, qty decimal.Decimal) error {
	res, ok := r.st.reservations[id]
	if !ok {
		return domain.NotFoundf("reserva %s", id)
	}
	res.Quantity = qty
	res.UpdatedAt = r.now()
	r.st.reservations[id] = res
	return nil
}

// ── Backorders ───────────────────────────────────────────────────────────────

type backorderRepo struct{ *repos }

func (r backorderRepo) GetByOrderLine(_ context.Context, orderLineID string) (*entity.Backorder, error) {
	b, ok := r.st.backorders[orderLineID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r backorderRepo) Upsert(_ context.Context, b *entity.Backorder) error {
	if prev, ok := r.st.backorders[b.OrderLineID]; ok {
		b.ID = prev.ID
		b.CreatedAt = prev.CreatedAt
	}
	ensureID(&b.ID)
	stamp(&b.CreatedAt, &b.UpdatedAt, r.now())
	r.st.backorders[b.OrderLineID] = *b
	return nil
}

func (r backorderRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Backorder, error) {
	var out []*entity.Backorder
	for _, b := range r.st.backorders {
		if b.OrderID == orderID {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderLineID < out[j].OrderLineID })
	return out, nil
}

// ── Pedidos ──────────────────────────────────────────────────────────────────

type salesOrderRepo struct{ *repos }

func (r salesOrderRepo) Create(_ context.Context, o *entity.SalesOrder) error {
	ensureID(&o.ID)
	stamp(&o.CreatedAt, &o.UpdatedAt, r.now())
	for i := range o.Lines {
		ensureID(&o.Lines[i].ID)
		o.Lines[i].OrderID = o.ID
		if o.Lines[i].Status == "" {
			o.Lines[i].Status = entity.LineOpen
		}
	}
	cp := *o
	cp.Lines = append([]entity.SalesOrderLine(nil), o.Lines...)
	r.st.salesOrders[o.ID] = cp
	return nil
}

func (r salesOrderRepo) GetByID(_ context.Context, id string) (*entity.SalesOrder, error) {
	o, ok := r.st.salesOrders[id]
	if !ok {
		return nil, nil
	}
	o.Lines = append([]entity.SalesOrderLine(nil), o.Lines...)
	return &o, nil
}

func (r salesOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.GetByID(ctx, id)
}

func (r salesOrderRepo) UpdateLine(_ context.Context, line *entity.SalesOrderLine) error {
	o, ok := r.st.salesOrders[line.OrderID]
	if !ok {
		return domain.NotFoundf("pedido %s", line.OrderID)
	}
	for i := range o.Lines {
		if o.Lines[i].ID == line.ID {
			o.Lines[i] = *line
			o.UpdatedAt = r.now()
			r.st.salesOrders[o.ID] = o
			return nil
		}
	}
	return domain.NotFoundf("línea de pedido %s", line.ID)
}

func (r salesOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	o, ok := r.st.salesOrders[id]
	if !ok {
		return domain.NotFoundf("pedido %s", id)
	}
	o.Status = status
	o.UpdatedAt = r.now()
	r.st.salesOrders[id] = o
	return nil
}

type purchaseOrderRepo struct{ *repos }

func (r purchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	ensureID(&o.ID)
	stamp(&o.CreatedAt, &o.UpdatedAt, r.now())
	for i := range o.Lines {
		ensureID(&o.Lines[i].ID)
		o.Lines[i].OrderID = o.ID
		if o.Lines[i].Status == "" {
			o.Lines[i].Status = entity.LineOpen
		}
	}
	cp := *o
	cp.Lines = append([]entity.PurchaseOrderLine(nil), o.Lines...)
	r.st.purchaseOrders[o.ID] = cp
	return nil
}

func (r purchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	o, ok := r.st.purchaseOrders[id]
	if !ok {
		return nil, nil
	}
	o.Lines = append([]entity.PurchaseOrderLine(nil), o.Lines...)
	return &o, nil
}

func (r purchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r purchaseOrderRepo) UpdateLine(_ context.Context, line *entity.PurchaseOrderLine) error {
	o, ok := r.st.purchaseOrders[line.OrderID]
	if !ok {
		return domain.NotFoundf("orden de compra %s", line.OrderID)
	}
	for i := range o.Lines {
		if o.Lines[i].ID == line.ID {
			o.Lines[i] = *line
			o.UpdatedAt = r.now()
			r.st.purchaseOrders[o.ID] = o
			return nil
		}
	}
	return domain.NotFoundf("línea de orden de compra %s", line.ID)
}

func (r purchaseOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	o, ok := r.st.purchaseOrders[id]
	if !ok {
		return domain.NotFoundf("orden de compra %s", id)
	}
	o.Status = status
	o.UpdatedAt = r.now()
	r.st.purchaseOrders[id] = o
	return nil
}

// ── Documentos borrador ──────────────────────────────────────────────────────

type shipmentRepo struct{ *repos }

func (r shipmentRepo) Create(_ context.Context, s *entity.Shipment) error {
	ensureID(&s.ID)
	stamp(&s.CreatedAt, &s.UpdatedAt, r.now())
	for i := range s.Lines {
		ensureID(&s.Lines[i].ID)
		s.Lines[i].ShipmentID = s.ID
	}
	cp := *s
	cp.Lines = append([]entity.ShipmentLine(nil), s.Lines...)
	r.st.shipments[s.ID] = cp
	return nil
}

func (r shipmentRepo) GetByID(_ context.Context, id string) (*entity.Shipment, error) {
	s, ok := r.st.shipments[id]
	if !ok {
		return nil, nil
	}
	s.Lines = append([]entity.ShipmentLine(nil), s.Lines...)
	return &s, nil
}

func (r shipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.GetByID(ctx, id)
}

func (r shipmentRepo) MarkPosted(_ context.Context, s *entity.Shipment) error {
	cur, ok := r.st.shipments[s.ID]
	if !ok {
		return domain.NotFoundf("despacho %s", s.ID)
	}
	cur.Number, cur.Status, cur.InvoiceID = s.Number, s.Status, s.InvoiceID
	cur.PostedAt, cur.PostedBy, cur.UpdatedAt = s.PostedAt, s.PostedBy, r.now()
	r.st.shipments[s.ID] = cur
	return nil
}

type receiptRepo struct{ *repos }

func (r receiptRepo) Create(_ context.Context, rc *entity.Receipt) error {
	ensureID(&rc.ID)
	stamp(&rc.CreatedAt, &rc.UpdatedAt, r.now())
	for i := range rc.Lines {
		ensureID(&rc.Lines[i].ID)
		rc.Lines[i].ReceiptID = rc.ID
	}
	cp := *rc
	cp.Lines = append([]entity.ReceiptLine(nil), rc.Lines...)
	r.st.receipts[rc.ID] = cp
	return nil
}

func (r receiptRepo) GetByID(_ context.Context, id string) (*entity.Receipt, error) {
	rc, ok := r.st.receipts[id]
	if !ok {
		return nil, nil
	}
	rc.Lines = append([]entity.ReceiptLine(nil), rc.Lines...)
	return &rc, nil
}

func (r receiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.GetByID(ctx, id)
}

func (r receiptRepo) MarkPosted(_ context.Context, rc *entity.Receipt) error {
	cur, ok := r.st.receipts[rc.ID]
	if !ok {
		return domain.NotFoundf("recepción %s", rc.ID)
	}
	cur.Number, cur.Status = rc.Number, rc.Status
	cur.PostedAt, cur.PostedBy, cur.UpdatedAt = rc.PostedAt, rc.PostedBy, r.now()
	r.st.receipts[rc.ID] = cur
	return nil
}

type transferRepo struct{ *repos }

func (r transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	ensureID(&t.ID)
	stamp(&t.CreatedAt, &t.UpdatedAt, r.now())
	for i := range t.Lines {
		ensureID(&t.Lines[i].ID)
		t.Lines[i].TransferID = t.ID
	}
	cp := *t
	cp.Lines = append([]entity.TransferLine(nil), t.Lines...)
	r.st.transfers[t.ID] = cp
	return nil
}

func (r transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	t, ok := r.st.transfers[id]
	if !ok {
		return nil, nil
	}
	t.Lines = append([]entity.TransferLine(nil), t.Lines...)
	return &t, nil
}

func (r transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r transferRepo) MarkPosted(_ context.Context, t *entity.Transfer) error {
	cur, ok := r.st.transfers[t.ID]
	if !ok {
		return domain.NotFoundf("traslado %s", t.ID)
	}
	cur.Number, cur.Status = t.Number, t.Status
	cur.PostedAt, cur.PostedBy, cur.UpdatedAt = t.PostedAt, t.PostedBy, r.now()
	r.st.transfers[t.ID] = cur
	return nil
}

type adjustmentRepo struct{ *repos }

func (r adjustmentRepo) Create(_ context.Context, a *entity.Adjustment) error {
	ensureID(&a.ID)
	stamp(&a.CreatedAt, &a.UpdatedAt, r.now())
	for i := range a.Lines {
		ensureID(&a.Lines[i].ID)
		a.Lines[i].AdjustmentID = a.ID
	}
	cp := *a
	cp.Lines = cloneAdjustmentLines(a.Lines)
	r.st.adjustments[a.ID] = cp
	return nil
}

func (r adjustmentRepo) GetByID(_ context.Context, id string) (*entity.Adjustment, error) {
	a, ok := r.st.adjustments[id]
	if !ok {
		return nil, nil
	}
	a.Lines = cloneAdjustmentLines(a.Lines)
	return &a, nil
}

func (r adjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Adjustment, error) {
	return r.GetByID(ctx, id)
}

func (r adjustmentRepo) MarkPosted(_ context.Context, a *entity.Adjustment) error {
	cur, ok := r.st.adjustments[a.ID]
	if !ok {
		return domain.NotFoundf("ajuste %s", a.ID)
	}
	cur.Number, cur.Status = a.Number, a.Status
	cur.PostedAt, cur.PostedBy, cur.UpdatedAt = a.PostedAt, a.PostedBy, r.now()
	r.st.adjustments[a.ID] = cur
	return nil
}

// ── Facturas y secuencias ────────────────────────────────────────────────────

type invoiceRepo struct{ *repos }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	ensureID(&inv.ID)
	stamp(&inv.CreatedAt, &inv.UpdatedAt, r.now())
	r.st.invoices[inv.ID] = *inv
	return nil
}

func (r invoiceRepo) CreateDetail(_ context.Context, d *entity.InvoiceDetail) error {
	if _, ok := r.st.invoices[d.InvoiceID]; !ok {
		return domain.NotFoundf("factura %s", d.InvoiceID)
	}
	ensureID(&d.ID)
	r.st.invoiceDetails[d.InvoiceID] = append(r.st.invoiceDetails[d.InvoiceID], *d)
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	inv, ok := r.st.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r invoiceRepo) GetDetailsByInvoiceID(_ context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	var out []*entity.InvoiceDetail
	for _, d := range r.st.invoiceDetails[invoiceID] {
		d := d
		out = append(out, &d)
	}
	return out, nil
}

type sequenceRepo struct{ *repos }

func (r sequenceRepo) Next(_ context.Context, scope, docType string) (int64, error) {
	key := scope + "|" + docType
	r.st.sequences[key]++
	return r.st.sequences[key], nil
}
