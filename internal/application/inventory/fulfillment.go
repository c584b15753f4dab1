package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ShipmentPosting resultado de contabilizar un despacho.
type ShipmentPosting struct {
	ShipmentID  string
	Number      string
	OrderID     string
	OrderStatus string
	Invoice     *entity.Invoice
	Entries     []*entity.StockLedgerEntry
	Backorders  []*entity.Backorder
}

// ShipmentPostingUseCase motor de despachos.
type ShipmentPostingUseCase struct {
	engine
	tax TaxCalculator
}

// NewShipmentPostingUseCase construye el motor. tax es obligatorio.
func NewShipmentPostingUseCase(txRunner TxRunner, tax TaxCalculator, c Collaborators) *ShipmentPostingUseCase {
	return &ShipmentPostingUseCase{engine: newEngine(txRunner, c, "fulfillment"), tax: tax}
}

// PostShipment contabiliza el despacho en una sola transacción: salidas del libro, cantidades y
// estados del pedido, reservas, factura borrador, backorders y número del documento. Si algo
// falla no queda rastro de la contabilización.
func (uc *ShipmentPostingUseCase) PostShipment(ctx context.Context, companyID, userID, shipmentID string) (*ShipmentPosting, error) {
	if shipmentID == "" {
		return nil, domain.Validationf("despacho obligatorio")
	}
	var res *ShipmentPosting
	var touched []string
	err := uc.execute(ctx, "post_shipment",
		[]attribute.KeyValue{attribute.String("shipment_id", shipmentID)},
		func(ctx context.Context, repos repository.Repos) error {
			var err error
			res, touched, err = uc.post(ctx, repos, companyID, userID, shipmentID)
			return err
		})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("shipment_id", res.ShipmentID).
		Str("number", res.Number).
		Str("order_status", res.OrderStatus).
		Str("invoice_id", res.Invoice.ID).
		Msg("despacho contabilizado")
	uc.afterCommit(ctx, AuditEvent{
		Action:     "shipment.posted",
		EntityType: "shipment",
		EntityID:   res.ShipmentID,
		CompanyID:  companyID,
		ActorID:    userID,
		Payload: map[string]any{
			"number":       res.Number,
			"order_id":     res.OrderID,
			"order_status": res.OrderStatus,
			"invoice_id":   res.Invoice.ID,
			"entries":      len(res.Entries),
		},
	}, touched)
	return res, nil
}

func (uc *ShipmentPostingUseCase) post(ctx context.Context, repos repository.Repos, companyID, userID, shipmentID string) (*ShipmentPosting, []string, error) {
	shp, err := repos.Shipments().GetForUpdate(ctx, shipmentID)
	if err != nil {
		return nil, nil, err
	}
	if shp == nil || shp.CompanyID != companyID {
		return nil, nil, domain.NotFoundf("despacho %s", shipmentID)
	}
	if shp.Status != entity.DocumentStatusDraft {
		return nil, nil, fmt.Errorf("%w: despacho %s", domain.ErrAlreadyPosted, shp.ID)
	}
	if len(shp.Lines) == 0 {
		return nil, nil, domain.Validationf("despacho %s sin líneas", shp.ID)
	}

	order, err := repos.SalesOrders().GetForUpdate(ctx, shp.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, nil, domain.NotFoundf("pedido %s", shp.OrderID)
	}
	if !inventory.SalesOrderPostable(order.Status) {
		return nil, nil, domain.InvalidStatef("pedido %s en estado %s", order.ID, order.Status)
	}
	if _, err := requireWarehouse(ctx, repos, companyID, shp.WarehouseID); err != nil {
		return nil, nil, err
	}

	demand := pairDemand{}
	for _, l := range shp.Lines {
		ol := order.Line(l.OrderLineID)
		if ol == nil {
			return nil, nil, domain.NotFoundf("línea de pedido %s", l.OrderLineID)
		}
		if ol.Status == entity.LineCancelled {
			return nil, nil, domain.InvalidStatef("línea de pedido %s cancelada", ol.ID)
		}
		if ol.ItemID != l.ItemID {
			return nil, nil, domain.Validationf("línea de despacho %s: el ítem no coincide con el pedido", l.ID)
		}
		if !l.Quantity.IsPositive() {
			return nil, nil, domain.Validationf("línea de despacho %s: cantidad no positiva", l.ID)
		}
		demand.add(l.ItemID, shp.WarehouseID, l.Quantity)
	}

	// Verificación y escritura bajo el mismo bloqueo.
	if err := lockPairs(ctx, repos, demand.pairs()); err != nil {
		return nil, nil, err
	}
	active, err := repos.Reservations().ListActiveByOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	own := pairDemand{}
	for _, r := range active {
		own.add(r.ItemID, r.WarehouseID, r.Quantity)
	}
	for _, p := range demand.pairs() {
		a, err := availabilityOf(ctx, repos, p.ItemID, p.WarehouseID)
		if err != nil {
			return nil, nil, err
		}
		shippable := a.Available.Add(own[p])
		if demand[p].GreaterThan(shippable) {
			return nil, nil, domain.NewStockError(p.ItemID, p.WarehouseID, demand[p], shippable)
		}
	}

	now := uc.now()
	postingDate := shp.ShipDate
	if postingDate.IsZero() {
		postingDate = now
	}

	res := &ShipmentPosting{ShipmentID: shp.ID, OrderID: order.ID}
	net := decimal.Zero
	details := make([]*entity.InvoiceDetail, 0, len(shp.Lines))
	for _, l := range shp.Lines {
		entry := &entity.StockLedgerEntry{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			ItemID:        l.ItemID,
			WarehouseID:   shp.WarehouseID,
			TxType:        entity.LedgerTxShipment,
			ReferenceType: entity.ReferenceShipment,
			ReferenceID:   shp.ID,
			Quantity:      l.Quantity.Neg(),
			UnitCost:      l.UnitCost,
			PostingDate:   postingDate,
			CreatedAt:     now,
			CreatedBy:     userID,
		}
		if err := repos.Ledger().Append(ctx, entry); err != nil {
			return nil, nil, err
		}
		res.Entries = append(res.Entries, entry)

		ol := order.Line(l.OrderLineID)
		ol.QtyShipped = ol.QtyShipped.Add(l.Quantity)
		ol.Status = inventory.DeriveLineStatus(ol.Status, entity.LineFulfilled, ol.QtyOrdered, ol.QtyShipped)
		if err := repos.SalesOrders().UpdateLine(ctx, ol); err != nil {
			return nil, nil, err
		}

		if _, err := consumeReservations(ctx, repos, active, ol.ID, stockPair{l.ItemID, shp.WarehouseID}, l.Quantity, now); err != nil {
			return nil, nil, err
		}

		subtotal := LineSubtotal(l.Quantity, ol.UnitPrice, ol.Discount)
		net = net.Add(subtotal)
		details = append(details, &entity.InvoiceDetail{
			ID:          uuid.New().String(),
			OrderLineID: ol.ID,
			ItemID:      l.ItemID,
			Quantity:    l.Quantity,
			UnitPrice:   ol.UnitPrice,
			Discount:    ol.Discount,
			Subtotal:    subtotal,
		})
	}

	res.OrderStatus = inventory.DeriveSalesOrderStatus(order.Lines)
	if err := repos.SalesOrders().UpdateStatus(ctx, order.ID, res.OrderStatus); err != nil {
		return nil, nil, err
	}
	order.Status = res.OrderStatus

	invoice, err := uc.invoiceDraft(ctx, repos, order, shp, net, details, postingDate, now)
	if err != nil {
		return nil, nil, err
	}
	res.Invoice = invoice

	touched := demand.itemIDs()
	if res.OrderStatus == entity.SalesOrderFullyShipped {
		leftovers, err := cancelActive(ctx, repos, order.ID)
		if err != nil {
			return nil, nil, err
		}
		touched = uniqueSorted(append(touched, leftovers...))
	}
	if res.Backorders, err = syncBackorders(ctx, repos, order, shp.WarehouseID, now); err != nil {
		return nil, nil, err
	}

	if shp.Number == "" {
		if shp.Number, err = nextNumber(ctx, repos, companyID, entity.DocTypeShipment); err != nil {
			return nil, nil, err
		}
	}
	shp.Status = entity.DocumentStatusPosted
	shp.InvoiceID = invoice.ID
	shp.PostedAt = &now
	shp.PostedBy = userID
	if err := repos.Shipments().MarkPosted(ctx, shp); err != nil {
		return nil, nil, err
	}
	res.Number = shp.Number
	return res, touched, nil
}

// LineSubtotal qty × precio × (1 − descuento).
func LineSubtotal(qty, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice).Mul(decimal.NewFromInt(1).Sub(discount))
}

func (uc *ShipmentPostingUseCase) invoiceDraft(
	ctx context.Context,
	repos repository.Repos,
	order *entity.SalesOrder,
	shp *entity.Shipment,
	net decimal.Decimal,
	details []*entity.InvoiceDetail,
	date, now time.Time,
) (*entity.Invoice, error) {
	tax, err := uc.tax.ComputeTax(ctx, order.CustomerID, net)
	if err != nil {
		return nil, fmt.Errorf("impuestos del despacho %s: %w", shp.ID, err)
	}
	number, err := nextNumber(ctx, repos, order.CompanyID, entity.DocTypeInvoice)
	if err != nil {
		return nil, err
	}
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		CompanyID:  order.CompanyID,
		CustomerID: order.CustomerID,
		OrderID:    order.ID,
		ShipmentID: shp.ID,
		Number:     number,
		Date:       date,
		NetTotal:   net,
		TaxRate:    tax.Rate,
		TaxTotal:   tax.Amount,
		GrandTotal: net.Add(tax.Amount),
		Status:     entity.InvoiceStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repos.Invoices().Create(ctx, inv); err != nil {
		return nil, err
	}
	for _, d := range details {
		d.InvoiceID = inv.ID
		if err := repos.Invoices().CreateDetail(ctx, d); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// syncBackorders deja un backorder por línea con pendiente; cierra los de líneas completas
// o todos si el pedido quedó despachado por completo.
func syncBackorders(ctx context.Context, repos repository.Repos, order *entity.SalesOrder, warehouseID string, now time.Time) ([]*entity.Backorder, error) {
	fully := order.Status == entity.SalesOrderFullyShipped
	var out []*entity.Backorder
	for i := range order.Lines {
		ol := &order.Lines[i]
		existing, err := repos.Backorders().GetByOrderLine(ctx, ol.ID)
		if err != nil {
			return nil, err
		}
		remaining := ol.Remaining()
		open := !fully && ol.Status != entity.LineCancelled && ol.Status != entity.LineFulfilled && remaining.IsPositive()

		var b *entity.Backorder
		switch {
		case open:
			b = &entity.Backorder{
				ID:             uuid.New().String(),
				CompanyID:      order.CompanyID,
				OrderID:        order.ID,
				OrderLineID:    ol.ID,
				ItemID:         ol.ItemID,
				WarehouseID:    warehouseID,
				QtyBackordered: remaining,
				Status:         inventory.DeriveBackorderStatus(ol.QtyShipped, remaining),
				CreatedAt:      now,
			}
			if existing != nil {
				b.ID, b.CreatedAt, b.WarehouseID = existing.ID, existing.CreatedAt, existing.WarehouseID
			}
		case existing != nil && existing.Status != entity.BackorderFulfilled:
			b = existing
			b.QtyBackordered = decimal.Zero
			b.Status = entity.BackorderFulfilled
		default:
			continue
		}
		b.UpdatedAt = now
		if err := repos.Backorders().Upsert(ctx, b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
