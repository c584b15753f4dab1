package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

const (
	companyID = "company-1"
	userID    = "user-1"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "esperado %s, obtenido %s %v", want, got.String(), msgAndArgs)
}

type flatTax struct{ rate decimal.Decimal }

func (f flatTax) ComputeTax(_ context.Context, _ string, subtotal decimal.Decimal) (inventory.TaxResult, error) {
	return inventory.TaxResult{Amount: subtotal.Mul(f.rate).Round(2), Rate: f.rate}, nil
}

type failingTax struct{}

func (failingTax) ComputeTax(context.Context, string, decimal.Decimal) (inventory.TaxResult, error) {
	return inventory.TaxResult{}, errors.New("servicio de impuestos caído")
}

type recordingAudit struct {
	mu     sync.Mutex
	events []inventory.AuditEvent
	err    error
}

func (r *recordingAudit) Record(_ context.Context, ev inventory.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *memory.Store
	audit  *recordingAudit
	collab inventory.Collaborators

	wh1, wh2 string

	drafts       *inventory.DraftUseCase
	reservations *inventory.ReservationUseCase
	shipments    *inventory.ShipmentPostingUseCase
	receipts     *inventory.ReceiptPostingUseCase
	transfers    *inventory.TransferPostingUseCase
	adjustments  *inventory.AdjustmentPostingUseCase
	availability *inventory.AvailabilityUseCase
	sequencer    *inventory.SequencerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, ctx: context.Background(), store: memory.New(), audit: &recordingAudit{}}
	f.collab = inventory.Collaborators{
		Audit: f.audit,
		Now:   func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
	f.wh1 = f.seedWarehouse("W1")
	f.wh2 = f.seedWarehouse("W2")

	f.drafts = inventory.NewDraftUseCase(f.store, f.collab)
	f.reservations = inventory.NewReservationUseCase(f.store, f.collab)
	f.shipments = inventory.NewShipmentPostingUseCase(f.store, flatTax{rate: dec("0.19")}, f.collab)
	f.receipts = inventory.NewReceiptPostingUseCase(f.store, f.collab)
	f.transfers = inventory.NewTransferPostingUseCase(f.store, f.collab)
	f.adjustments = inventory.NewAdjustmentPostingUseCase(f.store, f.collab)
	f.availability = inventory.NewAvailabilityUseCase(f.store, f.collab)
	f.sequencer = inventory.NewSequencerUseCase(f.store, f.collab)
	return f
}

func (f *fixture) run(fn func(repos repository.Repos) error) {
	f.t.Helper()
	require.NoError(f.t, f.store.Run(f.ctx, fn))
}

func (f *fixture) seedWarehouse(code string) string {
	w := &entity.Warehouse{ID: uuid.New().String(), CompanyID: companyID, Code: code, Name: "Bodega " + code, Active: true}
	f.run(func(repos repository.Repos) error { return repos.Warehouses().Create(f.ctx, w) })
	return w.ID
}

func (f *fixture) seedItem(code, cost string) string {
	it := &entity.Item{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		Code:          code,
		Name:          "Ítem " + code,
		UnitMeasure:   "UND",
		CostingMethod: entity.CostingMethodAverage,
		Cost:          dec(cost),
		Price:         dec("20"),
		Active:        true,
	}
	f.run(func(repos repository.Repos) error { return repos.Items().Create(f.ctx, it) })
	return it.ID
}

// seedStock anexa una entrada inicial al libro sin pasar por recepciones.
func (f *fixture) seedStock(itemID, warehouseID, qty string) {
	f.run(func(repos repository.Repos) error {
		return repos.Ledger().Append(f.ctx, &entity.StockLedgerEntry{
			CompanyID:     companyID,
			ItemID:        itemID,
			WarehouseID:   warehouseID,
			TxType:        entity.LedgerTxAdjustment,
			ReferenceType: entity.ReferenceAdjustment,
			ReferenceID:   "apertura",
			Quantity:      dec(qty),
			UnitCost:      dec("5"),
			CreatedBy:     userID,
		})
	})
}

type soLine struct {
	item  string
	qty   string
	price string
}

func (f *fixture) seedSalesOrder(warehouseID, status string, lines ...soLine) *entity.SalesOrder {
	o := &entity.SalesOrder{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		CustomerID:  "cust-1",
		WarehouseID: warehouseID,
		Status:      status,
		OrderDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, l := range lines {
		o.Lines = append(o.Lines, entity.SalesOrderLine{
			ID:         uuid.New().String(),
			LineNo:     i + 1,
			ItemID:     l.item,
			QtyOrdered: dec(l.qty),
			UnitPrice:  dec(l.price),
			Status:     entity.LineOpen,
		})
	}
	f.run(func(repos repository.Repos) error { return repos.SalesOrders().Create(f.ctx, o) })
	return o
}

func (f *fixture) seedPurchaseOrder(warehouseID string, itemID, qty, cost string) *entity.PurchaseOrder {
	po := &entity.PurchaseOrder{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		SupplierID:  "supp-1",
		WarehouseID: warehouseID,
		Status:      entity.PurchaseOrderConfirmed,
		Lines: []entity.PurchaseOrderLine{{
			ID:         uuid.New().String(),
			LineNo:     1,
			ItemID:     itemID,
			QtyOrdered: dec(qty),
			UnitCost:   dec(cost),
			Status:     entity.LineOpen,
		}},
	}
	f.run(func(repos repository.Repos) error { return repos.PurchaseOrders().Create(f.ctx, po) })
	return po
}

func (f *fixture) shipmentDraft(order *entity.SalesOrder, qtys ...string) *entity.Shipment {
	f.t.Helper()
	in := inventory.ShipmentDraftInput{CompanyID: companyID, OrderID: order.ID}
	for i, q := range qtys {
		in.Lines = append(in.Lines, inventory.ShipmentDraftLine{OrderLineID: order.Lines[i].ID, Quantity: dec(q)})
	}
	shp, err := f.drafts.CreateShipmentDraft(f.ctx, in)
	require.NoError(f.t, err)
	return shp
}

func (f *fixture) avail(itemID, warehouseID string) entity.Availability {
	f.t.Helper()
	a, err := f.availability.Availability(f.ctx, companyID, itemID, warehouseID)
	require.NoError(f.t, err)
	return a
}

func (f *fixture) order(id string) entity.SalesOrder {
	f.t.Helper()
	o, ok := f.store.Snapshot().SalesOrder(id)
	require.True(f.t, ok)
	return o
}
