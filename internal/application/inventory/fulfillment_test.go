package inventory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestPostShipment_CicloCompleto(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "12")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "10", "20"})

	res, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{
		{OrderLineID: order.Lines[0].ID, ItemID: item, Quantity: dec("10")},
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, entity.SalesOrderConfirmed, f.order(order.ID).Status)
	requireDec(t, "2", f.avail(item, f.wh1).Available)

	shp := f.shipmentDraft(order, "10")
	posting, err := f.shipments.PostShipment(f.ctx, companyID, userID, shp.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.SalesOrderFullyShipped, posting.OrderStatus)
	assert.Equal(t, "SHP-000001", posting.Number)
	require.Len(t, posting.Entries, 1)
	requireDec(t, "-10", posting.Entries[0].Quantity)
	assert.Equal(t, entity.LedgerTxShipment, posting.Entries[0].TxType)

	require.NotNil(t, posting.Invoice)
	assert.Equal(t, "INV-000001", posting.Invoice.Number)
	requireDec(t, "200", posting.Invoice.NetTotal)
	requireDec(t, "38", posting.Invoice.TaxTotal)
	requireDec(t, "238", posting.Invoice.GrandTotal)

	snap := f.store.Snapshot()
	r := snap.Reservations()[res[0].ID]
	assert.Equal(t, entity.ReservationFulfilled, r.Status)

	a := f.avail(item, f.wh1)
	requireDec(t, "2", a.OnHand)
	requireDec(t, "0", a.Committed)
	requireDec(t, "2", a.Available)

	o := f.order(order.ID)
	assert.Equal(t, entity.LineFulfilled, o.Lines[0].Status)
	requireDec(t, "10", o.Lines[0].QtyShipped)

	posted, ok := snap.Shipment(shp.ID)
	require.True(t, ok)
	assert.Equal(t, entity.DocumentStatusPosted, posted.Status)
	assert.Equal(t, posting.Invoice.ID, posted.InvoiceID)
	assert.Contains(t, f.audit.actions(), "shipment.posted")
}

func TestPostShipment_ParcialCreaBackorder(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "20")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "10", "20"})

	posting, err := f.shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(order, "4").ID)
	require.NoError(t, err)

	assert.Equal(t, entity.SalesOrderPartiallyShipped, posting.OrderStatus)
	o := f.order(order.ID)
	assert.Equal(t, entity.LinePartial, o.Lines[0].Status)

	require.Len(t, posting.Backorders, 1)
	requireDec(t, "6", posting.Backorders[0].QtyBackordered)
	assert.Equal(t, entity.BackorderPartial, posting.Backorders[0].Status)

	// El resto cierra el backorder.
	posting, err = f.shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(order, "6").ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderFullyShipped, posting.OrderStatus)
	bo := f.store.Snapshot().Backorders()[order.Lines[0].ID]
	assert.Equal(t, entity.BackorderFulfilled, bo.Status)
	assert.True(t, bo.QtyBackordered.IsZero())
}

func TestPostShipment_ReservaParcialSeDivide(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "10", "20"})
	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{
		{OrderLineID: order.Lines[0].ID, ItemID: item, Quantity: dec("10")},
	})
	require.NoError(t, err)

	_, err = f.shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(order, "4").ID)
	require.NoError(t, err)

	a := f.avail(item, f.wh1)
	requireDec(t, "6", a.OnHand)
	requireDec(t, "6", a.Committed)
	requireDec(t, "0", a.Available)

	var active, fulfilled int
	for _, r := range f.store.Snapshot().Reservations() {
		switch r.Status {
		case entity.ReservationActive:
			active++
			requireDec(t, "6", r.Quantity)
		case entity.ReservationFulfilled:
			fulfilled++
			requireDec(t, "4", r.Quantity)
		}
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, 1, fulfilled)
}

func TestPostShipment_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "3")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "10", "20"})
	shp := f.shipmentDraft(order, "5")

	before := f.store.Snapshot()
	_, err := f.shipments.PostShipment(f.ctx, companyID, userID, shp.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, item, se.ItemID)
	requireDec(t, "5", se.Requested)
	requireDec(t, "3", se.Available)

	after := f.store.Snapshot()
	assert.Equal(t, before.Ledger(), after.Ledger())
	assert.Equal(t, before.Reservations(), after.Reservations())
	bo, _ := before.SalesOrder(order.ID)
	ao, _ := after.SalesOrder(order.ID)
	assert.Equal(t, bo, ao)
	assert.Equal(t, before.Sequences(), after.Sequences(), "un rollback no consume números")
	assert.Empty(t, after.Invoices())
}

func TestPostShipment_RespetaReservasDeOtrosPedidos(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	other := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "8", "20"})
	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, other.ID, []inventory.ReserveLine{{ItemID: item, Quantity: dec("8")}})
	require.NoError(t, err)

	order := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "5", "20"})
	_, err = f.shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(order, "5").ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(order, "2").ID)
	require.NoError(t, err)
	requireDec(t, "0", f.avail(item, f.wh1).Available)
}

func TestPostShipment_YaContabilizado(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "10", "20"})
	shp := f.shipmentDraft(order, "2")

	_, err := f.shipments.PostShipment(f.ctx, companyID, userID, shp.ID)
	require.NoError(t, err)
	_, err = f.shipments.PostShipment(f.ctx, companyID, userID, shp.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyPosted)
	assert.Equal(t, 2, len(f.store.Snapshot().Ledger()), "apertura + un despacho")
}

func TestPostShipment_EstadosYExistencia(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")

	_, err := f.shipments.PostShipment(f.ctx, companyID, userID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	order := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "10", "20"})
	shp := f.shipmentDraft(order, "1")
	_, err = f.shipments.PostShipment(f.ctx, "otra-empresa", userID, shp.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	draftOrder := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "1", "20"})
	_, err = f.shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(draftOrder, "1").ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestPostShipment_FalloDeImpuestosRevierte(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "10", "20"})
	shp := f.shipmentDraft(order, "2")

	uc := inventory.NewShipmentPostingUseCase(f.store, failingTax{}, f.collab)
	_, err := uc.PostShipment(f.ctx, companyID, userID, shp.ID)
	require.Error(t, err)
	assert.Len(t, f.store.Snapshot().Ledger(), 1)
	requireDec(t, "10", f.avail(item, f.wh1).OnHand)
}

func TestPostShipment_ConcurrenciaNoSobrecompromete(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		o := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "3", "20"})
		ids[i] = f.shipmentDraft(o, "3").ID
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.shipments.PostShipment(f.ctx, companyID, userID, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 3, ok, "10 unidades alcanzan para 3 despachos de 3")
	assert.Equal(t, n-3, rejected)
	a := f.avail(item, f.wh1)
	requireDec(t, "1", a.OnHand)
	assert.False(t, a.Available.IsNegative())
}

func TestPostShipment_FalloDeAuditoriaNoRevierte(t *testing.T) {
	f := newFixture(t)
	f.audit.err = errors.New("kafka caído")
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "10", "20"})

	_, err := f.shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(order, "3").ID)
	require.NoError(t, err)
	requireDec(t, "7", f.avail(item, f.wh1).OnHand)
	assert.Contains(t, f.audit.actions(), "shipment.posted")
}

func TestLineSubtotal(t *testing.T) {
	requireDec(t, "180", inventory.LineSubtotal(dec("10"), dec("20"), dec("0.1")))
	requireDec(t, "0", inventory.LineSubtotal(dec("0"), dec("20"), dec("0")))
}
