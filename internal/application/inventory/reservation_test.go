package inventory_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestReserveStock_InsuficienteNoCreaNada(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem("A", "5")
	b := f.seedItem("B", "5")
	f.seedStock(a, f.wh1, "10")
	f.seedStock(b, f.wh1, "1")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{a, "5", "20"}, soLine{b, "5", "20"})

	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{
		{OrderLineID: order.Lines[0].ID, ItemID: a, Quantity: dec("5")},
		{OrderLineID: order.Lines[1].ID, ItemID: b, Quantity: dec("5")},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, f.store.Snapshot().Reservations())
	assert.Equal(t, entity.SalesOrderDraft, f.order(order.ID).Status)
}

func TestReserveStock_AgregaPorPar(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "6", "20"}, soLine{item, "6", "20"})

	// 6 + 6 sobre el mismo par supera 10 aunque cada línea cabría sola.
	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{
		{OrderLineID: order.Lines[0].ID, ItemID: item, Quantity: dec("6")},
		{OrderLineID: order.Lines[1].ID, ItemID: item, Quantity: dec("6")},
	})
	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	requireDec(t, "12", se.Requested)
	requireDec(t, "10", se.Available)
}

func TestReserveStock_ConflictoYEstados(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "2", "20"})
	line := []inventory.ReserveLine{{OrderLineID: order.Lines[0].ID, ItemID: item, Quantity: dec("2")}}

	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, line)
	require.NoError(t, err)
	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, line)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.reservations.ReserveStock(f.ctx, "otra-empresa", userID, order.ID, line)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{{ItemID: item, Quantity: dec("0")}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	cancelled := f.seedSalesOrder(f.wh1, entity.SalesOrderCancelled, soLine{item, "1", "20"})
	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, cancelled.ID, []inventory.ReserveLine{{ItemID: item, Quantity: dec("1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReserveStock_LineaYParNoRetienenDosVeces(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "20")

	// Reserva con línea y luego sin línea sobre el mismo par.
	conLinea := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "5", "20"})
	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, conLinea.ID, []inventory.ReserveLine{
		{OrderLineID: conLinea.Lines[0].ID, ItemID: item, Quantity: dec("5")},
	})
	require.NoError(t, err)
	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, conLinea.ID, []inventory.ReserveLine{{ItemID: item, Quantity: dec("5")}})
	assert.ErrorIs(t, err, domain.ErrConflict)
	requireDec(t, "5", f.avail(item, f.wh1).Committed)

	// Reserva sin línea y luego con línea sobre el mismo par.
	sinLinea := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "5", "20"})
	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, sinLinea.ID, []inventory.ReserveLine{{ItemID: item, Quantity: dec("5")}})
	require.NoError(t, err)
	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, sinLinea.ID, []inventory.ReserveLine{
		{OrderLineID: sinLinea.Lines[0].ID, ItemID: item, Quantity: dec("5")},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	requireDec(t, "10", f.avail(item, f.wh1).Committed)

	// Ambas formas en la misma llamada.
	mixto := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "5", "20"})
	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, mixto.ID, []inventory.ReserveLine{
		{OrderLineID: mixto.Lines[0].ID, ItemID: item, Quantity: dec("2")},
		{ItemID: item, Quantity: dec("2")},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	requireDec(t, "10", f.avail(item, f.wh1).Committed)
}

func TestReserveStock_NoSuperaLoPendiente(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "20")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "2", "20"})

	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{
		{OrderLineID: order.Lines[0].ID, ItemID: item, Quantity: dec("15")},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{{ItemID: item, Quantity: dec("3")}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	otro := f.seedItem("B", "5")
	f.seedStock(otro, f.wh1, "5")
	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{{ItemID: otro, Quantity: dec("1")}})
	assert.ErrorIs(t, err, domain.ErrValidation, "el ítem no figura en el pedido")

	a := f.avail(item, f.wh1)
	requireDec(t, "0", a.Committed)
	requireDec(t, "20", a.Available)
	assert.Empty(t, f.store.Snapshot().Reservations())

	_, err = f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{
		{OrderLineID: order.Lines[0].ID, ItemID: item, Quantity: dec("2")},
	})
	require.NoError(t, err)
	requireDec(t, "2", f.avail(item, f.wh1).Committed)
}

func TestReleaseReservations(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "4", "20"})
	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{
		{OrderLineID: order.Lines[0].ID, ItemID: item, Quantity: dec("4")},
	})
	require.NoError(t, err)
	requireDec(t, "6", f.avail(item, f.wh1).Available)

	n, err := f.reservations.ReleaseReservations(f.ctx, companyID, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	requireDec(t, "10", f.avail(item, f.wh1).Available)

	n, err = f.reservations.ReleaseReservations(f.ctx, companyID, userID, order.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, f.audit.actions(), "reservation.released")
}

func TestCancelSalesOrder(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	order := f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "4", "20"})
	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{{ItemID: item, Quantity: dec("4")}})
	require.NoError(t, err)

	require.NoError(t, f.reservations.CancelSalesOrder(f.ctx, companyID, userID, order.ID))
	o := f.order(order.ID)
	assert.Equal(t, entity.SalesOrderCancelled, o.Status)
	assert.Equal(t, entity.LineCancelled, o.Lines[0].Status)
	requireDec(t, "10", f.avail(item, f.wh1).Available)

	err = f.reservations.CancelSalesOrder(f.ctx, companyID, userID, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	partial := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "4", "20"})
	_, err = f.shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(partial, "1").ID)
	require.NoError(t, err)
	err = f.reservations.CancelSalesOrder(f.ctx, companyID, userID, partial.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReserveStock_ConcurrenciaNoSobrecompromete(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")

	const n = 10
	orders := make([]*entity.SalesOrder, n)
	for i := range orders {
		orders[i] = f.seedSalesOrder(f.wh1, entity.SalesOrderDraft, soLine{item, "4", "20"})
	}

	var wg sync.WaitGroup
	for _, o := range orders {
		wg.Add(1)
		go func(o *entity.SalesOrder) {
			defer wg.Done()
			_, _ = f.reservations.ReserveStock(f.ctx, companyID, userID, o.ID, []inventory.ReserveLine{
				{OrderLineID: o.Lines[0].ID, ItemID: item, Quantity: dec("4")},
			})
		}(o)
	}
	wg.Wait()

	a := f.avail(item, f.wh1)
	requireDec(t, "8", a.Committed, "solo caben dos reservas de 4")
	requireDec(t, "2", a.Available)
}
