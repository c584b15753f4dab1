package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

const company = "company-1"

type catalogFixture struct {
	ctx        context.Context
	warehouses *usecase.WarehouseUseCase
	items      *usecase.ItemUseCase
	orders     *usecase.OrderUseCase
	whID       string
	itemID     string
}

func newCatalog(t *testing.T) *catalogFixture {
	t.Helper()
	store := memory.New()
	f := &catalogFixture{
		ctx:        context.Background(),
		warehouses: usecase.NewWarehouseUseCase(store),
		items:      usecase.NewItemUseCase(store),
		orders:     usecase.NewOrderUseCase(store),
	}
	wh, err := f.warehouses.Create(f.ctx, company, dto.CreateWarehouseRequest{Code: " W1 ", Name: "Principal"})
	require.NoError(t, err)
	f.whID = wh.ID
	cost := decimal.RequireFromString("5.123456")
	it, err := f.items.Create(f.ctx, company, dto.CreateItemRequest{Code: "A", Name: "Tornillo", Cost: &cost, Price: decimal.NewFromInt(20)})
	require.NoError(t, err)
	f.itemID = it.ID
	return f
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

func TestCatalog_CreaConDefaults(t *testing.T) {
	f := newCatalog(t)

	wh, err := f.warehouses.GetByID(f.ctx, company, f.whID)
	require.NoError(t, err)
	require.NotNil(t, wh)
	assert.Equal(t, "W1", wh.Code)

	it, err := f.items.GetByID(f.ctx, company, f.itemID)
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, entity.CostingMethodAverage, it.CostingMethod)
	assert.Equal(t, "UND", it.UnitMeasure)
	assert.True(t, it.Cost.Equal(decimal.RequireFromString("5.1235")), "costo a 4 decimales: %s", it.Cost)

	// Otra empresa: no existe.
	other, err := f.items.GetByID(f.ctx, "otra", f.itemID)
	require.NoError(t, err)
	assert.Nil(t, other)

	list, err := f.warehouses.List(f.ctx, company, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestCatalog_Rechazos(t *testing.T) {
	f := newCatalog(t)

	_, err := f.items.Create(f.ctx, company, dto.CreateItemRequest{Code: "A", Name: "Duplicado"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.warehouses.Create(f.ctx, company, dto.CreateWarehouseRequest{Code: "W1", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.items.Create(f.ctx, company, dto.CreateItemRequest{Code: "B", Name: "X", CostingMethod: "lifo"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.items.Create(f.ctx, company, dto.CreateItemRequest{Code: "C", Name: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.warehouses.Create(f.ctx, company, dto.CreateWarehouseRequest{Code: " ", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ── Pedidos ──────────────────────────────────────────────────────────────────

func TestOrders_NumeraYValidaCatalogo(t *testing.T) {
	f := newCatalog(t)

	so, err := f.orders.CreateSalesOrder(f.ctx, company, dto.CreateSalesOrderRequest{
		CustomerID: "cli-1", WarehouseID: f.whID,
		Lines: []dto.SalesOrderLineRequest{{ItemID: f.itemID, QtyOrdered: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(20)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-000001", so.Number)
	assert.Equal(t, entity.SalesOrderDraft, so.Status)
	require.Len(t, so.Lines, 1)
	assert.Equal(t, entity.LineOpen, so.Lines[0].Status)

	_, err = f.orders.CreateSalesOrder(f.ctx, company, dto.CreateSalesOrderRequest{
		CustomerID: "cli-1", WarehouseID: f.whID,
		Lines: []dto.SalesOrderLineRequest{{ItemID: "no-existe", QtyOrdered: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.orders.CreateSalesOrder(f.ctx, company, dto.CreateSalesOrderRequest{
		CustomerID: "cli-1", WarehouseID: f.whID,
		Lines: []dto.SalesOrderLineRequest{{ItemID: f.itemID, QtyOrdered: decimal.NewFromInt(1), Discount: decimal.RequireFromString("1.5")}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Pedido de otra empresa: (nil, nil).
	got, err := f.orders.GetSalesOrder(f.ctx, "otra", so.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrders_ConfirmarOrdenDeCompra(t *testing.T) {
	f := newCatalog(t)

	po, err := f.orders.CreatePurchaseOrder(f.ctx, company, dto.CreatePurchaseOrderRequest{
		SupplierID: "prov-1", WarehouseID: f.whID,
		Lines: []dto.PurchaseOrderLineRequest{{ItemID: f.itemID, QtyOrdered: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-000001", po.Number)

	confirmed, err := f.orders.ConfirmPurchaseOrder(f.ctx, company, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderConfirmed, confirmed.Status)

	_, err = f.orders.ConfirmPurchaseOrder(f.ctx, company, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.orders.ConfirmPurchaseOrder(f.ctx, "otra", po.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
