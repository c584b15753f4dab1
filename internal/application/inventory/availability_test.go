package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type mapCache struct {
	mu          sync.Mutex
	data        map[string]entity.Availability
	gets        int
	invalidated []string
}

func newMapCache() *mapCache { return &mapCache{data: map[string]entity.Availability{}} }

func (c *mapCache) key(companyID, itemID, warehouseID string) string {
	return companyID + "|" + itemID + "|" + warehouseID
}

func (c *mapCache) Get(_ context.Context, companyID, itemID, warehouseID string) (*entity.Availability, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	a, ok := c.data[c.key(companyID, itemID, warehouseID)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (c *mapCache) Set(_ context.Context, companyID string, a entity.Availability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[c.key(companyID, a.ItemID, a.WarehouseID)] = a
	return nil
}

func (c *mapCache) InvalidateItems(_ context.Context, companyID string, itemIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, a := range c.data {
		for _, id := range itemIDs {
			if a.ItemID == id && k[:len(companyID)] == companyID {
				delete(c.data, k)
			}
		}
	}
	c.invalidated = append(c.invalidated, itemIDs...)
	return nil
}

func TestAvailability_ItemYBodegaDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")

	_, err := f.availability.Availability(f.ctx, "otra-empresa", item, f.wh1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.availability.Availability(f.ctx, companyID, item, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	a := f.avail(item, f.wh1)
	assert.True(t, a.OnHand.IsZero())
	assert.True(t, a.Available.IsZero())
}

func TestItemAvailability_DesglosePorBodega(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")
	f.seedStock(item, f.wh2, "3")
	order := f.seedSalesOrder(f.wh2, entity.SalesOrderDraft, soLine{item, "2", "20"})
	_, err := f.reservations.ReserveStock(f.ctx, companyID, userID, order.ID, []inventory.ReserveLine{{ItemID: item, Quantity: dec("2")}})
	require.NoError(t, err)

	agg, err := f.availability.ItemAvailability(f.ctx, companyID, item)
	require.NoError(t, err)
	requireDec(t, "13", agg.Total.OnHand)
	requireDec(t, "2", agg.Total.Committed)
	requireDec(t, "11", agg.Total.Available)
	assert.Len(t, agg.ByWarehouse, 2)
}

func TestDashboardAvailability_LecturaPorCacheEInvalidacion(t *testing.T) {
	f := newFixture(t)
	cache := newMapCache()
	f.collab.Cache = cache
	avail := inventory.NewAvailabilityUseCase(f.store, f.collab)
	shipments := inventory.NewShipmentPostingUseCase(f.store, flatTax{rate: dec("0")}, f.collab)

	item := f.seedItem("A", "5")
	f.seedStock(item, f.wh1, "10")

	a, err := avail.DashboardAvailability(f.ctx, companyID, item, f.wh1)
	require.NoError(t, err)
	requireDec(t, "10", a.Available)
	require.Len(t, cache.data, 1)

	order := f.seedSalesOrder(f.wh1, entity.SalesOrderConfirmed, soLine{item, "4", "20"})
	_, err = shipments.PostShipment(f.ctx, companyID, userID, f.shipmentDraft(order, "4").ID)
	require.NoError(t, err)
	assert.Contains(t, cache.invalidated, item)

	a, err = avail.DashboardAvailability(f.ctx, companyID, item, f.wh1)
	require.NoError(t, err)
	requireDec(t, "6", a.Available)

	agg, err := avail.DashboardAvailability(f.ctx, companyID, item, "")
	require.NoError(t, err)
	requireDec(t, "6", agg.OnHand)
}

func TestLedger_FiltrosYOnHandAt(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem("A", "5")
	po := f.seedPurchaseOrder(f.wh1, item, "10", "5")

	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	for i, d := range []int{1, 5} {
		rc, err := f.drafts.CreateReceiptDraft(f.ctx, inventory.ReceiptDraftInput{
			CompanyID:       companyID,
			PurchaseOrderID: po.ID,
			ReceiptDate:     day(d),
			Lines:           []inventory.ReceiptDraftLine{{POLineID: po.Lines[0].ID, Quantity: dec(fmt.Sprint(i + 2))}},
		})
		require.NoError(t, err)
		_, err = f.receipts.PostReceipt(f.ctx, companyID, userID, rc.ID)
		require.NoError(t, err)
	}

	all, err := f.availability.Ledger(f.ctx, entity.LedgerFilter{CompanyID: companyID, ItemID: item})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].PostingDate.Before(all[1].PostingDate))

	from := day(3)
	late, err := f.availability.Ledger(f.ctx, entity.LedgerFilter{CompanyID: companyID, From: &from})
	require.NoError(t, err)
	require.Len(t, late, 1)
	requireDec(t, "3", late[0].Quantity)

	to := day(2)
	_, err = f.availability.Ledger(f.ctx, entity.LedgerFilter{CompanyID: companyID, From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrValidation)

	q, err := f.availability.OnHandAt(f.ctx, companyID, item, f.wh1, day(4))
	require.NoError(t, err)
	requireDec(t, "2", q)
	q, err = f.availability.OnHandAt(f.ctx, companyID, item, f.wh1, day(5))
	require.NoError(t, err)
	requireDec(t, "5", q)
}

func TestGenerateReplenishmentList(t *testing.T) {
	f := newFixture(t)
	seed := func(code, rp, rq string) string {
		it := &entity.Item{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			Code:          code,
			Name:          code,
			CostingMethod: entity.CostingMethodAverage,
			Cost:          dec("5"),
			Price:         dec("10"),
			ReorderPoint:  dec(rp),
			ReorderQty:    dec(rq),
			Active:        true,
		}
		f.run(func(repos repository.Repos) error { return repos.Items().Create(f.ctx, it) })
		return it.ID
	}
	low := seed("LOW", "10", "0")
	urgent := seed("URG", "20", "50")
	fine := seed("OK", "5", "0")
	_ = seed("NORP", "0", "0")
	f.seedStock(low, f.wh1, "4")
	f.seedStock(urgent, f.wh1, "2")
	f.seedStock(fine, f.wh1, "30")

	uc := inventory.NewReplenishmentUseCase(f.store, f.collab)
	list, err := uc.GenerateReplenishmentList(f.ctx, companyID, f.wh1)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "URG", list[0].Code)
	assert.Equal(t, 1, list[0].Priority)
	requireDec(t, "18", list[0].Deficit)
	requireDec(t, "50", list[0].SuggestedOrderQty)
	requireDec(t, "250", list[0].EstimatedOrderCost)
	requireDec(t, "50", list[0].GrossMarginPct)

	assert.Equal(t, "LOW", list[1].Code)
	requireDec(t, "11", list[1].SuggestedOrderQty, "1.5×10 − 4")

	_, err = uc.GenerateReplenishmentList(f.ctx, companyID, "bodega-inexistente")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"ok":                 nil,
		"insufficient_stock": domain.NewStockError("i", "w", dec("2"), dec("1")),
		"over_receipt":       &domain.OverReceiptError{POLineID: "l"},
		"already_posted":     fmt.Errorf("%w: x", domain.ErrAlreadyPosted),
		"invalid_state":      domain.InvalidStatef("x"),
		"not_found":          domain.NotFoundf("x"),
		"validation":         domain.Validationf("x"),
		"conflict":           domain.Conflictf("x"),
		"storage":            domain.NewStorageError("op", errors.New("conexión")),
		"error":              errors.New("otro"),
	}
	for want, err := range cases {
		assert.Equal(t, want, inventory.Outcome(err))
	}
}
