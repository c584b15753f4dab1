package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type stockPair struct {
	ItemID      string
	WarehouseID string
}

func (p stockPair) less(o stockPair) bool {
	if p.ItemID != o.ItemID {
		return p.ItemID < o.ItemID
	}
	return p.WarehouseID < o.WarehouseID
}

// pairDemand cantidad solicitada acumulada por (ítem, bodega).
type pairDemand map[stockPair]decimal.Decimal

func (d pairDemand) add(itemID, warehouseID string, qty decimal.Decimal) {
	k := stockPair{itemID, warehouseID}
	d[k] = d[k].Add(qty)
}

// pairs devuelve los pares en orden ascendente (ítem, bodega).
func (d pairDemand) pairs() []stockPair {
	out := make([]stockPair, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sortPairs(out)
	return out
}

func (d pairDemand) itemIDs() []string {
	ids := make([]string, 0, len(d))
	for k := range d {
		ids = append(ids, k.ItemID)
	}
	return uniqueSorted(ids)
}

func sortPairs(ps []stockPair) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].less(ps[j]) })
}

// lockPairs bloquea las anclas de stock siempre en orden ascendente para no generar deadlocks
// entre contabilizaciones concurrentes que tocan los mismos pares.
func lockPairs(ctx context.Context, repos repository.Repos, pairs []stockPair) error {
	ps := append([]stockPair(nil), pairs...)
	sortPairs(ps)
	var prev *stockPair
	for i := range ps {
		if prev != nil && *prev == ps[i] {
			continue
		}
		if err := repos.StockLocks().Lock(ctx, ps[i].ItemID, ps[i].WarehouseID); err != nil {
			return err
		}
		prev = &ps[i]
	}
	return nil
}

// withItemPairs añade a los pares pedidos todos los pares con movimientos de esos ítems.
func withItemPairs(ctx context.Context, repos repository.Repos, demand pairDemand) ([]stockPair, error) {
	all := pairDemand{}
	for p, q := range demand {
		all[p] = q
	}
	for _, id := range demand.itemIDs() {
		byWh, err := repos.Ledger().SumByItem(ctx, id)
		if err != nil {
			return nil, err
		}
		for wh := range byWh {
			all.add(id, wh, decimal.Zero)
		}
	}
	return all.pairs(), nil
}

// availabilityOf on-hand, comprometido y disponible leídos en la transacción actual.
func availabilityOf(ctx context.Context, repos repository.Repos, itemID, warehouseID string) (entity.Availability, error) {
	onHand, err := repos.Ledger().SumQuantity(ctx, itemID, warehouseID, nil)
	if err != nil {
		return entity.Availability{}, err
	}
	committed, err := repos.Reservations().SumActive(ctx, itemID, warehouseID)
	if err != nil {
		return entity.Availability{}, err
	}
	return entity.NewAvailability(itemID, warehouseID, onHand, committed), nil
}

func requireItem(ctx context.Context, repos repository.Repos, companyID, itemID string) (*entity.Item, error) {
	item, err := repos.Items().GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, domain.NotFoundf("ítem %s", itemID)
	}
	return item, nil
}

func requireWarehouse(ctx context.Context, repos repository.Repos, companyID, warehouseID string) (*entity.Warehouse, error) {
	wh, err := repos.Warehouses().GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, domain.NotFoundf("bodega %s", warehouseID)
	}
	return wh, nil
}
