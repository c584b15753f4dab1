package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// DefaultLedgerPageSize tamaño de página cuando el filtro no trae límite.
const DefaultLedgerPageSize = 100

// ItemAvailability disponibilidad agregada del ítem y su desglose por bodega.
type ItemAvailability struct {
	ItemID      string
	Total       entity.Availability
	ByWarehouse []entity.Availability
}

// AvailabilityUseCase consultas de disponibilidad y del libro de stock.
type AvailabilityUseCase struct {
	engine
}

// NewAvailabilityUseCase construye el caso de uso.
func NewAvailabilityUseCase(txRunner TxRunner, c Collaborators) *AvailabilityUseCase {
	return &AvailabilityUseCase{engine: newEngine(txRunner, c, "availability")}
}

// Availability lectura consistente (una sola transacción) de on-hand, comprometido y disponible.
func (uc *AvailabilityUseCase) Availability(ctx context.Context, companyID, itemID, warehouseID string) (entity.Availability, error) {
	if itemID == "" || warehouseID == "" {
		return entity.Availability{}, domain.Validationf("ítem y bodega son obligatorios")
	}
	var out entity.Availability
	err := uc.execute(ctx, "availability",
		[]attribute.KeyValue{attribute.String("item_id", itemID), attribute.String("warehouse_id", warehouseID)},
		func(ctx context.Context, repos repository.Repos) error {
			if _, err := requireItem(ctx, repos, companyID, itemID); err != nil {
				return err
			}
			if _, err := requireWarehouse(ctx, repos, companyID, warehouseID); err != nil {
				return err
			}
			var err error
			out, err = availabilityOf(ctx, repos, itemID, warehouseID)
			return err
		})
	return out, err
}

// ItemAvailability agrega la disponibilidad del ítem en todas las bodegas.
func (uc *AvailabilityUseCase) ItemAvailability(ctx context.Context, companyID, itemID string) (*ItemAvailability, error) {
	if itemID == "" {
		return nil, domain.Validationf("ítem obligatorio")
	}
	var out *ItemAvailability
	err := uc.execute(ctx, "item_availability",
		[]attribute.KeyValue{attribute.String("item_id", itemID)},
		func(ctx context.Context, repos repository.Repos) error {
			if _, err := requireItem(ctx, repos, companyID, itemID); err != nil {
				return err
			}
			var err error
			out, err = itemAvailabilityOf(ctx, repos, itemID)
			return err
		})
	return out, err
}

func itemAvailabilityOf(ctx context.Context, repos repository.Repos, itemID string) (*ItemAvailability, error) {
	onHand, err := repos.Ledger().SumByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	committed, err := repos.Reservations().SumActiveByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	whs := make(map[string]struct{}, len(onHand)+len(committed))
	for wh := range onHand {
		whs[wh] = struct{}{}
	}
	for wh := range committed {
		whs[wh] = struct{}{}
	}
	ids := make([]string, 0, len(whs))
	for wh := range whs {
		ids = append(ids, wh)
	}
	sort.Strings(ids)

	res := &ItemAvailability{ItemID: itemID, ByWarehouse: make([]entity.Availability, 0, len(ids))}
	totalOnHand, totalCommitted := decimal.Zero, decimal.Zero
	for _, wh := range ids {
		a := entity.NewAvailability(itemID, wh, onHand[wh], committed[wh])
		res.ByWarehouse = append(res.ByWarehouse, a)
		totalOnHand = totalOnHand.Add(a.OnHand)
		totalCommitted = totalCommitted.Add(a.Committed)
	}
	res.Total = entity.NewAvailability(itemID, "", totalOnHand, totalCommitted)
	return res, nil
}

// DashboardAvailability lectura para tableros: pasa por la caché y tolera datos viejos.
// Nunca debe usarse para decidir un movimiento de stock. warehouseID vacío = agregado.
func (uc *AvailabilityUseCase) DashboardAvailability(ctx context.Context, companyID, itemID, warehouseID string) (entity.Availability, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, companyID, itemID, warehouseID)
		if err != nil {
			uc.log.Warn().Err(err).Str("item_id", itemID).Msg("caché de disponibilidad no disponible")
		} else if cached != nil {
			return *cached, nil
		}
	}

	var (
		a   entity.Availability
		err error
	)
	if warehouseID == "" {
		var agg *ItemAvailability
		agg, err = uc.ItemAvailability(ctx, companyID, itemID)
		if agg != nil {
			a = agg.Total
		}
	} else {
		a, err = uc.Availability(ctx, companyID, itemID, warehouseID)
	}
	if err != nil {
		return entity.Availability{}, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, companyID, a); err != nil {
			uc.log.Warn().Err(err).Str("item_id", itemID).Msg("no se pudo guardar disponibilidad en caché")
		}
	}
	return a, nil
}

// Ledger lista movimientos del libro de la empresa según el filtro.
func (uc *AvailabilityUseCase) Ledger(ctx context.Context, filter entity.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	if filter.CompanyID == "" {
		return nil, domain.Validationf("empresa obligatoria")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.Validationf("rango de fechas invertido")
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultLedgerPageSize
	}
	var out []*entity.StockLedgerEntry
	err := uc.execute(ctx, "ledger_list", nil, func(ctx context.Context, repos repository.Repos) error {
		var err error
		out, err = repos.Ledger().List(ctx, filter)
		return err
	})
	return out, err
}

// OnHandAt on-hand de (ítem, bodega) contabilizado hasta la fecha indicada (inclusive).
func (uc *AvailabilityUseCase) OnHandAt(ctx context.Context, companyID, itemID, warehouseID string, at time.Time) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := uc.execute(ctx, "on_hand_at", nil, func(ctx context.Context, repos repository.Repos) error {
		if _, err := requireItem(ctx, repos, companyID, itemID); err != nil {
			return err
		}
		if _, err := requireWarehouse(ctx, repos, companyID, warehouseID); err != nil {
			return err
		}
		var err error
		out, err = repos.Ledger().SumQuantity(ctx, itemID, warehouseID, &at)
		return err
	})
	return out, err
}
