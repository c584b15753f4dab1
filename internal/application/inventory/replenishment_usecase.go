package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const replenishmentPageSize = 500

// ReplenishmentUseCase genera la lista de reposición a partir de la disponibilidad del libro.
type ReplenishmentUseCase struct {
	engine
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(txRunner TxRunner, c Collaborators) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{engine: newEngine(txRunner, c, "replenishment")}
}

// GenerateReplenishmentList devuelve los ítems activos cuyo disponible está en o bajo su punto de
// reorden, con la cantidad sugerida y un ranking por déficit. warehouseID vacío = todas las bodegas.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID, warehouseID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	suggestions := []dto.ReplenishmentSuggestionDTO{}
	err := uc.execute(ctx, "replenishment_list",
		[]attribute.KeyValue{attribute.String("warehouse_id", warehouseID)},
		func(ctx context.Context, repos repository.Repos) error {
			suggestions = suggestions[:0]
			if warehouseID != "" {
				if _, err := requireWarehouse(ctx, repos, companyID, warehouseID); err != nil {
					return err
				}
			}
			since := uc.now().AddDate(0, 0, -90)
			for offset := 0; ; offset += replenishmentPageSize {
				items, err := repos.Items().ListByCompany(ctx, companyID, replenishmentPageSize, offset)
				if err != nil {
					return err
				}
				for _, it := range items {
					s, ok, err := suggestionFor(ctx, repos, it, warehouseID, since)
					if err != nil {
						return err
					}
					if ok {
						suggestions = append(suggestions, s)
					}
				}
				if len(items) < replenishmentPageSize {
					return nil
				}
			}
		})
	if err != nil {
		return nil, err
	}

	// Mayor déficit primero; a igual déficit, más rotación reciente.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.Deficit.Equal(b.Deficit) {
			return a.Deficit.GreaterThan(b.Deficit)
		}
		if !a.UnitsShippedLast90d.Equal(b.UnitsShippedLast90d) {
			return a.UnitsShippedLast90d.GreaterThan(b.UnitsShippedLast90d)
		}
		return a.Code < b.Code
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func suggestionFor(ctx context.Context, repos repository.Repos, it *entity.Item, warehouseID string, since time.Time) (dto.ReplenishmentSuggestionDTO, bool, error) {
	if !it.Active || !it.ReorderPoint.IsPositive() {
		return dto.ReplenishmentSuggestionDTO{}, false, nil
	}

	var available decimal.Decimal
	if warehouseID != "" {
		a, err := availabilityOf(ctx, repos, it.ID, warehouseID)
		if err != nil {
			return dto.ReplenishmentSuggestionDTO{}, false, err
		}
		available = a.Available
	} else {
		agg, err := itemAvailabilityOf(ctx, repos, it.ID)
		if err != nil {
			return dto.ReplenishmentSuggestionDTO{}, false, err
		}
		available = agg.Total.Available
	}
	if available.GreaterThan(it.ReorderPoint) {
		return dto.ReplenishmentSuggestionDTO{}, false, nil
	}

	suggested := it.ReorderQty
	if !suggested.IsPositive() {
		suggested = it.ReorderPoint.Mul(decimal.NewFromFloat(1.5)).Sub(available)
	}
	if suggested.IsNegative() {
		suggested = decimal.Zero
	}

	shipped, err := shippedSince(ctx, repos, it, warehouseID, since)
	if err != nil {
		return dto.ReplenishmentSuggestionDTO{}, false, err
	}

	hundred := decimal.NewFromInt(100)
	margin := decimal.Zero
	if it.Price.IsPositive() {
		margin = it.Price.Sub(it.Cost).Div(it.Price).Mul(hundred).Round(2)
	}

	return dto.ReplenishmentSuggestionDTO{
		ItemID:              it.ID,
		Code:                it.Code,
		Name:                it.Name,
		Available:           available,
		ReorderPoint:        it.ReorderPoint,
		Deficit:             it.ReorderPoint.Sub(available),
		SuggestedOrderQty:   suggested,
		UnitCost:            it.Cost,
		EstimatedOrderCost:  suggested.Mul(it.Cost),
		GrossMarginPct:      margin,
		UnitsShippedLast90d: shipped,
	}, true, nil
}

// shippedSince unidades despachadas del ítem desde la fecha (salidas por despacho del libro).
func shippedSince(ctx context.Context, repos repository.Repos, it *entity.Item, warehouseID string, since time.Time) (decimal.Decimal, error) {
	entries, err := repos.Ledger().List(ctx, entity.LedgerFilter{
		CompanyID:   it.CompanyID,
		ItemID:      it.ID,
		WarehouseID: warehouseID,
		From:        &since,
	})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		if e.TxType == entity.LedgerTxShipment {
			total = total.Sub(e.Quantity)
		}
	}
	return total, nil
}
