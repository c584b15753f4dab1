package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ItemUseCase alta y consulta de ítems. Cost solo lo cambia el motor de recepciones.
type ItemUseCase struct {
	tx inventory.TxRunner
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(tx inventory.TxRunner) *ItemUseCase {
	return &ItemUseCase{tx: tx}
}

// Create crea un ítem. El método de costeo por defecto es promedio ponderado.
func (uc *ItemUseCase) Create(ctx context.Context, companyID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validationf("code y name son requeridos")
	}
	method := in.CostingMethod
	if method == "" {
		method = entity.CostingMethodAverage
	}
	if method != entity.CostingMethodAverage && method != entity.CostingMethodFIFO {
		return nil, domain.Validationf("método de costeo inválido %q", method)
	}
	for name, v := range map[string]decimal.Decimal{"price": in.Price, "reorder_point": in.ReorderPoint, "reorder_qty": in.ReorderQty} {
		if v.IsNegative() {
			return nil, domain.Validationf("%s no puede ser negativo", name)
		}
	}
	cost := decimal.Zero
	if in.Cost != nil {
		if in.Cost.IsNegative() {
			return nil, domain.Validationf("cost no puede ser negativo")
		}
		cost = in.Cost.Round(domaininv.CostPrecision)
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "UND"
	}

	item := &entity.Item{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		Code:          code,
		Name:          in.Name,
		UnitMeasure:   in.UnitMeasure,
		CostingMethod: method,
		Cost:          cost,
		Price:         in.Price,
		ReorderPoint:  in.ReorderPoint,
		ReorderQty:    in.ReorderQty,
		Active:        true,
	}
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		return repos.Items().Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem de la empresa; (nil, nil) si no existe.
func (uc *ItemUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ItemResponse, error) {
	var out *dto.ItemResponse
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		it, err := repos.Items().GetByID(ctx, id)
		if err != nil || it == nil || it.CompanyID != companyID {
			return err
		}
		out = toItemResponse(it)
		return nil
	})
	return out, err
}

// List lista ítems por empresa con paginación.
func (uc *ItemUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.ItemListResponse, error) {
	var list []*entity.Item
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		list, err = repos.Items().ListByCompany(ctx, companyID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:            it.ID,
		CompanyID:     it.CompanyID,
		Code:          it.Code,
		Name:          it.Name,
		UnitMeasure:   it.UnitMeasure,
		CostingMethod: it.CostingMethod,
		Cost:          it.Cost,
		Price:         it.Price,
		ReorderPoint:  it.ReorderPoint,
		ReorderQty:    it.ReorderQty,
		Active:        it.Active,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
}
