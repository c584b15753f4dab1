package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Tipos de documento para pedidos registrados sin número externo.
const (
	DocTypeSalesOrder    = "SO"
	DocTypePurchaseOrder = "PO"
)

// OrderUseCase registra pedidos de venta y órdenes de compra que luego consumen los motores.
type OrderUseCase struct {
	tx  inventory.TxRunner
	now func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(tx inventory.TxRunner) *OrderUseCase {
	return &OrderUseCase{tx: tx, now: func() time.Time { return time.Now().UTC() }}
}

// CreateSalesOrder registra un pedido en borrador; la primera reserva lo confirma.
func (uc *OrderUseCase) CreateSalesOrder(ctx context.Context, companyID string, in dto.CreateSalesOrderRequest) (*dto.SalesOrderResponse, error) {
	if in.CustomerID == "" || in.WarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.Validationf("cliente, bodega y líneas son requeridos")
	}
	one := decimal.NewFromInt(1)
	for i, l := range in.Lines {
		switch {
		case !l.QtyOrdered.IsPositive():
			return nil, domain.Validationf("línea %d: qty_ordered debe ser mayor que cero", i+1)
		case l.UnitPrice.IsNegative():
			return nil, domain.Validationf("línea %d: unit_price negativo", i+1)
		case l.Discount.IsNegative() || l.Discount.GreaterThan(one):
			return nil, domain.Validationf("línea %d: discount fuera de 0..1", i+1)
		}
	}

	now := uc.now()
	order := &entity.SalesOrder{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Number:      in.Number,
		CustomerID:  in.CustomerID,
		WarehouseID: in.WarehouseID,
		Status:      entity.SalesOrderDraft,
		OrderDate:   now,
	}
	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	for i, l := range in.Lines {
		order.Lines = append(order.Lines, entity.SalesOrderLine{
			ID:         uuid.New().String(),
			OrderID:    order.ID,
			LineNo:     i + 1,
			ItemID:     l.ItemID,
			QtyOrdered: l.QtyOrdered,
			QtyShipped: decimal.Zero,
			UnitPrice:  l.UnitPrice,
			Discount:   l.Discount,
			Status:     entity.LineOpen,
		})
	}

	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		if err := requireCatalog(ctx, repos, companyID, in.WarehouseID, salesItemIDs(in.Lines)); err != nil {
			return err
		}
		if order.Number == "" {
			n, err := repos.Sequences().Next(ctx, companyID, DocTypeSalesOrder)
			if err != nil {
				return err
			}
			order.Number = inventory.FormatDocumentNumber(DocTypeSalesOrder, n)
		}
		return repos.SalesOrders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return toSalesOrderResponse(order), nil
}

// GetSalesOrder pedido de la empresa; (nil, nil) si no existe.
func (uc *OrderUseCase) GetSalesOrder(ctx context.Context, companyID, id string) (*dto.SalesOrderResponse, error) {
	var out *dto.SalesOrderResponse
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		o, err := repos.SalesOrders().GetByID(ctx, id)
		if err != nil || o == nil || o.CompanyID != companyID {
			return err
		}
		out = toSalesOrderResponse(o)
		return nil
	})
	return out, err
}

// CreatePurchaseOrder registra una orden de compra en borrador.
func (uc *OrderUseCase) CreatePurchaseOrder(ctx context.Context, companyID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if in.SupplierID == "" || in.WarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.Validationf("proveedor, bodega y líneas son requeridos")
	}
	for i, l := range in.Lines {
		if !l.QtyOrdered.IsPositive() {
			return nil, domain.Validationf("línea %d: qty_ordered debe ser mayor que cero", i+1)
		}
		if l.UnitCost.IsNegative() {
			return nil, domain.Validationf("línea %d: unit_cost negativo", i+1)
		}
	}

	now := uc.now()
	po := &entity.PurchaseOrder{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Number:      in.Number,
		SupplierID:  in.SupplierID,
		WarehouseID: in.WarehouseID,
		Status:      entity.PurchaseOrderDraft,
		OrderDate:   now,
	}
	if in.OrderDate != nil {
		po.OrderDate = *in.OrderDate
	}
	itemIDs := make([]string, 0, len(in.Lines))
	for i, l := range in.Lines {
		itemIDs = append(itemIDs, l.ItemID)
		po.Lines = append(po.Lines, entity.PurchaseOrderLine{
			ID:          uuid.New().String(),
			OrderID:     po.ID,
			LineNo:      i + 1,
			ItemID:      l.ItemID,
			QtyOrdered:  l.QtyOrdered,
			QtyReceived: decimal.Zero,
			UnitCost:    l.UnitCost,
			Status:      entity.LineOpen,
		})
	}

	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		if err := requireCatalog(ctx, repos, companyID, in.WarehouseID, itemIDs); err != nil {
			return err
		}
		if po.Number == "" {
			n, err := repos.Sequences().Next(ctx, companyID, DocTypePurchaseOrder)
			if err != nil {
				return err
			}
			po.Number = inventory.FormatDocumentNumber(DocTypePurchaseOrder, n)
		}
		return repos.PurchaseOrders().Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

// ConfirmPurchaseOrder pasa la orden de borrador a confirmada para admitir recepciones.
func (uc *OrderUseCase) ConfirmPurchaseOrder(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	var out *dto.PurchaseOrderResponse
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		po, err := repos.PurchaseOrders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if po == nil || po.CompanyID != companyID {
			return domain.NotFoundf("orden de compra %s", id)
		}
		if po.Status != entity.PurchaseOrderDraft {
			return domain.InvalidStatef("orden de compra %s en estado %s", po.ID, po.Status)
		}
		if err := repos.PurchaseOrders().UpdateStatus(ctx, po.ID, entity.PurchaseOrderConfirmed); err != nil {
			return err
		}
		po.Status = entity.PurchaseOrderConfirmed
		out = toPurchaseOrderResponse(po)
		return nil
	})
	return out, err
}

// GetPurchaseOrder orden de compra de la empresa; (nil, nil) si no existe.
func (uc *OrderUseCase) GetPurchaseOrder(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	var out *dto.PurchaseOrderResponse
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		po, err := repos.PurchaseOrders().GetByID(ctx, id)
		if err != nil || po == nil || po.CompanyID != companyID {
			return err
		}
		out = toPurchaseOrderResponse(po)
		return nil
	})
	return out, err
}

func requireCatalog(ctx context.Context, repos repository.Repos, companyID, warehouseID string, itemIDs []string) error {
	wh, err := repos.Warehouses().GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.CompanyID != companyID {
		return domain.NotFoundf("bodega %s", warehouseID)
	}
	for _, id := range itemIDs {
		it, err := repos.Items().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if it == nil || it.CompanyID != companyID {
			return domain.NotFoundf("ítem %s", id)
		}
		if !it.Active {
			return domain.Validationf("ítem %s inactivo", id)
		}
	}
	return nil
}

func salesItemIDs(lines []dto.SalesOrderLineRequest) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	return ids
}

func toSalesOrderResponse(o *entity.SalesOrder) *dto.SalesOrderResponse {
	out := &dto.SalesOrderResponse{
		ID:          o.ID,
		Number:      o.Number,
		CustomerID:  o.CustomerID,
		WarehouseID: o.WarehouseID,
		Status:      o.Status,
		OrderDate:   o.OrderDate,
		Lines:       make([]dto.SalesOrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.SalesOrderLineResponse{
			ID:         l.ID,
			LineNo:     l.LineNo,
			ItemID:     l.ItemID,
			QtyOrdered: l.QtyOrdered,
			QtyShipped: l.QtyShipped,
			UnitPrice:  l.UnitPrice,
			Discount:   l.Discount,
			Status:     l.Status,
		})
	}
	return out
}

func toPurchaseOrderResponse(po *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	out := &dto.PurchaseOrderResponse{
		ID:          po.ID,
		Number:      po.Number,
		SupplierID:  po.SupplierID,
		WarehouseID: po.WarehouseID,
		Status:      po.Status,
		OrderDate:   po.OrderDate,
		Lines:       make([]dto.PurchaseOrderLineResponse, 0, len(po.Lines)),
	}
	for _, l := range po.Lines {
		out.Lines = append(out.Lines, dto.PurchaseOrderLineResponse{
			ID:          l.ID,
			LineNo:      l.LineNo,
			ItemID:      l.ItemID,
			QtyOrdered:  l.QtyOrdered,
			QtyReceived: l.QtyReceived,
			UnitCost:    l.UnitCost,
			Status:      l.Status,
		})
	}
	return out
}
