package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ShipmentDraftLine línea propuesta. UnitCost nil = costo vigente del ítem.
type ShipmentDraftLine struct {
	OrderLineID string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
}

// ShipmentDraftInput entrada para crear un despacho borrador. WarehouseID vacío = bodega del pedido.
type ShipmentDraftInput struct {
	CompanyID   string
	OrderID     string
	WarehouseID string
	ShipDate    time.Time
	Lines       []ShipmentDraftLine
}

// ReceiptDraftLine línea propuesta. UnitCost nil = costo pactado en la línea de la OC.
type ReceiptDraftLine struct {
	POLineID string
	Quantity decimal.Decimal
	UnitCost *decimal.Decimal
}

// ReceiptDraftInput entrada para crear una recepción borrador. WarehouseID vacío = bodega de la OC.
type ReceiptDraftInput struct {
	CompanyID       string
	PurchaseOrderID string
	WarehouseID     string
	ReceiptDate     time.Time
	Lines           []ReceiptDraftLine
}

// TransferDraftLine línea propuesta. UnitCost nil = costo vigente del ítem.
type TransferDraftLine struct {
	ItemID   string
	Quantity decimal.Decimal
	UnitCost *decimal.Decimal
}

// TransferDraftInput entrada para crear un traslado borrador.
type TransferDraftInput struct {
	CompanyID         string
	SourceWarehouseID string
	DestWarehouseID   string
	TransferDate      time.Time
	Lines             []TransferDraftLine
}

// AdjustmentDraftLine cantidad contada de un ítem.
type AdjustmentDraftLine struct {
	ItemID    string
	QtyActual decimal.Decimal
	UnitCost  *decimal.Decimal
}

// AdjustmentDraftInput entrada para crear un ajuste borrador.
type AdjustmentDraftInput struct {
	CompanyID      string
	WarehouseID    string
	Reason         string
	AdjustmentDate time.Time
	Lines          []AdjustmentDraftLine
}

// DraftUseCase crea documentos borrador listos para contabilizar.
type DraftUseCase struct {
	engine
}

// NewDraftUseCase construye el caso de uso.
func NewDraftUseCase(txRunner TxRunner, c Collaborators) *DraftUseCase {
	return &DraftUseCase{engine: newEngine(txRunner, c, "drafts")}
}

// CreateShipmentDraft arma un despacho contra líneas del pedido.
func (uc *DraftUseCase) CreateShipmentDraft(ctx context.Context, in ShipmentDraftInput) (*entity.Shipment, error) {
	if in.OrderID == "" || len(in.Lines) == 0 {
		return nil, domain.Validationf("pedido y líneas son obligatorios")
	}
	var shp *entity.Shipment
	err := uc.execute(ctx, "create_shipment_draft",
		[]attribute.KeyValue{attribute.String("order_id", in.OrderID)},
		func(ctx context.Context, repos repository.Repos) error {
			order, err := repos.SalesOrders().GetByID(ctx, in.OrderID)
			if err != nil {
				return err
			}
			if order == nil || order.CompanyID != in.CompanyID {
				return domain.NotFoundf("pedido %s", in.OrderID)
			}
			if order.Status == entity.SalesOrderCancelled || order.Status == entity.SalesOrderFullyShipped {
				return domain.InvalidStatef("pedido %s en estado %s", order.ID, order.Status)
			}
			whID := in.WarehouseID
			if whID == "" {
				whID = order.WarehouseID
			}
			if _, err := requireWarehouse(ctx, repos, in.CompanyID, whID); err != nil {
				return err
			}

			now := uc.now()
			shp = &entity.Shipment{
				ID:          uuid.New().String(),
				CompanyID:   in.CompanyID,
				OrderID:     order.ID,
				WarehouseID: whID,
				Status:      entity.DocumentStatusDraft,
				ShipDate:    dateOr(in.ShipDate, now),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			for i, l := range in.Lines {
				ol := order.Line(l.OrderLineID)
				if ol == nil {
					return domain.NotFoundf("línea de pedido %s", l.OrderLineID)
				}
				if !l.Quantity.IsPositive() {
					return domain.Validationf("línea %d: la cantidad debe ser mayor que cero", i+1)
				}
				cost, err := costOrItem(ctx, repos, in.CompanyID, ol.ItemID, l.UnitCost)
				if err != nil {
					return err
				}
				shp.Lines = append(shp.Lines, entity.ShipmentLine{
					ID:          uuid.New().String(),
					ShipmentID:  shp.ID,
					OrderLineID: ol.ID,
					ItemID:      ol.ItemID,
					Quantity:    l.Quantity,
					UnitCost:    cost,
				})
			}
			return repos.Shipments().Create(ctx, shp)
		})
	return shp, err
}

// CreateReceiptDraft arma una recepción contra líneas de la orden de compra.
// El exceso sobre lo pendiente se valida al contabilizar.
func (uc *DraftUseCase) CreateReceiptDraft(ctx context.Context, in ReceiptDraftInput) (*entity.Receipt, error) {
	if in.PurchaseOrderID == "" || len(in.Lines) == 0 {
		return nil, domain.Validationf("orden de compra y líneas son obligatorias")
	}
	var rc *entity.Receipt
	err := uc.execute(ctx, "create_receipt_draft",
		[]attribute.KeyValue{attribute.String("purchase_order_id", in.PurchaseOrderID)},
		func(ctx context.Context, repos repository.Repos) error {
			po, err := repos.PurchaseOrders().GetByID(ctx, in.PurchaseOrderID)
			if err != nil {
				return err
			}
			if po == nil || po.CompanyID != in.CompanyID {
				return domain.NotFoundf("orden de compra %s", in.PurchaseOrderID)
			}
			if po.Status == entity.PurchaseOrderCancelled || po.Status == entity.PurchaseOrderFullyReceived {
				return domain.InvalidStatef("orden de compra %s en estado %s", po.ID, po.Status)
			}
			whID := in.WarehouseID
			if whID == "" {
				whID = po.WarehouseID
			}
			if _, err := requireWarehouse(ctx, repos, in.CompanyID, whID); err != nil {
				return err
			}

			now := uc.now()
			rc = &entity.Receipt{
				ID:              uuid.New().String(),
				CompanyID:       in.CompanyID,
				PurchaseOrderID: po.ID,
				WarehouseID:     whID,
				Status:          entity.DocumentStatusDraft,
				ReceiptDate:     dateOr(in.ReceiptDate, now),
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			for i, l := range in.Lines {
				pol := po.Line(l.POLineID)
				if pol == nil {
					return domain.NotFoundf("línea de orden de compra %s", l.POLineID)
				}
				if !l.Quantity.IsPositive() {
					return domain.Validationf("línea %d: la cantidad debe ser mayor que cero", i+1)
				}
				cost := pol.UnitCost
				if l.UnitCost != nil {
					if l.UnitCost.IsNegative() {
						return domain.Validationf("línea %d: costo negativo", i+1)
					}
					cost = *l.UnitCost
				}
				rc.Lines = append(rc.Lines, entity.ReceiptLine{
					ID:        uuid.New().String(),
					ReceiptID: rc.ID,
					POLineID:  pol.ID,
					ItemID:    pol.ItemID,
					Quantity:  l.Quantity,
					UnitCost:  cost,
				})
			}
			return repos.Receipts().Create(ctx, rc)
		})
	return rc, err
}

// CreateTransferDraft arma un traslado; origen y destino deben diferir.
func (uc *DraftUseCase) CreateTransferDraft(ctx context.Context, in TransferDraftInput) (*entity.Transfer, error) {
	if in.SourceWarehouseID == "" || in.DestWarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.Validationf("bodegas y líneas son obligatorias")
	}
	if in.SourceWarehouseID == in.DestWarehouseID {
		return nil, domain.Validationf("la bodega origen y destino deben ser distintas")
	}
	var tr *entity.Transfer
	err := uc.execute(ctx, "create_transfer_draft", nil, func(ctx context.Context, repos repository.Repos) error {
		if _, err := requireWarehouse(ctx, repos, in.CompanyID, in.SourceWarehouseID); err != nil {
			return err
		}
		if _, err := requireWarehouse(ctx, repos, in.CompanyID, in.DestWarehouseID); err != nil {
			return err
		}
		now := uc.now()
		tr = &entity.Transfer{
			ID:                uuid.New().String(),
			CompanyID:         in.CompanyID,
			SourceWarehouseID: in.SourceWarehouseID,
			DestWarehouseID:   in.DestWarehouseID,
			Status:            entity.DocumentStatusDraft,
			TransferDate:      dateOr(in.TransferDate, now),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		for i, l := range in.Lines {
			if !l.Quantity.IsPositive() {
				return domain.Validationf("línea %d: la cantidad debe ser mayor que cero", i+1)
			}
			cost, err := costOrItem(ctx, repos, in.CompanyID, l.ItemID, l.UnitCost)
			if err != nil {
				return err
			}
			tr.Lines = append(tr.Lines, entity.TransferLine{
				ID:         uuid.New().String(),
				TransferID: tr.ID,
				ItemID:     l.ItemID,
				Quantity:   l.Quantity,
				UnitCost:   cost,
			})
		}
		return repos.Transfers().Create(ctx, tr)
	})
	return tr, err
}

// CreateAdjustmentDraft arma un ajuste tomando qty_system del libro en este momento.
func (uc *DraftUseCase) CreateAdjustmentDraft(ctx context.Context, in AdjustmentDraftInput) (*entity.Adjustment, error) {
	if in.WarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.Validationf("bodega y líneas son obligatorias")
	}
	var adj *entity.Adjustment
	err := uc.execute(ctx, "create_adjustment_draft",
		[]attribute.KeyValue{attribute.String("warehouse_id", in.WarehouseID)},
		func(ctx context.Context, repos repository.Repos) error {
			if _, err := requireWarehouse(ctx, repos, in.CompanyID, in.WarehouseID); err != nil {
				return err
			}
			now := uc.now()
			adj = &entity.Adjustment{
				ID:             uuid.New().String(),
				CompanyID:      in.CompanyID,
				WarehouseID:    in.WarehouseID,
				Reason:         in.Reason,
				Status:         entity.DocumentStatusDraft,
				AdjustmentDate: dateOr(in.AdjustmentDate, now),
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			for i, l := range in.Lines {
				if l.QtyActual.IsNegative() {
					return domain.Validationf("línea %d: la cantidad contada no puede ser negativa", i+1)
				}
				if _, err := requireItem(ctx, repos, in.CompanyID, l.ItemID); err != nil {
					return err
				}
				system, err := repos.Ledger().SumQuantity(ctx, l.ItemID, in.WarehouseID, nil)
				if err != nil {
					return err
				}
				adj.Lines = append(adj.Lines, entity.AdjustmentLine{
					ID:           uuid.New().String(),
					AdjustmentID: adj.ID,
					ItemID:       l.ItemID,
					QtySystem:    system,
					QtyActual:    l.QtyActual,
					UnitCost:     l.UnitCost,
				})
			}
			return repos.Adjustments().Create(ctx, adj)
		})
	return adj, err
}

func costOrItem(ctx context.Context, repos repository.Repos, companyID, itemID string, explicit *decimal.Decimal) (decimal.Decimal, error) {
	item, err := requireItem(ctx, repos, companyID, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	if !item.Active {
		return decimal.Zero, domain.Validationf("ítem %s inactivo", itemID)
	}
	if explicit != nil {
		if explicit.IsNegative() {
			return decimal.Zero, domain.Validationf("costo negativo para ítem %s", itemID)
		}
		return *explicit, nil
	}
	return item.Cost, nil
}

func dateOr(t, def time.Time) time.Time {
	if t.IsZero() {
		return def
	}
	return t
}
