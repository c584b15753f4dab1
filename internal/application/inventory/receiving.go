package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ReceiptPosting resultado de contabilizar una recepción.
type ReceiptPosting struct {
	ReceiptID           string
	Number              string
	PurchaseOrderID     string
	PurchaseOrderStatus string
	Entries             []*entity.StockLedgerEntry
	// ItemCosts costo promedio resultante por ítem (solo ítems de costo promedio).
	ItemCosts map[string]decimal.Decimal
}

// ReceiptPostingUseCase motor de recepciones de compra con recálculo de costo promedio.
type ReceiptPostingUseCase struct {
	engine
}

// NewReceiptPostingUseCase construye el motor.
func NewReceiptPostingUseCase(txRunner TxRunner, c Collaborators) *ReceiptPostingUseCase {
	return &ReceiptPostingUseCase{engine: newEngine(txRunner, c, "receiving")}
}

// PostReceipt contabiliza la recepción: entradas al libro, cantidades y estados de la orden de
// compra, costo promedio de cada ítem y número del documento, todo en una transacción.
func (uc *ReceiptPostingUseCase) PostReceipt(ctx context.Context, companyID, userID, receiptID string) (*ReceiptPosting, error) {
	if receiptID == "" {
		return nil, domain.Validationf("recepción obligatoria")
	}
	var res *ReceiptPosting
	var touched []string
	err := uc.execute(ctx, "post_receipt",
		[]attribute.KeyValue{attribute.String("receipt_id", receiptID)},
		func(ctx context.Context, repos repository.Repos) error {
			var err error
			res, touched, err = uc.post(ctx, repos, companyID, userID, receiptID)
			return err
		})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("receipt_id", res.ReceiptID).Str("number", res.Number).
		Str("po_status", res.PurchaseOrderStatus).Msg("recepción contabilizada")
	costs := make(map[string]string, len(res.ItemCosts))
	for id, c := range res.ItemCosts {
		costs[id] = c.String()
	}
	uc.afterCommit(ctx, AuditEvent{
		Action:     "receipt.posted",
		EntityType: "receipt",
		EntityID:   res.ReceiptID,
		CompanyID:  companyID,
		ActorID:    userID,
		Payload: map[string]any{
			"number":            res.Number,
			"purchase_order_id": res.PurchaseOrderID,
			"po_status":         res.PurchaseOrderStatus,
			"item_costs":        costs,
		},
	}, touched)
	return res, nil
}

func (uc *ReceiptPostingUseCase) post(ctx context.Context, repos repository.Repos, companyID, userID, receiptID string) (*ReceiptPosting, []string, error) {
	rc, err := repos.Receipts().GetForUpdate(ctx, receiptID)
	if err != nil {
		return nil, nil, err
	}
	if rc == nil || rc.CompanyID != companyID {
		return nil, nil, domain.NotFoundf("recepción %s", receiptID)
	}
	if rc.Status != entity.DocumentStatusDraft {
		return nil, nil, fmt.Errorf("%w: recepción %s", domain.ErrAlreadyPosted, rc.ID)
	}
	if len(rc.Lines) == 0 {
		return nil, nil, domain.Validationf("recepción %s sin líneas", rc.ID)
	}

	po, err := repos.PurchaseOrders().GetForUpdate(ctx, rc.PurchaseOrderID)
	if err != nil {
		return nil, nil, err
	}
	if po == nil || po.CompanyID != companyID {
		return nil, nil, domain.NotFoundf("orden de compra %s", rc.PurchaseOrderID)
	}
	if !inventory.PurchaseOrderPostable(po.Status) {
		return nil, nil, domain.InvalidStatef("orden de compra %s en estado %s", po.ID, po.Status)
	}
	if _, err := requireWarehouse(ctx, repos, companyID, rc.WarehouseID); err != nil {
		return nil, nil, err
	}

	// Lo recibido se acumula por línea de OC antes de comparar con lo pendiente.
	perLine := make(map[string]decimal.Decimal)
	demand := pairDemand{}
	for _, l := range rc.Lines {
		pol := po.Line(l.POLineID)
		if pol == nil {
			return nil, nil, domain.NotFoundf("línea de orden de compra %s", l.POLineID)
		}
		if pol.Status == entity.LineCancelled {
			return nil, nil, domain.InvalidStatef("línea de orden de compra %s cancelada", pol.ID)
		}
		if pol.ItemID != l.ItemID {
			return nil, nil, domain.Validationf("línea de recepción %s: el ítem no coincide con la orden", l.ID)
		}
		if !l.Quantity.IsPositive() {
			return nil, nil, domain.Validationf("línea de recepción %s: cantidad no positiva", l.ID)
		}
		if l.UnitCost.IsNegative() {
			return nil, nil, domain.Validationf("línea de recepción %s: costo negativo", l.ID)
		}
		perLine[pol.ID] = perLine[pol.ID].Add(l.Quantity)
		if perLine[pol.ID].GreaterThan(pol.Remaining()) {
			return nil, nil, &domain.OverReceiptError{POLineID: pol.ID, Requested: perLine[pol.ID], Remaining: pol.Remaining()}
		}
		demand.add(l.ItemID, rc.WarehouseID, l.Quantity)
	}

	// El costo promedio se calcula con el on-hand del ítem en todas sus bodegas: se bloquean
	// también esos pares, en el mismo orden global, antes de leerlo.
	locked, err := withItemPairs(ctx, repos, demand)
	if err != nil {
		return nil, nil, err
	}
	if err := lockPairs(ctx, repos, locked); err != nil {
		return nil, nil, err
	}
	items := make(map[string]*entity.Item)
	for _, id := range demand.itemIDs() {
		it, err := repos.Items().GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if it == nil || it.CompanyID != companyID {
			return nil, nil, domain.NotFoundf("ítem %s", id)
		}
		items[id] = it
	}

	now := uc.now()
	postingDate := rc.ReceiptDate
	if postingDate.IsZero() {
		postingDate = now
	}
	res := &ReceiptPosting{ReceiptID: rc.ID, PurchaseOrderID: po.ID, ItemCosts: map[string]decimal.Decimal{}}

	for _, l := range rc.Lines {
		item := items[l.ItemID]
		if item.UsesAverageCost() {
			// on-hand del ítem en todas las bodegas antes de anexar esta línea
			byWh, err := repos.Ledger().SumByItem(ctx, item.ID)
			if err != nil {
				return nil, nil, err
			}
			prev := decimal.Zero
			for _, q := range byWh {
				prev = prev.Add(q)
			}
			newCost := inventory.CostCalculator(prev, item.Cost, l.Quantity, l.UnitCost)
			if err := repos.Items().UpdateCost(ctx, item.ID, newCost); err != nil {
				return nil, nil, err
			}
			item.Cost = newCost
			res.ItemCosts[item.ID] = newCost
		}

		entry := &entity.StockLedgerEntry{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			ItemID:        l.ItemID,
			WarehouseID:   rc.WarehouseID,
			TxType:        entity.LedgerTxReceipt,
			ReferenceType: entity.ReferenceReceipt,
			ReferenceID:   rc.ID,
			Quantity:      l.Quantity,
			UnitCost:      l.UnitCost,
			PostingDate:   postingDate,
			CreatedAt:     now,
			CreatedBy:     userID,
		}
		if err := repos.Ledger().Append(ctx, entry); err != nil {
			return nil, nil, err
		}
		res.Entries = append(res.Entries, entry)

		pol := po.Line(l.POLineID)
		pol.QtyReceived = pol.QtyReceived.Add(l.Quantity)
		pol.Status = inventory.DeriveLineStatus(pol.Status, entity.LineReceived, pol.QtyOrdered, pol.QtyReceived)
		if err := repos.PurchaseOrders().UpdateLine(ctx, pol); err != nil {
			return nil, nil, err
		}
	}

	res.PurchaseOrderStatus = inventory.DerivePurchaseOrderStatus(po.Lines)
	if err := repos.PurchaseOrders().UpdateStatus(ctx, po.ID, res.PurchaseOrderStatus); err != nil {
		return nil, nil, err
	}

	if rc.Number == "" {
		if rc.Number, err = nextNumber(ctx, repos, companyID, entity.DocTypeReceipt); err != nil {
			return nil, nil, err
		}
	}
	rc.Status = entity.DocumentStatusPosted
	rc.PostedAt = &now
	rc.PostedBy = userID
	if err := repos.Receipts().MarkPosted(ctx, rc); err != nil {
		return nil, nil, err
	}
	res.Number = rc.Number
	return res, demand.itemIDs(), nil
}
