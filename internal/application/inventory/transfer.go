package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TransferPosting resultado de contabilizar un traslado.
type TransferPosting struct {
	TransferID string
	Number     string
	Entries    []*entity.StockLedgerEntry
}

// TransferPostingUseCase motor de traslados entre bodegas. Nunca toca el costo de los ítems.
type TransferPostingUseCase struct {
	engine
}

// NewTransferPostingUseCase construye el motor.
func NewTransferPostingUseCase(txRunner TxRunner, c Collaborators) *TransferPostingUseCase {
	return &TransferPostingUseCase{engine: newEngine(txRunner, c, "transfers")}
}

// PostTransfer anexa por cada línea una salida en origen y una entrada en destino con la misma
// referencia, costo y fecha, tras verificar disponibilidad en origen.
func (uc *TransferPostingUseCase) PostTransfer(ctx context.Context, companyID, userID, transferID string) (*TransferPosting, error) {
	if transferID == "" {
		return nil, domain.Validationf("traslado obligatorio")
	}
	var res *TransferPosting
	var touched []string
	err := uc.execute(ctx, "post_transfer",
		[]attribute.KeyValue{attribute.String("transfer_id", transferID)},
		func(ctx context.Context, repos repository.Repos) error {
			var err error
			res, touched, err = uc.post(ctx, repos, companyID, userID, transferID)
			return err
		})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("transfer_id", res.TransferID).Str("number", res.Number).Msg("traslado contabilizado")
	uc.afterCommit(ctx, AuditEvent{
		Action:     "transfer.posted",
		EntityType: "transfer",
		EntityID:   res.TransferID,
		CompanyID:  companyID,
		ActorID:    userID,
		Payload:    map[string]any{"number": res.Number, "entries": len(res.Entries)},
	}, touched)
	return res, nil
}

func (uc *TransferPostingUseCase) post(ctx context.Context, repos repository.Repos, companyID, userID, transferID string) (*TransferPosting, []string, error) {
	tr, err := repos.Transfers().GetForUpdate(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}
	if tr == nil || tr.CompanyID != companyID {
		return nil, nil, domain.NotFoundf("traslado %s", transferID)
	}
	if tr.Status != entity.DocumentStatusDraft {
		return nil, nil, fmt.Errorf("%w: traslado %s", domain.ErrAlreadyPosted, tr.ID)
	}
	if tr.SourceWarehouseID == tr.DestWarehouseID {
		return nil, nil, domain.Validationf("traslado %s: bodega origen y destino iguales", tr.ID)
	}
	if len(tr.Lines) == 0 {
		return nil, nil, domain.Validationf("traslado %s sin líneas", tr.ID)
	}
	if _, err := requireWarehouse(ctx, repos, companyID, tr.SourceWarehouseID); err != nil {
		return nil, nil, err
	}
	if _, err := requireWarehouse(ctx, repos, companyID, tr.DestWarehouseID); err != nil {
		return nil, nil, err
	}

	out := pairDemand{}
	locks := make([]stockPair, 0, 2*len(tr.Lines))
	for _, l := range tr.Lines {
		if !l.Quantity.IsPositive() {
			return nil, nil, domain.Validationf("línea de traslado %s: cantidad no positiva", l.ID)
		}
		if _, err := requireItem(ctx, repos, companyID, l.ItemID); err != nil {
			return nil, nil, err
		}
		out.add(l.ItemID, tr.SourceWarehouseID, l.Quantity)
		locks = append(locks, stockPair{l.ItemID, tr.SourceWarehouseID}, stockPair{l.ItemID, tr.DestWarehouseID})
	}

	if err := lockPairs(ctx, repos, locks); err != nil {
		return nil, nil, err
	}
	for _, p := range out.pairs() {
		a, err := availabilityOf(ctx, repos, p.ItemID, p.WarehouseID)
		if err != nil {
			return nil, nil, err
		}
		if out[p].GreaterThan(a.Available) {
			return nil, nil, domain.NewStockError(p.ItemID, p.WarehouseID, out[p], a.Available)
		}
	}

	now := uc.now()
	postingDate := tr.TransferDate
	if postingDate.IsZero() {
		postingDate = now
	}
	res := &TransferPosting{TransferID: tr.ID}
	for _, l := range tr.Lines {
		for _, side := range []struct {
			txType, warehouseID string
			neg                 bool
		}{
			{entity.LedgerTxTransferOut, tr.SourceWarehouseID, true},
			{entity.LedgerTxTransferIn, tr.DestWarehouseID, false},
		} {
			qty := l.Quantity
			if side.neg {
				qty = qty.Neg()
			}
			entry := &entity.StockLedgerEntry{
				ID:            uuid.New().String(),
				CompanyID:     companyID,
				ItemID:        l.ItemID,
				WarehouseID:   side.warehouseID,
				TxType:        side.txType,
				ReferenceType: entity.ReferenceTransfer,
				ReferenceID:   tr.ID,
				Quantity:      qty,
				UnitCost:      l.UnitCost,
				PostingDate:   postingDate,
				CreatedAt:     now,
				CreatedBy:     userID,
			}
			if err := repos.Ledger().Append(ctx, entry); err != nil {
				return nil, nil, err
			}
			res.Entries = append(res.Entries, entry)
		}
	}

	if tr.Number == "" {
		if tr.Number, err = nextNumber(ctx, repos, companyID, entity.DocTypeTransfer); err != nil {
			return nil, nil, err
		}
	}
	tr.Status = entity.DocumentStatusPosted
	tr.PostedAt = &now
	tr.PostedBy = userID
	if err := repos.Transfers().MarkPosted(ctx, tr); err != nil {
		return nil, nil, err
	}
	res.Number = tr.Number
	return res, out.itemIDs(), nil
}
