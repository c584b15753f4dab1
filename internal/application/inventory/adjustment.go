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

// AdjustmentPosting resultado de contabilizar un ajuste.
type AdjustmentPosting struct {
	AdjustmentID string
	Number       string
	Entries      []*entity.StockLedgerEntry
}

// AdjustmentPostingUseCase motor de ajustes por conteo físico. No verifica disponibilidad.
type AdjustmentPostingUseCase struct {
	engine
}

// NewAdjustmentPostingUseCase construye el motor.
func NewAdjustmentPostingUseCase(txRunner TxRunner, c Collaborators) *AdjustmentPostingUseCase {
	return &AdjustmentPostingUseCase{engine: newEngine(txRunner, c, "adjustments")}
}

// PostAdjustment anexa un movimiento por cada línea con delta (contado − sistema) distinto de cero.
func (uc *AdjustmentPostingUseCase) PostAdjustment(ctx context.Context, companyID, userID, adjustmentID string) (*AdjustmentPosting, error) {
	if adjustmentID == "" {
		return nil, domain.Validationf("ajuste obligatorio")
	}
	var res *AdjustmentPosting
	var touched []string
	err := uc.execute(ctx, "post_adjustment",
		[]attribute.KeyValue{attribute.String("adjustment_id", adjustmentID)},
		func(ctx context.Context, repos repository.Repos) error {
			var err error
			res, touched, err = uc.post(ctx, repos, companyID, userID, adjustmentID)
			return err
		})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("adjustment_id", res.AdjustmentID).Str("number", res.Number).
		Int("entries", len(res.Entries)).Msg("ajuste contabilizado")
	uc.afterCommit(ctx, AuditEvent{
		Action:     "adjustment.posted",
		EntityType: "adjustment",
		EntityID:   res.AdjustmentID,
		CompanyID:  companyID,
		ActorID:    userID,
		Payload:    map[string]any{"number": res.Number, "entries": len(res.Entries)},
	}, touched)
	return res, nil
}

func (uc *AdjustmentPostingUseCase) post(ctx context.Context, repos repository.Repos, companyID, userID, adjustmentID string) (*AdjustmentPosting, []string, error) {
	adj, err := repos.Adjustments().GetForUpdate(ctx, adjustmentID)
	if err != nil {
		return nil, nil, err
	}
	if adj == nil || adj.CompanyID != companyID {
		return nil, nil, domain.NotFoundf("ajuste %s", adjustmentID)
	}
	if adj.Status != entity.DocumentStatusDraft {
		return nil, nil, fmt.Errorf("%w: ajuste %s", domain.ErrAlreadyPosted, adj.ID)
	}
	if _, err := requireWarehouse(ctx, repos, companyID, adj.WarehouseID); err != nil {
		return nil, nil, err
	}

	pairs := pairDemand{}
	items := make(map[string]*entity.Item)
	for _, l := range adj.Lines {
		it, err := requireItem(ctx, repos, companyID, l.ItemID)
		if err != nil {
			return nil, nil, err
		}
		items[it.ID] = it
		pairs.add(l.ItemID, adj.WarehouseID, l.Delta())
	}
	if err := lockPairs(ctx, repos, pairs.pairs()); err != nil {
		return nil, nil, err
	}

	now := uc.now()
	postingDate := adj.AdjustmentDate
	if postingDate.IsZero() {
		postingDate = now
	}
	res := &AdjustmentPosting{AdjustmentID: adj.ID}
	var touched []string
	for _, l := range adj.Lines {
		delta := l.Delta()
		if delta.IsZero() {
			continue
		}
		cost := items[l.ItemID].Cost
		if l.UnitCost != nil {
			cost = *l.UnitCost
		}
		entry := &entity.StockLedgerEntry{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			ItemID:        l.ItemID,
			WarehouseID:   adj.WarehouseID,
			TxType:        entity.LedgerTxAdjustment,
			ReferenceType: entity.ReferenceAdjustment,
			ReferenceID:   adj.ID,
			Quantity:      delta,
			UnitCost:      cost,
			PostingDate:   postingDate,
			CreatedAt:     now,
			CreatedBy:     userID,
		}
		if err := repos.Ledger().Append(ctx, entry); err != nil {
			return nil, nil, err
		}
		res.Entries = append(res.Entries, entry)
		touched = append(touched, l.ItemID)
	}

	if adj.Number == "" {
		if adj.Number, err = nextNumber(ctx, repos, companyID, entity.DocTypeAdjustment); err != nil {
			return nil, nil, err
		}
	}
	adj.Status = entity.DocumentStatusPosted
	adj.PostedAt = &now
	adj.PostedBy = userID
	if err := repos.Adjustments().MarkPosted(ctx, adj); err != nil {
		return nil, nil, err
	}
	res.Number = adj.Number
	return res, uniqueSorted(touched), nil
}
