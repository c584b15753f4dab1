package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/inventario-ledger/internal/application/inventory")

// Collaborators dependencias opcionales compartidas por los casos de uso. Los campos nil
// se reemplazan por implementaciones que no hacen nada.
type Collaborators struct {
	Audit   AuditSink
	Cache   AvailabilityCache
	Metrics PostingObserver
	Logger  *logger.Logger
	Now     func() time.Time
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, AuditEvent) error { return nil }

type nopObserver struct{}

func (nopObserver) ObservePosting(string, string, time.Duration) {}

// engine base común: transacción + span + métrica + log, y efectos posteriores al commit.
type engine struct {
	tx      TxRunner
	audit   AuditSink
	cache   AvailabilityCache
	metrics PostingObserver
	log     *logger.Logger
	now     func() time.Time
}

func newEngine(tx TxRunner, c Collaborators, component string) engine {
	e := engine{tx: tx, audit: c.Audit, cache: c.Cache, metrics: c.Metrics, log: c.Logger, now: c.Now}
	if e.audit == nil {
		e.audit = nopAudit{}
	}
	if e.metrics == nil {
		e.metrics = nopObserver{}
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	e.log = e.log.Named(component)
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	return e
}

// Outcome clasifica un error del núcleo en una etiqueta estable para métricas y logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrOverReceipt):
		return "over_receipt"
	case errors.Is(err, domain.ErrAlreadyPosted):
		return "already_posted"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	default:
		return "error"
	}
}

// execute corre fn en una sola transacción. Cualquier error de fn revierte todo.
func (e engine) execute(ctx context.Context, op string, attrs []attribute.KeyValue, fn func(ctx context.Context, repos repository.Repos) error) error {
	ctx, span := tracer.Start(ctx, "inventory."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := e.tx.Run(ctx, func(repos repository.Repos) error {
		return fn(ctx, repos)
	})
	outcome := Outcome(err)
	e.metrics.ObservePosting(op, outcome, time.Since(start))
	span.SetAttributes(attribute.String("outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		ev := e.log.Warn()
		if outcome == "storage" || outcome == "error" {
			ev = e.log.Error()
		}
		ev.Err(err).Str("op", op).Str("outcome", outcome).Msg("operación revertida")
		return err
	}
	return nil
}

// afterCommit audita e invalida la caché de los ítems tocados. Nunca falla.
func (e engine) afterCommit(ctx context.Context, ev AuditEvent, itemIDs []string) {
	if ev.At.IsZero() {
		ev.At = e.now()
	}
	if err := e.audit.Record(ctx, ev); err != nil {
		e.log.Warn().Err(err).Str("action", ev.Action).Str("entity_id", ev.EntityID).Msg("auditoría no registrada")
	}
	if e.cache != nil && len(itemIDs) > 0 {
		if err := e.cache.InvalidateItems(ctx, ev.CompanyID, itemIDs); err != nil {
			e.log.Warn().Err(err).Strs("items", itemIDs).Msg("no se pudo invalidar caché de disponibilidad")
		}
	}
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
