package audit

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// LogSink escribe cada evento de auditoría en el log estructurado.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink construye el sink. log nil = descarta.
func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{log: log.Named("audit")}
}

// Record registra el evento. Nunca falla.
func (s *LogSink) Record(_ context.Context, ev inventory.AuditEvent) error {
	s.log.Info().
		Str("action", ev.Action).
		Str("entity_type", ev.EntityType).
		Str("entity_id", ev.EntityID).
		Str("company_id", ev.CompanyID).
		Str("actor_id", ev.ActorID).
		Time("at", ev.At).
		Interface("payload", ev.Payload).
		Msg("auditoría")
	return nil
}

// MultiSink reparte el evento entre varios sinks; un fallo no impide los siguientes.
type MultiSink struct {
	sinks []inventory.AuditSink
}

// NewMultiSink ignora los sinks nil.
func NewMultiSink(sinks ...inventory.AuditSink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Record devuelve la unión de los errores de cada sink.
func (m *MultiSink) Record(ctx context.Context, ev inventory.AuditEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
