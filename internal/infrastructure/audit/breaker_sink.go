package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// ErrSinkUnavailable se devuelve mientras el circuito está abierto.
var ErrSinkUnavailable = errors.New("sink de auditoría no disponible")

// BreakerConfig umbrales del circuito.
type BreakerConfig struct {
	Name string
	// FailureThreshold fallos consecutivos que abren el circuito.
	FailureThreshold uint32
	// OpenTimeout tiempo en abierto antes de probar de nuevo (half-open).
	OpenTimeout time.Duration
	// HalfOpenRequests peticiones de prueba permitidas en half-open.
	HalfOpenRequests uint32
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.Name == "" {
		c.Name = "audit"
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenRequests == 0 {
		c.HalfOpenRequests = 1
	}
	return c
}

// BreakerSink protege un sink remoto con un circuit breaker: con el broker caído
// las contabilizaciones dejan de esperar el timeout de publicación.
type BreakerSink struct {
	next inventory.AuditSink
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerSink envuelve next.
func NewBreakerSink(next inventory.AuditSink, cfg BreakerConfig, log *logger.Logger) *BreakerSink {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("audit")
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuito de auditoría cambió de estado")
		},
	}
	return &BreakerSink{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Record delega en el sink envuelto salvo con el circuito abierto.
func (s *BreakerSink) Record(ctx context.Context, ev inventory.AuditEvent) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Record(ctx, ev)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrSinkUnavailable, s.cb.Name())
	}
	return err
}

// State estado actual del circuito (closed, half-open, open).
func (s *BreakerSink) State() string {
	return s.cb.State().String()
}
