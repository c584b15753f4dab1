package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback completo; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// TaxResult impuesto calculado para un subtotal.
type TaxResult struct {
	Amount decimal.Decimal
	Rate   decimal.Decimal
}

// TaxCalculator colaborador externo de impuestos. Se invoca dentro de la transacción del despacho.
type TaxCalculator interface {
	ComputeTax(ctx context.Context, customerID string, subtotal decimal.Decimal) (TaxResult, error)
}

// AuditEvent registro de auditoría emitido tras el commit.
type AuditEvent struct {
	Action     string
	EntityType string
	EntityID   string
	CompanyID  string
	ActorID    string
	At         time.Time
	Payload    map[string]any
}

// AuditSink destino de auditoría. Best-effort: un error se registra en el log y nunca revierte nada.
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent) error
}

// AvailabilityCache caché de disponibilidad para lecturas de tablero (tolera datos viejos).
// warehouseID vacío representa el agregado del ítem. Get devuelve (nil, nil) si no hay entrada.
type AvailabilityCache interface {
	Get(ctx context.Context, companyID, itemID, warehouseID string) (*entity.Availability, error)
	Set(ctx context.Context, companyID string, a entity.Availability) error
	InvalidateItems(ctx context.Context, companyID string, itemIDs []string) error
}

// PostingObserver recibe la duración y el resultado de cada operación del núcleo.
type PostingObserver interface {
	ObservePosting(operation, outcome string, elapsed time.Duration)
}
