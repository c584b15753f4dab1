package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Los documentos borrador comparten forma: Create (cabecera + líneas), GetForUpdate
// (bloquea la cabecera) y MarkPosted (número, estado posted, fecha y actor).

// ShipmentRepository puerto de despachos.
type ShipmentRepository interface {
	Create(ctx context.Context, s *entity.Shipment) error
	GetByID(ctx context.Context, id string) (*entity.Shipment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error)
	MarkPosted(ctx context.Context, s *entity.Shipment) error
}

// ReceiptRepository puerto de recepciones.
type ReceiptRepository interface {
	Create(ctx context.Context, r *entity.Receipt) error
	GetByID(ctx context.Context, id string) (*entity.Receipt, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error)
	MarkPosted(ctx context.Context, r *entity.Receipt) error
}

// TransferRepository puerto de traslados.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	MarkPosted(ctx context.Context, t *entity.Transfer) error
}

// AdjustmentRepository puerto de ajustes.
type AdjustmentRepository interface {
	Create(ctx context.Context, a *entity.Adjustment) error
	GetByID(ctx context.Context, id string) (*entity.Adjustment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Adjustment, error)
	MarkPosted(ctx context.Context, a *entity.Adjustment) error
}
