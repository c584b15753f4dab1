package postgres

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores de numeración por (alcance, tipo).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador con upsert; la fila queda bloqueada hasta el fin de la transacción,
// así que dos llamadas concurrentes nunca obtienen el mismo valor.
func (r *SequenceRepo) Next(ctx context.Context, scope, docType string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (scope, doc_type, last) VALUES ($1, $2, 1)
		ON CONFLICT (scope, doc_type) DO UPDATE SET last = document_sequences.last + 1
		RETURNING last`, scope, docType).Scan(&n)
	if err != nil {
		return 0, wrap("next document number", err)
	}
	return n, nil
}
