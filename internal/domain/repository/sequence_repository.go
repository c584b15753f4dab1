package repository

import "context"

// SequenceRepository contador atómico por (alcance, tipo de documento).
// Next incrementa y devuelve el valor con bloqueo de fila; nunca entrega dos veces el mismo número.
type SequenceRepository interface {
	Next(ctx context.Context, scope, docType string) (int64, error)
}
