package inventory

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// FormatDocumentNumber da formato <TIPO>-000001.
func FormatDocumentNumber(docType string, n int64) string {
	return fmt.Sprintf("%s-%06d", docType, n)
}

func validDocType(docType string) bool {
	if len(docType) < 2 || len(docType) > 8 {
		return false
	}
	for _, r := range docType {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// nextNumber toma el siguiente número dentro de la transacción del caller:
// si la contabilización se revierte, el número no se consume.
func nextNumber(ctx context.Context, repos repository.Repos, scope, docType string) (string, error) {
	n, err := repos.Sequences().Next(ctx, scope, docType)
	if err != nil {
		return "", err
	}
	return FormatDocumentNumber(docType, n), nil
}

// SequencerUseCase expone la numeración de documentos a colaboradores externos.
type SequencerUseCase struct {
	engine
}

// NewSequencerUseCase construye el caso de uso.
func NewSequencerUseCase(txRunner TxRunner, c Collaborators) *SequencerUseCase {
	return &SequencerUseCase{engine: newEngine(txRunner, c, "sequencer")}
}

// NextDocumentNumber incrementa atómicamente el contador de (scope, docType) y devuelve el número formateado.
func (uc *SequencerUseCase) NextDocumentNumber(ctx context.Context, scope, docType string) (string, error) {
	docType = strings.ToUpper(strings.TrimSpace(docType))
	if strings.TrimSpace(scope) == "" {
		return "", domain.Validationf("alcance vacío")
	}
	if !validDocType(docType) {
		return "", domain.Validationf("tipo de documento inválido %q", docType)
	}

	var number string
	err := uc.execute(ctx, "next_document_number",
		[]attribute.KeyValue{attribute.String("doc_type", docType)},
		func(ctx context.Context, repos repository.Repos) error {
			var err error
			number, err = nextNumber(ctx, repos, scope, docType)
			return err
		})
	if err != nil {
		return "", err
	}
	return number, nil
}
