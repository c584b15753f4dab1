package billing

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// InvoiceLine detalle de factura enriquecido con los datos del ítem.
type InvoiceLine struct {
	entity.InvoiceDetail
	ItemCode string
	ItemName string
	Unit     string
}

// InvoiceDocument factura completa lista para presentar.
type InvoiceDocument struct {
	Invoice        *entity.Invoice
	ShipmentNumber string
	WarehouseCode  string
	Lines          []InvoiceLine
}

// InvoicePDFGenerator genera la representación gráfica de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
}
