// Package billing expone las facturas borrador emitidas al contabilizar despachos.
package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// InvoiceUseCase consulta facturas y genera su PDF.
type InvoiceUseCase struct {
	tx        inventory.TxRunner
	generator InvoicePDFGenerator
}

// NewInvoiceUseCase construye el caso de uso; generator puede ser nil si no se sirven PDF.
func NewInvoiceUseCase(tx inventory.TxRunner, generator InvoicePDFGenerator) *InvoiceUseCase {
	return &InvoiceUseCase{tx: tx, generator: generator}
}

// GetInvoice carga la factura con sus líneas. Otra empresa = no encontrada.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, companyID, invoiceID string) (*InvoiceDocument, error) {
	var doc *InvoiceDocument
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		inv, err := repos.Invoices().GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil || inv.CompanyID != companyID {
			return domain.NotFoundf("factura %s", invoiceID)
		}
		doc = &InvoiceDocument{Invoice: inv}

		if inv.ShipmentID != "" {
			shp, err := repos.Shipments().GetByID(ctx, inv.ShipmentID)
			if err != nil {
				return err
			}
			if shp != nil {
				doc.ShipmentNumber = shp.Number
				wh, err := repos.Warehouses().GetByID(ctx, shp.WarehouseID)
				if err != nil {
					return err
				}
				if wh != nil {
					doc.WarehouseCode = wh.Code
				}
			}
		}

		details, err := repos.Invoices().GetDetailsByInvoiceID(ctx, invoiceID)
		if err != nil {
			return err
		}
		doc.Lines = make([]InvoiceLine, 0, len(details))
		for _, d := range details {
			line := InvoiceLine{InvoiceDetail: *d, ItemName: "Ítem " + d.ItemID}
			item, err := repos.Items().GetByID(ctx, d.ItemID)
			if err != nil {
				return err
			}
			if item != nil {
				line.ItemCode, line.ItemName, line.Unit = item.Code, item.Name, item.UnitMeasure
			}
			doc.Lines = append(doc.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DownloadInvoicePDF devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *InvoiceUseCase) DownloadInvoicePDF(ctx context.Context, companyID, invoiceID string) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", domain.InvalidStatef("generación de PDF no configurada")
	}
	doc, err := uc.GetInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.generator.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", doc.Invoice.Number), nil
}
