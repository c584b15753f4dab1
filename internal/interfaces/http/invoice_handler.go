package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/billing"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

// InvoiceHandler expone las facturas borrador emitidas por los despachos.
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// GetInvoice godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	doc, err := h.uc.GetInvoice(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toInvoiceResponse(doc))
}

// DownloadPDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.DownloadInvoicePDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

func toInvoiceResponse(doc *billing.InvoiceDocument) dto.InvoiceResponse {
	inv := doc.Invoice
	out := dto.InvoiceResponse{
		InvoiceDraftResponse: dto.InvoiceDraftResponse{
			ID:         inv.ID,
			Number:     inv.Number,
			NetTotal:   inv.NetTotal,
			TaxRate:    inv.TaxRate,
			TaxTotal:   inv.TaxTotal,
			GrandTotal: inv.GrandTotal,
		},
		CustomerID:     inv.CustomerID,
		OrderID:        inv.OrderID,
		ShipmentID:     inv.ShipmentID,
		ShipmentNumber: doc.ShipmentNumber,
		Date:           inv.Date,
		Status:         inv.Status,
		Lines:          make([]dto.InvoiceLineResponse, 0, len(doc.Lines)),
	}
	for _, l := range doc.Lines {
		out.Lines = append(out.Lines, dto.InvoiceLineResponse{
			OrderLineID: l.OrderLineID,
			ItemID:      l.ItemID,
			ItemCode:    l.ItemCode,
			ItemName:    l.ItemName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Subtotal:    l.Subtotal,
		})
	}
	return out
}
