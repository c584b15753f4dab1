package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// DocumentEngines motores de contabilización expuestos por el DocumentHandler.
type DocumentEngines struct {
	Drafts      *inventory.DraftUseCase
	Shipments   *inventory.ShipmentPostingUseCase
	Receipts    *inventory.ReceiptPostingUseCase
	Transfers   *inventory.TransferPostingUseCase
	Adjustments *inventory.AdjustmentPostingUseCase
}

// DocumentHandler crea borradores y los contabiliza (protegido).
type DocumentHandler struct {
	e DocumentEngines
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(e DocumentEngines) *DocumentHandler {
	return &DocumentHandler{e: e}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// CreateShipment godoc
// @Summary      Crear despacho borrador
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateShipmentRequest  true  "Pedido y líneas (order_line_id, quantity)"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shipments [post]
func (h *DocumentHandler) CreateShipment(c *fiber.Ctx) error {
	var in dto.CreateShipmentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]inventory.ShipmentDraftLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.ShipmentDraftLine{OrderLineID: l.OrderLineID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	shp, err := h.e.Drafts.CreateShipmentDraft(c.UserContext(), inventory.ShipmentDraftInput{
		CompanyID:   GetCompanyID(c),
		OrderID:     in.OrderID,
		WarehouseID: in.WarehouseID,
		ShipDate:    timeOrZero(in.ShipDate),
		Lines:       lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toShipmentDocument(shp))
}

// PostShipment godoc
// @Summary      Contabilizar despacho
// @Description  Salidas del libro, cantidades y estados del pedido, reservas, factura borrador y backorders en una sola transacción.
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del despacho"
// @Success      200  {object}  dto.PostingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/post [post]
func (h *DocumentHandler) PostShipment(c *fiber.Ctx) error {
	p, err := h.e.Shipments.PostShipment(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toShipmentPosting(p))
}

// CreateReceipt godoc
// @Summary      Crear recepción borrador
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "Orden de compra y líneas (po_line_id, quantity, unit_cost)"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *DocumentHandler) CreateReceipt(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]inventory.ReceiptDraftLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.ReceiptDraftLine{POLineID: l.POLineID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	rc, err := h.e.Drafts.CreateReceiptDraft(c.UserContext(), inventory.ReceiptDraftInput{
		CompanyID:       GetCompanyID(c),
		PurchaseOrderID: in.PurchaseOrderID,
		WarehouseID:     in.WarehouseID,
		ReceiptDate:     timeOrZero(in.ReceiptDate),
		Lines:           lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReceiptDocument(rc))
}

// PostReceipt godoc
// @Summary      Contabilizar recepción
// @Description  Entradas del libro, recálculo del costo promedio y estado de la orden de compra.
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.PostingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/post [post]
func (h *DocumentHandler) PostReceipt(c *fiber.Ctx) error {
	p, err := h.e.Receipts.PostReceipt(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReceiptPosting(p))
}

// CreateTransfer godoc
// @Summary      Crear traslado borrador
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Bodegas origen/destino y líneas (item_id, quantity)"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *DocumentHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]inventory.TransferDraftLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.TransferDraftLine{ItemID: l.ItemID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	tr, err := h.e.Drafts.CreateTransferDraft(c.UserContext(), inventory.TransferDraftInput{
		CompanyID:         GetCompanyID(c),
		SourceWarehouseID: in.SourceWarehouseID,
		DestWarehouseID:   in.DestWarehouseID,
		TransferDate:      timeOrZero(in.TransferDate),
		Lines:             lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferDocument(tr))
}

// PostTransfer godoc
// @Summary      Contabilizar traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.PostingResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/post [post]
func (h *DocumentHandler) PostTransfer(c *fiber.Ctx) error {
	p, err := h.e.Transfers.PostTransfer(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PostingResponse{DocumentID: p.TransferID, Number: p.Number, Entries: toLedgerEntries(p.Entries)})
}

// CreateAdjustment godoc
// @Summary      Crear ajuste borrador por conteo físico
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "Bodega, motivo y líneas (item_id, qty_actual)"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *DocumentHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]inventory.AdjustmentDraftLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.AdjustmentDraftLine{ItemID: l.ItemID, QtyActual: l.QtyActual, UnitCost: l.UnitCost})
	}
	adj, err := h.e.Drafts.CreateAdjustmentDraft(c.UserContext(), inventory.AdjustmentDraftInput{
		CompanyID:      GetCompanyID(c),
		WarehouseID:    in.WarehouseID,
		Reason:         in.Reason,
		AdjustmentDate: timeOrZero(in.AdjustmentDate),
		Lines:          lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAdjustmentDocument(adj))
}

// PostAdjustment godoc
// @Summary      Contabilizar ajuste
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ajuste"
// @Success      200  {object}  dto.PostingResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id}/post [post]
func (h *DocumentHandler) PostAdjustment(c *fiber.Ctx) error {
	p, err := h.e.Adjustments.PostAdjustment(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PostingResponse{DocumentID: p.AdjustmentID, Number: p.Number, Entries: toLedgerEntries(p.Entries)})
}
