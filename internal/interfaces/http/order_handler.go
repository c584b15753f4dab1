package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
)

// OrderHandler pedidos de venta, órdenes de compra y reservas (protegido).
type OrderHandler struct {
	orders       *usecase.OrderUseCase
	reservations *inventory.ReservationUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(orders *usecase.OrderUseCase, reservations *inventory.ReservationUseCase) *OrderHandler {
	return &OrderHandler{orders: orders, reservations: reservations}
}

// CreateSalesOrder godoc
// @Summary      Registrar pedido de venta (borrador)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalesOrderRequest  true  "Pedido"
// @Success      201   {object}  dto.SalesOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales-orders [post]
func (h *OrderHandler) CreateSalesOrder(c *fiber.Ctx) error {
	var in dto.CreateSalesOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.orders.CreateSalesOrder(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetSalesOrder godoc
// @Summary      Obtener pedido de venta
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id} [get]
func (h *OrderHandler) GetSalesOrder(c *fiber.Ctx) error {
	out, err := h.orders.GetSalesOrder(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
	}
	return c.JSON(out)
}

// ReserveStock godoc
// @Summary      Reservar stock para un pedido
// @Description  Verifica disponibilidad por (ítem, bodega); si un par no alcanza no se crea ninguna reserva.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del pedido"
// @Param        body  body  dto.ReserveStockRequest  true  "Líneas a reservar"
// @Success      201   {array}   dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reservations [post]
func (h *OrderHandler) ReserveStock(c *fiber.Ctx) error {
	var in dto.ReserveStockRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]inventory.ReserveLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.ReserveLine{
			OrderLineID: l.OrderLineID,
			ItemID:      l.ItemID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
		})
	}
	out, err := h.reservations.ReserveStock(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservations(out))
}

// ReleaseReservations godoc
// @Summary      Liberar las reservas activas de un pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.ReleaseReservationsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reservations [delete]
func (h *OrderHandler) ReleaseReservations(c *fiber.Ctx) error {
	orderID := c.Params("id")
	n, err := h.reservations.ReleaseReservations(c.UserContext(), GetCompanyID(c), GetUserID(c), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReleaseReservationsResponse{OrderID: orderID, Released: n})
}

// CancelSalesOrder godoc
// @Summary      Cancelar pedido de venta
// @Description  Solo pedidos sin despachos; libera sus reservas activas.
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del pedido"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) CancelSalesOrder(c *fiber.Ctx) error {
	if err := h.reservations.CancelSalesOrder(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreatePurchaseOrder godoc
// @Summary      Registrar orden de compra (borrador)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "Orden de compra"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *OrderHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.orders.CreatePurchaseOrder(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ConfirmPurchaseOrder godoc
// @Summary      Confirmar orden de compra
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/confirm [post]
func (h *OrderHandler) ConfirmPurchaseOrder(c *fiber.Ctx) error {
	out, err := h.orders.ConfirmPurchaseOrder(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetPurchaseOrder godoc
// @Summary      Obtener orden de compra
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *OrderHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	out, err := h.orders.GetPurchaseOrder(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden de compra no encontrada"})
	}
	return c.JSON(out)
}
