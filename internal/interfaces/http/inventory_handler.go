package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// InventoryHandler consultas de disponibilidad, libro de stock, reposición y numeración (protegido).
type InventoryHandler struct {
	availability  *inventory.AvailabilityUseCase
	replenishment *inventory.ReplenishmentUseCase
	sequencer     *inventory.SequencerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(availability *inventory.AvailabilityUseCase, replenishment *inventory.ReplenishmentUseCase, sequencer *inventory.SequencerUseCase) *InventoryHandler {
	return &InventoryHandler{availability: availability, replenishment: replenishment, sequencer: sequencer}
}

// GetAvailability godoc
// @Summary      Disponibilidad de un ítem
// @Description  Con warehouse_id devuelve el par (ítem, bodega); sin él, el agregado con desglose por bodega.
//
//	cached=true lee la caché del tablero (puede estar desactualizada).
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       path   string  true   "ID del ítem"
// @Param        warehouse_id  query  string  false  "ID de la bodega"
// @Param        cached        query  bool    false  "Lectura de tablero"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/availability/{item_id} [get]
func (h *InventoryHandler) GetAvailability(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	itemID := c.Params("item_id")
	warehouseID := c.Query("warehouse_id")

	if c.QueryBool("cached", false) {
		a, err := h.availability.DashboardAvailability(c.UserContext(), companyID, itemID, warehouseID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toAvailability(a))
	}
	if warehouseID != "" {
		a, err := h.availability.Availability(c.UserContext(), companyID, itemID, warehouseID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toAvailability(a))
	}
	ia, err := h.availability.ItemAvailability(c.UserContext(), companyID, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemAvailability(ia))
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Validationf("%s debe ser RFC3339: %v", key, err)
	}
	return &t, nil
}

// ListLedger godoc
// @Summary      Movimientos del libro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  false  "Filtrar por ítem"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *InventoryHandler) ListLedger(c *fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return writeError(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return writeError(c, err)
	}
	limit, offset := page(c)
	entries, err := h.availability.Ledger(c.UserContext(), entity.LedgerFilter{
		CompanyID:   GetCompanyID(c),
		ItemID:      c.Query("item_id"),
		WarehouseID: c.Query("warehouse_id"),
		From:        from,
		To:          to,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LedgerListResponse{Items: toLedgerEntries(entries), Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

// OnHandAt godoc
// @Summary      Existencia de (ítem, bodega) a una fecha
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  true  "ID del ítem"
// @Param        warehouse_id  query  string  true  "ID de la bodega"
// @Param        at            query  string  true  "Fecha de corte (RFC3339, inclusive)"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/on-hand [get]
func (h *InventoryHandler) OnHandAt(c *fiber.Ctx) error {
	at, err := queryTime(c, "at")
	if err != nil {
		return writeError(c, err)
	}
	if at == nil {
		return writeError(c, domain.Validationf("at es requerido"))
	}
	itemID, warehouseID := c.Query("item_id"), c.Query("warehouse_id")
	qty, err := h.availability.OnHandAt(c.UserContext(), GetCompanyID(c), itemID, warehouseID, *at)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{ItemID: itemID, WarehouseID: warehouseID, OnHand: qty})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Ítems activos en o bajo su punto de reorden con la cantidad sugerida, ordenados por déficit.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega. Vacío = stock global."
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), GetCompanyID(c), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// NextDocumentNumber godoc
// @Summary      Emitir el siguiente número de documento
// @Description  El ámbito siempre queda dentro de la empresa del token.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        doc_type  path  string               true   "Tipo de documento (2 a 8 letras)"
// @Param        body      body  dto.SequenceRequest  false  "Ámbito opcional"
// @Success      201  {object}  dto.SequenceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sequences/{doc_type}/next [post]
func (h *InventoryHandler) NextDocumentNumber(c *fiber.Ctx) error {
	var in dto.SequenceRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return writeError(c, err)
		}
	}
	scope := GetCompanyID(c)
	if in.Scope != "" {
		scope += "/" + in.Scope
	}
	number, err := h.sequencer.NextDocumentNumber(c.UserContext(), scope, c.Params("doc_type"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SequenceResponse{Scope: scope, DocType: strings.ToUpper(c.Params("doc_type")), Number: number})
}
