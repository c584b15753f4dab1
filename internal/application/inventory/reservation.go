package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ReserveLine pedido de reserva. OrderLineID es opcional; WarehouseID vacío = bodega del pedido.
type ReserveLine struct {
	OrderLineID string
	ItemID      string
	WarehouseID string
	Quantity    decimal.Decimal
}

// ReservationUseCase retiene stock contra pedidos de venta.
type ReservationUseCase struct {
	engine
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(txRunner TxRunner, c Collaborators) *ReservationUseCase {
	return &ReservationUseCase{engine: newEngine(txRunner, c, "reservations")}
}

// ReserveStock crea reservas activas para el pedido. Verifica disponibilidad por par (ítem, bodega)
// con el ancla bloqueada; si un par no alcanza falla todo con InsufficientStock.
// Un pedido en borrador pasa a confirmado.
func (uc *ReservationUseCase) ReserveStock(ctx context.Context, companyID, userID, orderID string, lines []ReserveLine) ([]*entity.Reservation, error) {
	if orderID == "" {
		return nil, domain.Validationf("pedido obligatorio")
	}
	if len(lines) == 0 {
		return nil, domain.Validationf("la reserva no tiene líneas")
	}
	for i, l := range lines {
		if l.ItemID == "" {
			return nil, domain.Validationf("línea %d: ítem obligatorio", i+1)
		}
		if !l.Quantity.IsPositive() {
			return nil, domain.Validationf("línea %d: la cantidad debe ser mayor que cero", i+1)
		}
	}

	var created []*entity.Reservation
	var demand pairDemand
	err := uc.execute(ctx, "reserve_stock",
		[]attribute.KeyValue{attribute.String("order_id", orderID)},
		func(ctx context.Context, repos repository.Repos) error {
			created = nil
			order, err := repos.SalesOrders().GetForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if order == nil || order.CompanyID != companyID {
				return domain.NotFoundf("pedido %s", orderID)
			}
			switch order.Status {
			case entity.SalesOrderCancelled, entity.SalesOrderFullyShipped:
				return domain.InvalidStatef("pedido %s en estado %s", order.ID, order.Status)
			}

			active, err := repos.Reservations().ListActiveByOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			holds := newOrderHolds(active)

			demand = pairDemand{}
			resolved := make([]ReserveLine, len(lines))
			for i, l := range lines {
				if l.WarehouseID == "" {
					l.WarehouseID = order.WarehouseID
				}
				if l.OrderLineID != "" {
					ol := order.Line(l.OrderLineID)
					if ol == nil {
						return domain.NotFoundf("línea de pedido %s", l.OrderLineID)
					}
					if ol.ItemID != l.ItemID {
						return domain.Validationf("línea %s: el ítem no coincide con el pedido", l.OrderLineID)
					}
					if ol.Status == entity.LineCancelled || ol.Status == entity.LineFulfilled {
						return domain.InvalidStatef("línea de pedido %s en estado %s", ol.ID, ol.Status)
					}
				}
				if err := holds.claim(order.ID, l); err != nil {
					return err
				}
				resolved[i] = l
				demand.add(l.ItemID, l.WarehouseID, l.Quantity)
			}
			if err := holds.withinOrder(order); err != nil {
				return err
			}

			for _, p := range demand.pairs() {
				if _, err := requireItem(ctx, repos, companyID, p.ItemID); err != nil {
					return err
				}
				if _, err := requireWarehouse(ctx, repos, companyID, p.WarehouseID); err != nil {
					return err
				}
			}
			if err := lockPairs(ctx, repos, demand.pairs()); err != nil {
				return err
			}
			for _, p := range demand.pairs() {
				a, err := availabilityOf(ctx, repos, p.ItemID, p.WarehouseID)
				if err != nil {
					return err
				}
				if a.Available.LessThan(demand[p]) {
					return domain.NewStockError(p.ItemID, p.WarehouseID, demand[p], a.Available)
				}
			}

			now := uc.now()
			for _, l := range resolved {
				r := &entity.Reservation{
					ID:          uuid.New().String(),
					CompanyID:   companyID,
					ItemID:      l.ItemID,
					WarehouseID: l.WarehouseID,
					OrderID:     order.ID,
					OrderLineID: l.OrderLineID,
					Quantity:    l.Quantity,
					Status:      entity.ReservationActive,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := repos.Reservations().Create(ctx, r); err != nil {
					return err
				}
				created = append(created, r)
			}

			if order.Status == entity.SalesOrderDraft {
				return repos.SalesOrders().UpdateStatus(ctx, order.ID, entity.SalesOrderConfirmed)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("order_id", orderID).Int("reservations", len(created)).Msg("stock reservado")
	uc.afterCommit(ctx, AuditEvent{
		Action:     "reservation.created",
		EntityType: "sales_order",
		EntityID:   orderID,
		CompanyID:  companyID,
		ActorID:    userID,
		Payload:    map[string]any{"reservations": len(created)},
	}, demand.itemIDs())
	return created, nil
}

// ReleaseReservations cancela todas las reservas activas del pedido y devuelve cuántas liberó.
func (uc *ReservationUseCase) ReleaseReservations(ctx context.Context, companyID, userID, orderID string) (int, error) {
	if orderID == "" {
		return 0, domain.Validationf("pedido obligatorio")
	}
	var released []string
	err := uc.execute(ctx, "release_reservations",
		[]attribute.KeyValue{attribute.String("order_id", orderID)},
		func(ctx context.Context, repos repository.Repos) error {
			released = nil
			order, err := repos.SalesOrders().GetForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if order == nil || order.CompanyID != companyID {
				return domain.NotFoundf("pedido %s", orderID)
			}
			items, err := cancelActive(ctx, repos, order.ID)
			released = items
			return err
		})
	if err != nil {
		return 0, err
	}

	uc.afterCommit(ctx, AuditEvent{
		Action:     "reservation.released",
		EntityType: "sales_order",
		EntityID:   orderID,
		CompanyID:  companyID,
		ActorID:    userID,
		Payload:    map[string]any{"released": len(released)},
	}, released)
	return len(released), nil
}

// cancelActive cancela las reservas activas del pedido; devuelve el ítem de cada una.
func cancelActive(ctx context.Context, repos repository.Repos, orderID string) ([]string, error) {
	active, err := repos.Reservations().ListActiveByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items := make([]string, 0, len(active))
	for _, r := range active {
		if err := repos.Reservations().UpdateStatus(ctx, r.ID, entity.ReservationCancelled); err != nil {
			return nil, err
		}
		items = append(items, r.ItemID)
	}
	return items, nil
}

// consumeReservations aplica qty despachada a las reservas activas del pedido para el par,
// primero las de la misma línea y luego el resto, en orden de creación. Una reserva cubierta
// por completo pasa a fulfilled; una cubierta en parte se reduce y se registra la porción
// consumida como reserva fulfilled. active se actualiza en sitio para las llamadas siguientes.
func consumeReservations(ctx context.Context, repos repository.Repos, active []*entity.Reservation, orderLineID string, p stockPair, qty decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	consumed := decimal.Zero
	for pass := 0; pass < 2 && qty.IsPositive(); pass++ {
		for _, r := range active {
			if !qty.IsPositive() {
				break
			}
			if r.Status != entity.ReservationActive || r.ItemID != p.ItemID || r.WarehouseID != p.WarehouseID {
				continue
			}
			sameLine := orderLineID != "" && r.OrderLineID == orderLineID
			if (pass == 0) != sameLine {
				continue
			}

			take := decimal.Min(r.Quantity, qty)
			if take.Equal(r.Quantity) {
				if err := repos.Reservations().UpdateStatus(ctx, r.ID, entity.ReservationFulfilled); err != nil {
					return consumed, err
				}
				r.Status = entity.ReservationFulfilled
			} else {
				rest := r.Quantity.Sub(take)
				if err := repos.Reservations().UpdateQuantity(ctx, r.ID, rest); err != nil {
					return consumed, err
				}
				r.Quantity = rest
				part := &entity.Reservation{
					ID:          uuid.New().String(),
					CompanyID:   r.CompanyID,
					ItemID:      r.ItemID,
					WarehouseID: r.WarehouseID,
					OrderID:     r.OrderID,
					OrderLineID: r.OrderLineID,
					Quantity:    take,
					Status:      entity.ReservationFulfilled,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := repos.Reservations().Create(ctx, part); err != nil {
					return consumed, err
				}
			}
			qty = qty.Sub(take)
			consumed = consumed.Add(take)
		}
	}
	return consumed, nil
}

// orderHolds resume las reservas activas de un pedido más las pedidas en la llamada en curso.
type orderHolds struct {
	lines    map[string]bool
	pairs    map[stockPair]bool // cualquier reserva activa sobre el par
	pairOnly map[stockPair]bool // reservas sin línea
	byLine   map[string]decimal.Decimal
	byItem   map[string]decimal.Decimal
}

func newOrderHolds(active []*entity.Reservation) *orderHolds {
	h := &orderHolds{
		lines:    make(map[string]bool),
		pairs:    make(map[stockPair]bool),
		pairOnly: make(map[stockPair]bool),
		byLine:   make(map[string]decimal.Decimal),
		byItem:   make(map[string]decimal.Decimal),
	}
	for _, r := range active {
		h.add(r.OrderLineID, r.ItemID, r.WarehouseID, r.Quantity)
	}
	return h
}

func (h *orderHolds) add(orderLineID, itemID, warehouseID string, qty decimal.Decimal) {
	p := stockPair{itemID, warehouseID}
	h.pairs[p] = true
	if orderLineID == "" {
		h.pairOnly[p] = true
	} else {
		h.lines[orderLineID] = true
		h.byLine[orderLineID] = h.byLine[orderLineID].Add(qty)
	}
	h.byItem[itemID] = h.byItem[itemID].Add(qty)
}

// claim falla con Conflict si la línea ya está retenida o si el par ya tiene una reserva
// que cubriría las mismas unidades: sin línea choca con cualquier reserva del par, con
// línea choca con una reserva del par hecha sin línea.
func (h *orderHolds) claim(orderID string, l ReserveLine) error {
	p := stockPair{l.ItemID, l.WarehouseID}
	var taken bool
	if l.OrderLineID == "" {
		taken = h.pairs[p]
	} else {
		taken = h.lines[l.OrderLineID] || h.pairOnly[p]
	}
	if taken {
		return domain.Conflictf("el pedido %s ya tiene una reserva activa para el ítem %s en bodega %s", orderID, l.ItemID, l.WarehouseID)
	}
	h.add(l.OrderLineID, l.ItemID, l.WarehouseID, l.Quantity)
	return nil
}

// withinOrder exige que lo retenido no supere lo pendiente de despacho, por línea y por ítem.
func (h *orderHolds) withinOrder(order *entity.SalesOrder) error {
	pending := make(map[string]decimal.Decimal)
	for i := range order.Lines {
		ol := &order.Lines[i]
		if ol.Status == entity.LineCancelled {
			continue
		}
		pending[ol.ItemID] = pending[ol.ItemID].Add(ol.Remaining())
		if held, ok := h.byLine[ol.ID]; ok && held.GreaterThan(ol.Remaining()) {
			return domain.Validationf("línea %s: reserva %s supera lo pendiente %s", ol.ID, held.String(), ol.Remaining().String())
		}
	}
	for _, itemID := range sortedKeys(h.byItem) {
		if held := h.byItem[itemID]; held.GreaterThan(pending[itemID]) {
			return domain.Validationf("ítem %s: reserva %s supera lo pendiente del pedido %s", itemID, held.String(), pending[itemID].String())
		}
	}
	return nil
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CancelSalesOrder cancela un pedido aún sin despachos: líneas abiertas a cancelled y
// reservas activas liberadas.
func (uc *ReservationUseCase) CancelSalesOrder(ctx context.Context, companyID, userID, orderID string) error {
	if orderID == "" {
		return domain.Validationf("pedido obligatorio")
	}
	var released []string
	err := uc.execute(ctx, "cancel_sales_order",
		[]attribute.KeyValue{attribute.String("order_id", orderID)},
		func(ctx context.Context, repos repository.Repos) error {
			order, err := repos.SalesOrders().GetForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if order == nil || order.CompanyID != companyID {
				return domain.NotFoundf("pedido %s", orderID)
			}
			if order.Status != entity.SalesOrderDraft && order.Status != entity.SalesOrderConfirmed {
				return domain.InvalidStatef("pedido %s en estado %s no se puede cancelar", order.ID, order.Status)
			}
			for i := range order.Lines {
				l := &order.Lines[i]
				if l.Status == entity.LineCancelled {
					continue
				}
				l.Status = entity.LineCancelled
				if err := repos.SalesOrders().UpdateLine(ctx, l); err != nil {
					return err
				}
			}
			if released, err = cancelActive(ctx, repos, order.ID); err != nil {
				return err
			}
			return repos.SalesOrders().UpdateStatus(ctx, order.ID, entity.SalesOrderCancelled)
		})
	if err != nil {
		return err
	}
	uc.afterCommit(ctx, AuditEvent{
		Action:     "sales_order.cancelled",
		EntityType: "sales_order",
		EntityID:   orderID,
		CompanyID:  companyID,
		ActorID:    userID,
		Payload:    map[string]any{"released": len(released)},
	}, uniqueSorted(released))
	return nil
}
