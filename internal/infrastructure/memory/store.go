// Package memory implementa los puertos del ledger en memoria para modo desarrollo y tests.
// Cada Run trabaja sobre una copia del estado bajo un mutex global y la publica solo si fn no
// falla: las transacciones quedan serializadas y un rollback no deja rastro.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type pairKey struct{ item, warehouse string }

type state struct {
	items          map[string]entity.Item
	warehouses     map[string]entity.Warehouse
	ledger         []entity.StockLedgerEntry
	locks          map[pairKey]struct{}
	reservations   map[string]entity.Reservation
	reservationSeq []string
	backorders     map[string]entity.Backorder // por línea de pedido
	salesOrders    map[string]entity.SalesOrder
	purchaseOrders map[string]entity.PurchaseOrder
	shipments      map[string]entity.Shipment
	receipts       map[string]entity.Receipt
	transfers      map[string]entity.Transfer
	adjustments    map[string]entity.Adjustment
	invoices       map[string]entity.Invoice
	invoiceDetails map[string][]entity.InvoiceDetail
	sequences      map[string]int64
}

func newState() *state {
	return &state{
		items:          map[string]entity.Item{},
		warehouses:     map[string]entity.Warehouse{},
		locks:          map[pairKey]struct{}{},
		reservations:   map[string]entity.Reservation{},
		backorders:     map[string]entity.Backorder{},
		salesOrders:    map[string]entity.SalesOrder{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		shipments:      map[string]entity.Shipment{},
		receipts:       map[string]entity.Receipt{},
		transfers:      map[string]entity.Transfer{},
		adjustments:    map[string]entity.Adjustment{},
		invoices:       map[string]entity.Invoice{},
		invoiceDetails: map[string][]entity.InvoiceDetail{},
		sequences:      map[string]int64{},
	}
}

// clone copia profunda: los documentos con líneas se copian línea a línea.
func (s *state) clone() *state {
	c := &state{
		items:          maps.Clone(s.items),
		warehouses:     maps.Clone(s.warehouses),
		ledger:         slices.Clone(s.ledger),
		locks:          maps.Clone(s.locks),
		reservations:   maps.Clone(s.reservations),
		reservationSeq: slices.Clone(s.reservationSeq),
		backorders:     maps.Clone(s.backorders),
		salesOrders:    make(map[string]entity.SalesOrder, len(s.salesOrders)),
		purchaseOrders: make(map[string]entity.PurchaseOrder, len(s.purchaseOrders)),
		shipments:      make(map[string]entity.Shipment, len(s.shipments)),
		receipts:       make(map[string]entity.Receipt, len(s.receipts)),
		transfers:      make(map[string]entity.Transfer, len(s.transfers)),
		adjustments:    make(map[string]entity.Adjustment, len(s.adjustments)),
		invoices:       maps.Clone(s.invoices),
		invoiceDetails: make(map[string][]entity.InvoiceDetail, len(s.invoiceDetails)),
		sequences:      maps.Clone(s.sequences),
	}
	for k, v := range s.salesOrders {
		v.Lines = slices.Clone(v.Lines)
		c.salesOrders[k] = v
	}
	for k, v := range s.purchaseOrders {
		v.Lines = slices.Clone(v.Lines)
		c.purchaseOrders[k] = v
	}
	for k, v := range s.shipments {
		v.Lines = slices.Clone(v.Lines)
		c.shipments[k] = v
	}
	for k, v := range s.receipts {
		v.Lines = slices.Clone(v.Lines)
		c.receipts[k] = v
	}
	for k, v := range s.transfers {
		v.Lines = slices.Clone(v.Lines)
		c.transfers[k] = v
	}
	for k, v := range s.adjustments {
		v.Lines = cloneAdjustmentLines(v.Lines)
		c.adjustments[k] = v
	}
	for k, v := range s.invoiceDetails {
		c.invoiceDetails[k] = slices.Clone(v)
	}
	return c
}

func cloneAdjustmentLines(in []entity.AdjustmentLine) []entity.AdjustmentLine {
	out := slices.Clone(in)
	for i := range out {
		if out[i].UnitCost != nil {
			cost := *out[i].UnitCost
			out[i].UnitCost = &cost
		}
	}
	return out
}

// Store almacén en memoria. El valor cero no es usable; crear con New.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{state: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// Run ejecuta fn con repositorios sobre una copia del estado; si fn devuelve error la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&repos{st: work, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Snapshot devuelve una copia independiente del estado comprometido, comparable con Equal.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{st: s.state.clone()}
}

// Snapshot vista inmutable del estado en un instante.
type Snapshot struct {
	st *state
}

// LedgerLen cantidad de movimientos del libro en la instantánea.
func (sn Snapshot) LedgerLen() int { return len(sn.st.ledger) }

// Reservations reservas en la instantánea por ID.
func (sn Snapshot) Reservations() map[string]entity.Reservation {
	return maps.Clone(sn.st.reservations)
}

// SalesOrder pedido en la instantánea.
func (sn Snapshot) SalesOrder(id string) (entity.SalesOrder, bool) {
	o, ok := sn.st.salesOrders[id]
	return o, ok
}

// Ledger movimientos del libro en orden de inserción.
func (sn Snapshot) Ledger() []entity.StockLedgerEntry { return slices.Clone(sn.st.ledger) }

// Backorders backorders por línea de pedido.
func (sn Snapshot) Backorders() map[string]entity.Backorder { return maps.Clone(sn.st.backorders) }

// Shipment despacho en la instantánea.
func (sn Snapshot) Shipment(id string) (entity.Shipment, bool) {
	s, ok := sn.st.shipments[id]
	return s, ok
}

// Invoices facturas borrador por ID.
func (sn Snapshot) Invoices() map[string]entity.Invoice { return maps.Clone(sn.st.invoices) }

// Sequences contadores por (alcance|tipo).
func (sn Snapshot) Sequences() map[string]int64 { return maps.Clone(sn.st.sequences) }

type repos struct {
	st  *state
	now func() time.Time
}

func (r *repos) Items() repository.ItemRepository                   { return itemRepo{r} }
func (r *repos) Warehouses() repository.WarehouseRepository         { return warehouseRepo{r} }
func (r *repos) Ledger() repository.StockLedgerRepository           { return ledgerRepo{r} }
func (r *repos) StockLocks() repository.StockLockRepository         { return lockRepo{r} }
func (r *repos) Reservations() repository.ReservationRepository     { return reservationRepo{r} }
func (r *repos) Backorders() repository.BackorderRepository         { return backorderRepo{r} }
func (r *repos) SalesOrders() repository.SalesOrderRepository       { return salesOrderRepo{r} }
func (r *repos) PurchaseOrders() repository.PurchaseOrderRepository { return purchaseOrderRepo{r} }
func (r *repos) Shipments() repository.ShipmentRepository           { return shipmentRepo{r} }
func (r *repos) Receipts() repository.ReceiptRepository             { return receiptRepo{r} }
func (r *repos) Transfers() repository.TransferRepository           { return transferRepo{r} }
func (r *repos) Adjustments() repository.AdjustmentRepository       { return adjustmentRepo{r} }
func (r *repos) Invoices() repository.InvoiceRepository             { return invoiceRepo{r} }
func (r *repos) Sequences() repository.SequenceRepository           { return sequenceRepo{r} }
