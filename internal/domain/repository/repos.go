package repository

// Repos da acceso a todos los repositorios atados a una misma transacción.
type Repos interface {
	Items() ItemRepository
	Warehouses() WarehouseRepository
	Ledger() StockLedgerRepository
	StockLocks() StockLockRepository
	Reservations() ReservationRepository
	Backorders() BackorderRepository
	SalesOrders() SalesOrderRepository
	PurchaseOrders() PurchaseOrderRepository
	Shipments() ShipmentRepository
	Receipts() ReceiptRepository
	Transfers() TransferRepository
	Adjustments() AdjustmentRepository
	Invoices() InvoiceRepository
	Sequences() SequenceRepository
}
