package inventory

import (
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DeriveLineStatus es la única función de estado de línea para pedidos de venta y de compra.
// completed es el estado terminal de la familia (fulfilled para venta, received para compra).
// Las líneas canceladas no cambian; sin avance el estado se conserva.
func DeriveLineStatus(current, completed string, ordered, done decimal.Decimal) string {
	if current == entity.LineCancelled {
		return current
	}
	switch {
	case done.GreaterThanOrEqual(ordered) && ordered.IsPositive():
		return completed
	case done.IsPositive():
		return entity.LinePartial
	default:
		return current
	}
}

// DeriveSalesOrderStatus estado de cabecera tras un despacho:
// fully_shipped si toda línea está fulfilled o cancelled, si no partially_shipped.
func DeriveSalesOrderStatus(lines []entity.SalesOrderLine) string {
	for _, l := range lines {
		if l.Status != entity.LineFulfilled && l.Status != entity.LineCancelled {
			return entity.SalesOrderPartiallyShipped
		}
	}
	return entity.SalesOrderFullyShipped
}

// DerivePurchaseOrderStatus estado de cabecera tras una recepción.
func DerivePurchaseOrderStatus(lines []entity.PurchaseOrderLine) string {
	for _, l := range lines {
		if l.Status != entity.LineReceived && l.Status != entity.LineCancelled {
			return entity.PurchaseOrderPartiallyReceived
		}
	}
	return entity.PurchaseOrderFullyReceived
}

// DeriveBackorderStatus estado del backorder de una línea según lo despachado y lo pendiente.
func DeriveBackorderStatus(shipped, remaining decimal.Decimal) string {
	switch {
	case !remaining.IsPositive():
		return entity.BackorderFulfilled
	case shipped.IsPositive():
		return entity.BackorderPartial
	default:
		return entity.BackorderOpen
	}
}

// SalesOrderPostable indica si el pedido admite despachos o reservas.
func SalesOrderPostable(status string) bool {
	return status == entity.SalesOrderConfirmed || status == entity.SalesOrderPartiallyShipped
}

// PurchaseOrderPostable indica si la orden de compra admite recepciones.
func PurchaseOrderPostable(status string) bool {
	return status == entity.PurchaseOrderConfirmed || status == entity.PurchaseOrderPartiallyReceived
}
