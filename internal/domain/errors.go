package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas salvo decimal).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOverReceipt       = errors.New("la recepción excede la cantidad pendiente de la orden de compra")
	ErrAlreadyPosted     = errors.New("el documento ya fue contabilizado")
	ErrInvalidState      = errors.New("estado inválido para la operación")
	ErrStorage           = errors.New("error de almacenamiento")
)

// StockError detalla un fallo de disponibilidad: qué par (ítem, bodega) y cuánto faltó.
type StockError struct {
	ItemID      string
	WarehouseID string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente para ítem %s en bodega %s: solicitado %s, disponible %s",
		e.ItemID, e.WarehouseID, e.Requested.String(), e.Available.String())
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// NewStockError construye el error de disponibilidad.
func NewStockError(itemID, warehouseID string, requested, available decimal.Decimal) error {
	return &StockError{ItemID: itemID, WarehouseID: warehouseID, Requested: requested, Available: available}
}

// OverReceiptError detalla una recepción que supera lo pendiente de la línea de la orden de compra.
type OverReceiptError struct {
	POLineID  string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf("recepción excede lo pendiente en la línea %s: solicitado %s, pendiente %s",
		e.POLineID, e.Requested.String(), e.Remaining.String())
}

func (e *OverReceiptError) Unwrap() error { return ErrOverReceipt }

// StorageError envuelve fallos de infraestructura (BD no disponible, timeouts, etc.).
// El núcleo no reintenta: el caller decide si vuelve a ejecutar la operación completa.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("almacenamiento: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// NewStorageError envuelve err; devuelve nil si err es nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Validationf construye un error de validación con detalle.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf construye un error de recurso inexistente con detalle.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidStatef construye un error de estado inválido con detalle.
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// Conflictf construye un error de conflicto con detalle.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
