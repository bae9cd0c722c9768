package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidQuantity    = errors.New("cantidad inválida: debe ser mayor que cero")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
)

// InsufficientStockError detalla el faltante de una salida rechazada.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	WarehouseID string
	ItemID      string
	BinID       string
	Current     decimal.Decimal
	Requested   decimal.Decimal
	Shortfall   decimal.Decimal
}

// NewInsufficientStockError calcula el faltante (requested - current).
func NewInsufficientStockError(warehouseID, itemID string, binID string, current, requested decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		WarehouseID: warehouseID,
		ItemID:      itemID,
		BinID:       binID,
		Current:     current,
		Requested:   requested,
		Shortfall:   requested.Sub(current),
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: ítem %s en bodega %s tiene %s < %s (faltan %s)",
		e.ItemID, e.WarehouseID, e.Current.String(), e.Requested.String(), e.Shortfall.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StorageError envuelve un fallo de persistencia; errors.Is(err, ErrStorageUnavailable) es verdadero.
type StorageError struct {
	Op  string
	Err error
}

// WrapStorage clasifica err como fallo de almacenamiento salvo que ya sea un error de dominio.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageUnavailable.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// IsDomainError indica si err pertenece a la taxonomía de negocio (no es fallo de infraestructura).
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrInvalidQuantity, ErrDuplicate,
		ErrUnauthorized, ErrConflict, ErrInsufficientStock, ErrStorageUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
