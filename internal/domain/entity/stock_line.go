package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica una línea de stock: bodega + ítem + ubicación (bin).
// BinID vacío representa el pool sin ubicación de la bodega.
type StockKey struct {
	WarehouseID string
	ItemID      string
	BinID       string
}

// String devuelve una representación estable de la clave (útil para ordenar y bloquear).
func (k StockKey) String() string {
	return k.WarehouseID + "|" + k.ItemID + "|" + k.BinID
}

// Less ordena claves de forma determinista; se usa para tomar bloqueos sin deadlock.
func (k StockKey) Less(o StockKey) bool {
	return k.String() < o.String()
}

// StockLine representa el saldo actual de un ítem en una bodega/bin (proyección materializada del log).
// Se crea en cero al primer movimiento y nunca se elimina.
type StockLine struct {
	ID          string
	WarehouseID string
	ItemID      string
	BinID       string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// Key devuelve la clave de la línea.
func (s *StockLine) Key() StockKey {
	return StockKey{WarehouseID: s.WarehouseID, ItemID: s.ItemID, BinID: s.BinID}
}
