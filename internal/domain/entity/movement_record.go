package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del log de inventario.
type MovementKind string

const (
	MovementKindIn       MovementKind = "IN"       // entrada
	MovementKindOut      MovementKind = "OUT"      // salida
	MovementKindTransfer MovementKind = "TRANSFER" // marcador de traslado entre bodegas
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementKindIn, MovementKindOut, MovementKindTransfer:
		return true
	}
	return false
}

// Prefix prefijo del identificador de movimiento según su tipo.
func (k MovementKind) Prefix() string {
	switch k {
	case MovementKindIn:
		return "MIN"
	case MovementKindOut:
		return "MOUT"
	case MovementKindTransfer:
		return "MTR"
	}
	return "MOV"
}

// Tipos de documento de referencia conocidos.
const (
	ReferenceGRN      = "GRN"
	ReferenceDelivery = "DO"
	ReferenceTransfer = "TRANSFER"
)

// MovementRecord registro inmutable del log de movimientos. Nunca se actualiza ni se elimina.
// Quantity es siempre la magnitud (positiva) del evento; el signo lo da Kind.
type MovementRecord struct {
	ID                     string
	Sequence               int64
	Kind                   MovementKind
	SourceWarehouseID      string
	DestinationWarehouseID string // solo TRANSFER
	ItemID                 string
	BinID                  string
	DestinationBinID       string // solo TRANSFER
	Quantity               decimal.Decimal
	Reason                 string
	ReferenceType          string
	ReferenceID            string
	CreatedBy              string
	CreatedAt              time.Time
}

// Key clave de stock afectada por un IN/OUT. Para TRANSFER es la clave de origen.
func (m *MovementRecord) Key() StockKey {
	return StockKey{WarehouseID: m.SourceWarehouseID, ItemID: m.ItemID, BinID: m.BinID}
}
