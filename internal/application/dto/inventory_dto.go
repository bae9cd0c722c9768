package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento aceptados por POST /api/inventory/movements.
const (
	MovementTypeIN       = "IN"
	MovementTypeOUT      = "OUT"
	MovementTypeTRANSFER = "TRANSFER"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// IN/OUT: warehouse_id, item_id, quantity y opcionalmente bin_id y la referencia.
// TRANSFER: warehouse_id es el origen; destination_warehouse_id y/o destination_bin_id el destino.
type RegisterMovementRequest struct {
	Type                   string          `json:"type" validate:"required,oneof=IN OUT TRANSFER"`
	WarehouseID            string          `json:"warehouse_id" validate:"required"`
	ItemID                 string          `json:"item_id" validate:"required"`
	BinID                  string          `json:"bin_id,omitempty"`
	Quantity               decimal.Decimal `json:"quantity"`
	ReferenceType          string          `json:"reference_type,omitempty" validate:"max=50"`
	ReferenceID            string          `json:"reference_id,omitempty" validate:"max=100"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	DestinationBinID       string          `json:"destination_bin_id,omitempty"`
	Reason                 string          `json:"reason,omitempty" validate:"max=200"`
}

// MovementResultResponse resultado de un IN/OUT.
type MovementResultResponse struct {
	MovementID  string          `json:"movement_id"`
	WarehouseID string          `json:"warehouse_id"`
	ItemID      string          `json:"item_id"`
	BinID       string          `json:"bin_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// TransferResultResponse resultado de un TRANSFER.
type TransferResultResponse struct {
	TransferID          string          `json:"transfer_id"`
	OutMovementID       string          `json:"out_movement_id"`
	InMovementID        string          `json:"in_movement_id"`
	MarkerMovementID    string          `json:"marker_movement_id"`
	SourceQuantity      decimal.Decimal `json:"source_quantity"`
	DestinationQuantity decimal.Decimal `json:"destination_quantity"`
}

// StockLineResponse saldo de una línea de stock.
type StockLineResponse struct {
	ID          string          `json:"id"`
	WarehouseID string          `json:"warehouse_id"`
	ItemID      string          `json:"item_id"`
	BinID       string          `json:"bin_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockListResponse lista paginada de líneas de stock.
type StockListResponse struct {
	Items []StockLineResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// MovementResponse registro del log de movimientos.
type MovementResponse struct {
	ID                     string          `json:"id"`
	Sequence               int64           `json:"sequence"`
	Kind                   string          `json:"kind"`
	SourceWarehouseID      string          `json:"source_warehouse_id"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	ItemID                 string          `json:"item_id"`
	BinID                  string          `json:"bin_id,omitempty"`
	DestinationBinID       string          `json:"destination_bin_id,omitempty"`
	Quantity               decimal.Decimal `json:"quantity"`
	Reason                 string          `json:"reason"`
	ReferenceType          string          `json:"reference_type,omitempty"`
	ReferenceID            string          `json:"reference_id,omitempty"`
	CreatedBy              string          `json:"created_by"`
	CreatedAt              time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InsufficientStockResponse cuerpo 409 con el faltante estructurado.
type InsufficientStockResponse struct {
	Code        string          `json:"code"`
	Message     string          `json:"message"`
	WarehouseID string          `json:"warehouse_id"`
	ItemID      string          `json:"item_id"`
	BinID       string          `json:"bin_id,omitempty"`
	Current     decimal.Decimal `json:"current"`
	Requested   decimal.Decimal `json:"requested"`
	Shortfall   decimal.Decimal `json:"shortfall"`
}
