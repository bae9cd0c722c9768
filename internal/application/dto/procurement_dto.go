package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// GRNLineRequest línea de una recepción.
type GRNLineRequest struct {
	ItemID    string          `json:"item_id" validate:"required"`
	BinID     string          `json:"bin_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateGRNRequest entrada para registrar una recepción (GRN) pendiente.
type CreateGRNRequest struct {
	POReference string           `json:"po_reference" validate:"max=100"`
	WarehouseID string           `json:"warehouse_id" validate:"required"`
	Lines       []GRNLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// InspectGRNRequest resultado de la inspección de calidad.
type InspectGRNRequest struct {
	Result string `json:"result" validate:"required,oneof=accepted rejected accepted_with_notes"`
	Notes  string `json:"notes" validate:"max=1000"`
}

// GRNLineResponse línea de recepción.
type GRNLineResponse struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"item_id"`
	BinID     string          `json:"bin_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// GRNResponse salida de una recepción.
type GRNResponse struct {
	ID               string            `json:"id"`
	Number           string            `json:"number"`
	POReference      string            `json:"po_reference"`
	WarehouseID      string            `json:"warehouse_id"`
	ReceivedBy       string            `json:"received_by"`
	Status           string            `json:"status"`
	InspectionResult string            `json:"inspection_result,omitempty"`
	InspectionNotes  string            `json:"inspection_notes,omitempty"`
	InspectedBy      string            `json:"inspected_by,omitempty"`
	InspectedAt      *time.Time        `json:"inspected_at,omitempty"`
	ReceivedAt       *time.Time        `json:"received_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	Lines            []GRNLineResponse `json:"lines,omitempty"`
	MovementIDs      []string          `json:"movement_ids,omitempty"`
}

// GRNListResponse lista paginada de recepciones.
type GRNListResponse struct {
	Items []GRNResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// DeliveryLineRequest línea de despacho.
type DeliveryLineRequest struct {
	ItemID   string          `json:"item_id" validate:"required"`
	BinID    string          `json:"bin_id,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateDeliveryRequest entrada para crear una orden de despacho.
type CreateDeliveryRequest struct {
	WarehouseID   string                `json:"warehouse_id" validate:"required"`
	CustomerName  string                `json:"customer_name" validate:"required,max=200"`
	ScheduledDate *time.Time            `json:"scheduled_date,omitempty"`
	Lines         []DeliveryLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DeliveryLineResponse línea de despacho.
type DeliveryLineResponse struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	BinID    string          `json:"bin_id,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DeliveryResponse salida de una orden de despacho.
type DeliveryResponse struct {
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	WarehouseID   string                 `json:"warehouse_id"`
	CustomerName  string                 `json:"customer_name"`
	Status        string                 `json:"status"`
	ScheduledDate *time.Time             `json:"scheduled_date,omitempty"`
	ShippedAt     *time.Time             `json:"shipped_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	Lines         []DeliveryLineResponse `json:"lines,omitempty"`
	MovementIDs   []string               `json:"movement_ids,omitempty"`
}

// DeliveryListResponse lista paginada de despachos.
type DeliveryListResponse struct {
	Items []DeliveryResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
