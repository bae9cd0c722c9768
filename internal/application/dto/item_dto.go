package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un ítem.
type CreateItemRequest struct {
	SKU       string          `json:"sku" validate:"required,min=1,max=100"`
	Name      string          `json:"name" validate:"required,min=1,max=200"`
	UOM       string          `json:"uom" validate:"omitempty,max=20"`
	LastPrice decimal.Decimal `json:"last_price"`
}

// UpdateItemRequest entrada para actualizar un ítem (el precio lo actualiza la recepción).
type UpdateItemRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
	UOM  *string `json:"uom" validate:"omitempty,max=20"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UOM       string          `json:"uom"`
	LastPrice decimal.Decimal `json:"last_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
