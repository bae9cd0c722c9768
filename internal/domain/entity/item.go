package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo del catálogo. LastPrice se actualiza con cada recepción (GRN)
// y se usa para la valorización del inventario.
type Item struct {
	ID        string
	SKU       string
	Name      string
	UOM       string
	LastPrice decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
