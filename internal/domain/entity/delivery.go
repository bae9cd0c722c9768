package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de despacho.
const (
	DeliveryStatusCreated = "created"
	DeliveryStatusShipped = "shipped"
)

// Delivery orden de despacho (DO). Pasa a shipped solo si todas las salidas se confirman.
type Delivery struct {
	ID            string
	Number        string
	WarehouseID   string
	CustomerName  string
	Status        string
	ScheduledDate *time.Time
	ShippedAt     *time.Time
	CreatedAt     time.Time
	Lines         []DeliveryLine
}

// DeliveryLine línea a despachar.
type DeliveryLine struct {
	ID         string
	DeliveryID string
	ItemID     string
	BinID      string
	Quantity   decimal.Decimal
}
