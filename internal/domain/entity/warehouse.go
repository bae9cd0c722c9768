package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BinLocation ubicación física (estante, rack) dentro de una bodega.
type BinLocation struct {
	ID          string
	WarehouseID string
	Code        string
	Description string
}
