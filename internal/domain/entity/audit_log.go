package entity

import (
	"encoding/json"
	"time"
)

// Acciones de auditoría emitidas por el motor de inventario.
const (
	AuditActionInventoryIn       = "INVENTORY_IN"
	AuditActionInventoryOut      = "INVENTORY_OUT"
	AuditActionInventoryTransfer = "INVENTORY_TRANSFER"
)

// AuditLog entrada genérica de auditoría: quién, qué, sobre qué entidad y con qué datos.
// Es independiente del log de movimientos.
type AuditLog struct {
	ID         string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Payload    json.RawMessage
	CreatedAt  time.Time
}
