package inventory

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// Tipos de entidad registrados en auditoría.
const (
	AuditEntityStockLine = "stock_line"
	AuditEntityTransfer  = "transfer"
)

type auditOutcome struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Shortfall string `json:"shortfall,omitempty"`
}

type movementAuditPayload struct {
	WarehouseID   string `json:"warehouse_id"`
	ItemID        string `json:"item_id"`
	BinID         string `json:"bin_id,omitempty"`
	Quantity      string `json:"quantity"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	MovementID    string `json:"movement_id,omitempty"`
	Resulting     string `json:"resulting_quantity,omitempty"`
	auditOutcome
}

type transferAuditPayload struct {
	SourceWarehouseID      string   `json:"source_warehouse_id"`
	DestinationWarehouseID string   `json:"destination_warehouse_id"`
	SourceBinID            string   `json:"source_bin_id,omitempty"`
	DestinationBinID       string   `json:"destination_bin_id,omitempty"`
	ItemID                 string   `json:"item_id"`
	Quantity               string   `json:"quantity"`
	Reason                 string   `json:"reason,omitempty"`
	MovementIDs            []string `json:"movement_ids,omitempty"`
	auditOutcome
}

func outcome(err error) auditOutcome {
	if err == nil {
		return auditOutcome{Success: true}
	}
	o := auditOutcome{Error: err.Error()}
	var shortfall *domain.InsufficientStockError
	if errors.As(err, &shortfall) {
		o.Shortfall = shortfall.Shortfall.String()
	}
	return o
}

// AuditMovement emite la entrada de auditoría de un IN/OUT, haya tenido éxito o no.
// Los colaboradores que usan ApplyIn/ApplyOut la llaman tras cerrar su transacción.
func (e *Engine) AuditMovement(ctx context.Context, actor entity.Actor, kind entity.MovementKind, in MovementInput, res *MovementResult, err error) {
	action := entity.AuditActionInventoryIn
	if kind == entity.MovementKindOut {
		action = entity.AuditActionInventoryOut
	}
	p := movementAuditPayload{
		WarehouseID:   in.WarehouseID,
		ItemID:        in.ItemID,
		BinID:         in.BinID,
		Quantity:      in.Quantity.String(),
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		auditOutcome:  outcome(err),
	}
	if res != nil {
		p.MovementID = res.MovementID
		p.Resulting = res.Quantity.String()
	}
	e.writeAudit(ctx, actor, action, AuditEntityStockLine, in.key().String(), p)
}

func (e *Engine) auditTransfer(ctx context.Context, actor entity.Actor, in TransferInput, res *TransferResult, err error) {
	p := transferAuditPayload{
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		SourceBinID:            in.SourceBinID,
		DestinationBinID:       in.DestinationBinID,
		ItemID:                 in.ItemID,
		Quantity:               in.Quantity.String(),
		Reason:                 in.Reason,
		auditOutcome:           outcome(err),
	}
	entityID := ""
	if res != nil {
		entityID = res.TransferID
		p.MovementIDs = []string{res.OutMovementID, res.InMovementID, res.MarkerMovementID}
	}
	e.writeAudit(ctx, actor, entity.AuditActionInventoryTransfer, AuditEntityTransfer, entityID, p)
}

// writeAudit nunca propaga errores: un fallo de auditoría solo se registra en el log.
func (e *Engine) writeAudit(ctx context.Context, actor entity.Actor, action, entityType, entityID string, payload any) {
	if e.audit == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		e.log.Error().Err(err).Str("action", action).Msg("serializar auditoría")
		return
	}
	entry := &entity.AuditLog{
		ID:         uuid.New().String(),
		Actor:      actor.Name(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    raw,
		CreatedAt:  e.now(),
	}
	if err := e.audit.Create(context.WithoutCancel(ctx), entry); err != nil {
		e.log.Error().Err(err).Str("action", action).Str("entity_id", entityID).Msg("no se pudo registrar auditoría")
	}
}
