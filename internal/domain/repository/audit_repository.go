package repository

import (
	"context"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// AuditFilter filtros para consultar auditoría.
type AuditFilter struct {
	Actor       string
	Action      string
	EntityType  string
	EntityID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// AuditRepository persistencia de entradas de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditLog, error)
}
