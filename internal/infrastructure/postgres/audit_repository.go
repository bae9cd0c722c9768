package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo tabla audit_logs. Se escribe fuera de la transacción del movimiento.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador de auditoría.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Create(ctx context.Context, a *entity.AuditLog) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	var payload any
	if len(a.Payload) > 0 {
		payload = string(a.Payload)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, actor, action, entity_type, entity_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)`,
		a.ID, a.Actor, a.Action, a.EntityType, a.EntityID, payload, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, actor, action, entity_type, entity_id, COALESCE(payload::text, ''), created_at
		FROM audit_logs
		WHERE ($1 = '' OR actor = $1)
		  AND ($2 = '' OR action = $2)
		  AND ($3 = '' OR entity_type = $3)
		  AND ($4 = '' OR entity_id = $4)
		  AND ($5::timestamptz IS NULL OR created_at >= $5)
		  AND ($6::timestamptz IS NULL OR created_at <= $6)
		ORDER BY created_at DESC
		LIMIT NULLIF($7, 0) OFFSET $8`,
		f.Actor, f.Action, f.EntityType, f.EntityID, f.CreatedFrom, f.CreatedTo, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLog
	for rows.Next() {
		var a entity.AuditLog
		var payload string
		if err := rows.Scan(&a.ID, &a.Actor, &a.Action, &a.EntityType, &a.EntityID, &payload, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if payload != "" {
			a.Payload = []byte(payload)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
