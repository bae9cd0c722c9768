package reporting

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// AuditUseCase consulta de la bitácora de auditoría.
type AuditUseCase struct {
	repo repository.AuditRepository
}

func NewAuditUseCase(repo repository.AuditRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// List filtra por actor, acción y entidad; más reciente primero.
func (uc *AuditUseCase) List(ctx context.Context, filter repository.AuditFilter) (*dto.AuditListResponse, error) {
	logs, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.AuditLogResponse{
			ID:         l.ID,
			Actor:      l.Actor,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Payload:    l.Payload,
			CreatedAt:  l.CreatedAt,
		})
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}
