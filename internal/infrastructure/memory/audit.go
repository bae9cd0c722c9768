package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*auditRepo)(nil)

type auditRepo struct {
	s *Store
}

func (r *auditRepo) Create(_ context.Context, log *entity.AuditLog) error {
	c := *log
	c.Payload = append([]byte(nil), log.Payload...)
	r.s.apply(nil, func() { r.s.audits = append(r.s.audits, &c) })
	return nil
}

func (r *auditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	r.s.mu.RLock()
	list := make([]*entity.AuditLog, 0)
	for _, a := range r.s.audits {
		if f.Actor != "" && a.Actor != f.Actor {
			continue
		}
		if f.Action != "" && a.Action != f.Action {
			continue
		}
		if f.EntityType != "" && a.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && a.EntityID != f.EntityID {
			continue
		}
		if f.CreatedFrom != nil && a.CreatedAt.Before(*f.CreatedFrom) {
			continue
		}
		if f.CreatedTo != nil && a.CreatedAt.After(*f.CreatedTo) {
			continue
		}
		c := *a
		list = append(list, &c)
	}
	r.s.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, f.Limit, f.Offset), nil
}
