package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*movementRepo)(nil)

type movementRepo struct {
	s  *Store
	tx *Tx
}

func (r *movementRepo) Append(_ context.Context, record *entity.MovementRecord) (string, error) {
	record.ID, record.Sequence = r.s.ids.Next(record.Kind.Prefix())
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.s.now()
	}
	stored := cloneMovement(record)
	if r.tx != nil {
		r.tx.moves = append(r.tx.moves, stored)
		return record.ID, nil
	}
	r.s.mu.Lock()
	r.s.movements = append(r.s.movements, stored)
	r.s.movementByID[stored.ID] = stored
	r.s.mu.Unlock()
	return record.ID, nil
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.MovementRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movementByID[id]
	if !ok {
		return nil, nil
	}
	return cloneMovement(m), nil
}

func (r *movementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.MovementRecord, error) {
	r.s.mu.RLock()
	list := make([]*entity.MovementRecord, 0)
	for _, m := range r.s.movements {
		if matchMovement(m, filter) {
			list = append(list, cloneMovement(m))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Sequence > list[j].Sequence })
	return page(list, filter.Limit, filter.Offset), nil
}

func (r *movementRepo) Replay(ctx context.Context, fn func(*entity.MovementRecord) error) error {
	r.s.mu.RLock()
	list := make([]*entity.MovementRecord, 0, len(r.s.movements))
	for _, m := range r.s.movements {
		list = append(list, cloneMovement(m))
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Sequence < list[j].Sequence })
	for _, m := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

func matchMovement(m *entity.MovementRecord, f repository.MovementFilter) bool {
	if f.WarehouseID != "" && m.SourceWarehouseID != f.WarehouseID && m.DestinationWarehouseID != f.WarehouseID {
		return false
	}
	if f.ItemID != "" && m.ItemID != f.ItemID {
		return false
	}
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if f.ReferenceType != "" && m.ReferenceType != f.ReferenceType {
		return false
	}
	if f.ReferenceID != "" && m.ReferenceID != f.ReferenceID {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
