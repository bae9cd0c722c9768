package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var (
	_ repository.GoodsReceiptRepository = (*grnRepo)(nil)
	_ repository.DeliveryRepository     = (*deliveryRepo)(nil)
)

type grnRepo struct {
	s  *Store
	tx *Tx
}

func (r *grnRepo) Create(ctx context.Context, grn *entity.GoodsReceipt) error {
	c := cloneGRN(grn)
	return r.s.insertUnique(ctx, r.tx, "grn:"+grn.Number, func() bool {
		for _, existing := range r.s.grns {
			if existing.Number == c.Number {
				return true
			}
		}
		return false
	}, func() { r.s.grns[c.ID] = c })
}

func (r *grnRepo) GetByID(_ context.Context, id string) (*entity.GoodsReceipt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneGRN(r.s.grns[id]), nil
}

func (r *grnRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, "grn:"+id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *grnRepo) SaveInspection(_ context.Context, id, result, notes, inspectedBy string, at time.Time) error {
	r.s.mu.RLock()
	_, ok := r.s.grns[id]
	r.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	r.s.apply(r.tx, func() {
		g := r.s.grns[id]
		g.InspectionResult = result
		g.InspectionNotes = notes
		g.InspectedBy = inspectedBy
		g.InspectedAt = &at
	})
	return nil
}

func (r *grnRepo) MarkReceived(_ context.Context, id string, at time.Time) error {
	r.s.mu.RLock()
	_, ok := r.s.grns[id]
	r.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	r.s.apply(r.tx, func() {
		g := r.s.grns[id]
		g.Status = entity.GRNStatusReceived
		g.ReceivedAt = &at
	})
	return nil
}

func (r *grnRepo) List(_ context.Context, limit, offset int) ([]*entity.GoodsReceipt, error) {
	r.s.mu.RLock()
	list := make([]*entity.GoodsReceipt, 0, len(r.s.grns))
	for _, g := range r.s.grns {
		list = append(list, cloneGRN(g))
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

type deliveryRepo struct {
	s  *Store
	tx *Tx
}

func (r *deliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	c := cloneDelivery(d)
	return r.s.insertUnique(ctx, r.tx, "do:"+d.Number, func() bool {
		for _, existing := range r.s.deliveries {
			if existing.Number == c.Number {
				return true
			}
		}
		return false
	}, func() { r.s.deliveries[c.ID] = c })
}

func (r *deliveryRepo) GetByID(_ context.Context, id string) (*entity.Delivery, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneDelivery(r.s.deliveries[id]), nil
}

func (r *deliveryRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, "do:"+id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *deliveryRepo) MarkShipped(_ context.Context, id string, at time.Time) error {
	r.s.mu.RLock()
	_, ok := r.s.deliveries[id]
	r.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	r.s.apply(r.tx, func() {
		d := r.s.deliveries[id]
		d.Status = entity.DeliveryStatusShipped
		d.ShippedAt = &at
	})
	return nil
}

func (r *deliveryRepo) List(_ context.Context, limit, offset int) ([]*entity.Delivery, error) {
	r.s.mu.RLock()
	list := make([]*entity.Delivery, 0, len(r.s.deliveries))
	for _, d := range r.s.deliveries {
		list = append(list, cloneDelivery(d))
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}
