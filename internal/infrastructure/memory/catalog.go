package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*warehouseRepo)(nil)
	_ repository.ItemRepository      = (*itemRepo)(nil)
)

type warehouseRepo struct {
	s  *Store
	tx *Tx
}

func (r *warehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	c := *w
	return r.s.insertUnique(ctx, r.tx, "warehouse:"+strings.ToUpper(w.Code), func() bool {
		for _, existing := range r.s.warehouses {
			if strings.EqualFold(existing.Code, c.Code) {
				return true
			}
		}
		return false
	}, func() { r.s.warehouses[c.ID] = &c })
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (r *warehouseRepo) GetByCode(_ context.Context, code string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.warehouses {
		if strings.EqualFold(w.Code, code) {
			c := *w
			return &c, nil
		}
	}
	return nil, nil
}

func (r *warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.RLock()
	_, ok := r.s.warehouses[w.ID]
	r.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	c := *w
	r.s.apply(r.tx, func() { r.s.warehouses[c.ID] = &c })
	return nil
}

func (r *warehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.RLock()
	list := make([]*entity.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		c := *w
		list = append(list, &c)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), nil
}

func (r *warehouseRepo) CreateBin(ctx context.Context, bin *entity.BinLocation) error {
	c := *bin
	return r.s.insertUnique(ctx, r.tx, "bin:"+bin.WarehouseID+":"+strings.ToUpper(bin.Code), func() bool {
		for _, existing := range r.s.bins {
			if existing.WarehouseID == c.WarehouseID && strings.EqualFold(existing.Code, c.Code) {
				return true
			}
		}
		return false
	}, func() { r.s.bins[c.ID] = &c })
}

func (r *warehouseRepo) GetBin(_ context.Context, id string) (*entity.BinLocation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bins[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *warehouseRepo) ListBins(_ context.Context, warehouseID string) ([]*entity.BinLocation, error) {
	r.s.mu.RLock()
	list := make([]*entity.BinLocation, 0)
	for _, b := range r.s.bins {
		if b.WarehouseID == warehouseID {
			c := *b
			list = append(list, &c)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

type itemRepo struct {
	s  *Store
	tx *Tx
}

func (r *itemRepo) Create(ctx context.Context, item *entity.Item) error {
	c := *item
	return r.s.insertUnique(ctx, r.tx, "item:"+strings.ToUpper(item.SKU), func() bool {
		for _, existing := range r.s.items {
			if strings.EqualFold(existing.SKU, c.SKU) {
				return true
			}
		}
		return false
	}, func() { r.s.items[c.ID] = &c })
}

func (r *itemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	c := *it
	return &c, nil
}

func (r *itemRepo) GetBySKU(_ context.Context, sku string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, it := range r.s.items {
		if strings.EqualFold(it.SKU, sku) {
			c := *it
			return &c, nil
		}
	}
	return nil, nil
}

func (r *itemRepo) Update(_ context.Context, item *entity.Item) error {
	r.s.mu.RLock()
	_, ok := r.s.items[item.ID]
	r.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	c := *item
	r.s.apply(r.tx, func() { r.s.items[c.ID] = &c })
	return nil
}

func (r *itemRepo) UpdateLastPrice(_ context.Context, itemID string, price decimal.Decimal) error {
	r.s.mu.RLock()
	_, ok := r.s.items[itemID]
	r.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	at := r.s.now()
	r.s.apply(r.tx, func() {
		if it, ok := r.s.items[itemID]; ok {
			it.LastPrice = price
			it.UpdatedAt = at
		}
	})
	return nil
}

func (r *itemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	r.s.mu.RLock()
	list := make([]*entity.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		c := *it
		list = append(list, &c)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return page(list, limit, offset), nil
}
