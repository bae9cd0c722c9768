package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.StockLineRepository = (*stockLineRepo)(nil)

type stockLineRepo struct {
	s  *Store
	tx *Tx
}

func (r *stockLineRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockLine, error) {
	if r.tx != nil {
		if l, ok := r.tx.lines[key]; ok {
			return cloneStockLine(l), nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneStockLine(r.s.lines[key]), nil
}

func (r *stockLineRepo) List(_ context.Context, filter repository.StockLineFilter) ([]*entity.StockLine, error) {
	r.s.mu.RLock()
	list := make([]*entity.StockLine, 0, len(r.s.lines))
	for _, l := range r.s.lines {
		if filter.WarehouseID != "" && l.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.ItemID != "" && l.ItemID != filter.ItemID {
			continue
		}
		list = append(list, cloneStockLine(l))
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Key().Less(list[j].Key()) })
	return page(list, filter.Limit, filter.Offset), nil
}

func (r *stockLineRepo) GetOrCreateForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLine, error) {
	if r.tx == nil {
		var line *entity.StockLine
		err := r.s.Run(ctx, func(txr repository.TxRepos) error {
			var err error
			line, err = txr.StockLines().GetOrCreateForUpdate(ctx, key)
			return err
		})
		return line, err
	}
	if l, ok := r.tx.lines[key]; ok {
		return cloneStockLine(l), nil
	}
	if err := r.tx.lock(ctx, "stock:"+key.String()); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	existing := cloneStockLine(r.s.lines[key])
	r.s.mu.RUnlock()
	if existing == nil {
		existing = &entity.StockLine{
			ID:          uuid.New().String(),
			WarehouseID: key.WarehouseID,
			ItemID:      key.ItemID,
			BinID:       key.BinID,
			Quantity:    decimal.Zero,
			UpdatedAt:   r.s.now(),
		}
	}
	r.tx.lines[key] = existing
	return cloneStockLine(existing), nil
}

func (r *stockLineRepo) SetQuantity(_ context.Context, stockLineID string, quantity decimal.Decimal, at time.Time) error {
	if r.tx != nil {
		for _, l := range r.tx.lines {
			if l.ID == stockLineID {
				l.Quantity = quantity
				l.UpdatedAt = at
				return nil
			}
		}
		return domain.ErrNotFound
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.lines {
		if l.ID == stockLineID {
			l.Quantity = quantity
			l.UpdatedAt = at
			return nil
		}
	}
	return domain.ErrNotFound
}
