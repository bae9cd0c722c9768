package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*reportRepo)(nil)

type reportRepo struct {
	s *Store
}

func (r *reportRepo) StockSnapshot(ctx context.Context, filter repository.StockLineFilter) ([]repository.StockSnapshotRow, error) {
	lines, err := r.s.StockLines().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]repository.StockSnapshotRow, 0, len(lines))
	for _, l := range lines {
		row := repository.StockSnapshotRow{
			StockLineID: l.ID,
			WarehouseID: l.WarehouseID,
			ItemID:      l.ItemID,
			BinID:       l.BinID,
			Quantity:    l.Quantity,
			UpdatedAt:   l.UpdatedAt,
		}
		if w, ok := r.s.warehouses[l.WarehouseID]; ok {
			row.WarehouseName = w.Name
		}
		if it, ok := r.s.items[l.ItemID]; ok {
			row.SKU = it.SKU
			row.ItemName = it.Name
		}
		if b, ok := r.s.bins[l.BinID]; ok {
			row.BinCode = b.Code
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *reportRepo) MovementHistory(ctx context.Context, filter repository.MovementFilter) ([]repository.MovementHistoryRow, error) {
	moves, err := r.s.Movements().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]repository.MovementHistoryRow, 0, len(moves))
	for _, m := range moves {
		row := repository.MovementHistoryRow{
			ID:            m.ID,
			Kind:          string(m.Kind),
			Quantity:      m.Quantity,
			Reason:        m.Reason,
			ReferenceType: m.ReferenceType,
			ReferenceID:   m.ReferenceID,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		}
		if w, ok := r.s.warehouses[m.SourceWarehouseID]; ok {
			row.SourceWarehouseName = w.Name
		}
		if w, ok := r.s.warehouses[m.DestinationWarehouseID]; ok {
			row.DestinationWarehouseName = w.Name
		}
		if it, ok := r.s.items[m.ItemID]; ok {
			row.ItemName = it.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Valuation agrega por bodega/ítem sumando todos los bins.
func (r *reportRepo) Valuation(_ context.Context, warehouseID string) ([]repository.ValuationRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type key struct{ wh, item string }
	acc := make(map[key]decimal.Decimal)
	for _, l := range r.s.lines {
		if warehouseID != "" && l.WarehouseID != warehouseID {
			continue
		}
		k := key{l.WarehouseID, l.ItemID}
		acc[k] = acc[k].Add(l.Quantity)
	}
	rows := make([]repository.ValuationRow, 0, len(acc))
	for k, qty := range acc {
		row := repository.ValuationRow{WarehouseID: k.wh, ItemID: k.item, Quantity: qty}
		if w, ok := r.s.warehouses[k.wh]; ok {
			row.WarehouseName = w.Name
		}
		if it, ok := r.s.items[k.item]; ok {
			row.ItemName = it.Name
			row.LastPrice = it.LastPrice
		}
		row.Value = qty.Mul(row.LastPrice)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WarehouseName != rows[j].WarehouseName {
			return rows[i].WarehouseName < rows[j].WarehouseName
		}
		return rows[i].ItemName < rows[j].ItemName
	})
	return rows, nil
}
