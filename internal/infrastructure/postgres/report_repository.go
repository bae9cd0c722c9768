package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura (joins) para snapshot, historial y valorización.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// StockSnapshot líneas de stock con nombre de bodega, ítem y bin.
func (r *ReportRepo) StockSnapshot(ctx context.Context, f repository.StockLineFilter) ([]repository.StockSnapshotRow, error) {
	const query = `
	SELECT
	    s.id,
	    s.warehouse_id,
	    w.name                   AS warehouse_name,
	    s.item_id,
	    i.sku,
	    i.name                   AS item_name,
	    s.bin_id,
	    COALESCE(b.code, '')     AS bin_code,
	    s.quantity,
	    s.updated_at
	FROM stock_lines s
	JOIN warehouses w          ON w.id = s.warehouse_id
	JOIN items      i          ON i.id = s.item_id
	LEFT JOIN bin_locations b  ON b.id = s.bin_id
	WHERE ($1 = '' OR s.warehouse_id = $1)
	  AND ($2 = '' OR s.item_id = $2)
	ORDER BY w.name, i.name, s.bin_id
	LIMIT NULLIF($3, 0) OFFSET $4`

	rows, err := r.q.Query(ctx, query, f.WarehouseID, f.ItemID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("reports.StockSnapshot: %w", err)
	}
	defer rows.Close()

	var out []repository.StockSnapshotRow
	for rows.Next() {
		var row repository.StockSnapshotRow
		if err := rows.Scan(
			&row.StockLineID,
			&row.WarehouseID,
			&row.WarehouseName,
			&row.ItemID,
			&row.SKU,
			&row.ItemName,
			&row.BinID,
			&row.BinCode,
			&row.Quantity,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("reports.StockSnapshot scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MovementHistory movimientos con nombres de bodegas e ítem, más recientes primero.
func (r *ReportRepo) MovementHistory(ctx context.Context, f repository.MovementFilter) ([]repository.MovementHistoryRow, error) {
	where, args := movementWhere("m", f)
	query := `
	SELECT
	    m.id,
	    m.kind,
	    COALESCE(ws.name, '')    AS source_warehouse_name,
	    COALESCE(wd.name, '')    AS destination_warehouse_name,
	    COALESCE(i.name, '')     AS item_name,
	    m.quantity,
	    m.reason,
	    m.reference_type,
	    m.reference_id,
	    m.created_by,
	    m.created_at
	FROM movements m
	LEFT JOIN warehouses ws ON ws.id = m.source_warehouse_id
	LEFT JOIN warehouses wd ON wd.id = m.destination_warehouse_id
	LEFT JOIN items      i  ON i.id  = m.item_id
	` + where + `
	ORDER BY m.sequence DESC
	LIMIT NULLIF($8, 0) OFFSET $9`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports.MovementHistory: %w", err)
	}
	defer rows.Close()

	var out []repository.MovementHistoryRow
	for rows.Next() {
		var row repository.MovementHistoryRow
		if err := rows.Scan(
			&row.ID,
			&row.Kind,
			&row.SourceWarehouseName,
			&row.DestinationWarehouseName,
			&row.ItemName,
			&row.Quantity,
			&row.Reason,
			&row.ReferenceType,
			&row.ReferenceID,
			&row.CreatedBy,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("reports.MovementHistory scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Valuation cantidad total por bodega/ítem (todos los bins) por el último precio de compra.
func (r *ReportRepo) Valuation(ctx context.Context, warehouseID string) ([]repository.ValuationRow, error) {
	const query = `
	SELECT
	    s.warehouse_id,
	    w.name                          AS warehouse_name,
	    s.item_id,
	    i.name                          AS item_name,
	    SUM(s.quantity)                 AS quantity,
	    i.last_price,
	    SUM(s.quantity) * i.last_price  AS value
	FROM stock_lines s
	JOIN warehouses w ON w.id = s.warehouse_id
	JOIN items      i ON i.id = s.item_id
	WHERE ($1 = '' OR s.warehouse_id = $1)
	GROUP BY s.warehouse_id, w.name, s.item_id, i.name, i.last_price
	ORDER BY w.name, i.name`

	rows, err := r.q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("reports.Valuation: %w", err)
	}
	defer rows.Close()

	var out []repository.ValuationRow
	for rows.Next() {
		var row repository.ValuationRow
		if err := rows.Scan(
			&row.WarehouseID,
			&row.WarehouseName,
			&row.ItemID,
			&row.ItemName,
			&row.Quantity,
			&row.LastPrice,
			&row.Value,
		); err != nil {
			return nil, fmt.Errorf("reports.Valuation scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
