package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.StockLineRepository = (*StockLineRepo)(nil)

// StockLineRepo Ledger Store sobre PostgreSQL (usable con pool o tx).
type StockLineRepo struct {
	q Querier
}

// NewStockLineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLineRepository(q Querier) *StockLineRepo {
	return &StockLineRepo{q: q}
}

const stockLineColumns = `id, warehouse_id, item_id, bin_id, quantity, updated_at`

func scanStockLine(row pgx.Row) (*entity.StockLine, error) {
	var l entity.StockLine
	if err := row.Scan(&l.ID, &l.WarehouseID, &l.ItemID, &l.BinID, &l.Quantity, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Get devuelve la línea o nil si aún no existe.
func (r *StockLineRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockLine, error) {
	query := `SELECT ` + stockLineColumns + `
		FROM stock_lines WHERE warehouse_id = $1 AND item_id = $2 AND bin_id = $3`
	l, err := scanStockLine(r.q.QueryRow(ctx, query, key.WarehouseID, key.ItemID, key.BinID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapStorage("get stock line", err)
	}
	return l, nil
}

func (r *StockLineRepo) List(ctx context.Context, filter repository.StockLineFilter) ([]*entity.StockLine, error) {
	query := `SELECT ` + stockLineColumns + ` FROM stock_lines
		WHERE ($1 = '' OR warehouse_id = $1) AND ($2 = '' OR item_id = $2)
		ORDER BY warehouse_id, item_id, bin_id
		LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.q.Query(ctx, query, filter.WarehouseID, filter.ItemID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, domain.WrapStorage("list stock lines", err)
	}
	defer rows.Close()
	var list []*entity.StockLine
	for rows.Next() {
		l, err := scanStockLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// GetOrCreateForUpdate inserta la línea en cero si no existe (ON CONFLICT DO NOTHING) y luego
// la bloquea con SELECT ... FOR UPDATE hasta el fin de la transacción.
func (r *StockLineRepo) GetOrCreateForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLine, error) {
	insert := `
		INSERT INTO stock_lines (id, warehouse_id, item_id, bin_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, 0, now())
		ON CONFLICT (warehouse_id, item_id, bin_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), key.WarehouseID, key.ItemID, key.BinID); err != nil {
		return nil, fmt.Errorf("create stock line: %w", err)
	}
	query := `SELECT ` + stockLineColumns + `
		FROM stock_lines WHERE warehouse_id = $1 AND item_id = $2 AND bin_id = $3
		FOR UPDATE`
	l, err := scanStockLine(r.q.QueryRow(ctx, query, key.WarehouseID, key.ItemID, key.BinID))
	if err != nil {
		return nil, fmt.Errorf("lock stock line: %w", err)
	}
	return l, nil
}

// SetQuantity sobrescribe la cantidad sin validar.
func (r *StockLineRepo) SetQuantity(ctx context.Context, stockLineID string, quantity decimal.Decimal, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE stock_lines SET quantity = $2, updated_at = $3 WHERE id = $1`,
		stockLineID, quantity, at)
	if err != nil {
		return fmt.Errorf("set stock quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
