package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, code, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, w.ID, w.Code, w.Name, w.Address, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) getBy(ctx context.Context, column, value string) (*entity.Warehouse, error) {
	query := `SELECT id, code, name, address, created_at, updated_at FROM warehouses WHERE ` + column + ` = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, value).Scan(&w.ID, &w.Code, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.getBy(ctx, "id", id)
}

// GetByCode obtiene una bodega por su código.
func (r *WarehouseRepo) GetByCode(ctx context.Context, code string) (*entity.Warehouse, error) {
	return r.getBy(ctx, "code", code)
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	query := `UPDATE warehouses SET name = $2, address = $3, updated_at = $4 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, w.ID, w.Name, w.Address, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista bodegas por código con paginación.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, code, name, address, created_at, updated_at
		FROM warehouses ORDER BY code LIMIT NULLIF($1, 0) OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// CreateBin registra una ubicación dentro de una bodega.
func (r *WarehouseRepo) CreateBin(ctx context.Context, bin *entity.BinLocation) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO bin_locations (id, warehouse_id, code, description) VALUES ($1, $2, $3, $4)`,
		bin.ID, bin.WarehouseID, bin.Code, bin.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert bin: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) GetBin(ctx context.Context, id string) (*entity.BinLocation, error) {
	var b entity.BinLocation
	err := r.q.QueryRow(ctx,
		`SELECT id, warehouse_id, code, description FROM bin_locations WHERE id = $1`, id,
	).Scan(&b.ID, &b.WarehouseID, &b.Code, &b.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bin: %w", err)
	}
	return &b, nil
}

func (r *WarehouseRepo) ListBins(ctx context.Context, warehouseID string) ([]*entity.BinLocation, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, warehouse_id, code, description FROM bin_locations WHERE warehouse_id = $1 ORDER BY code`,
		warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	defer rows.Close()
	var list []*entity.BinLocation
	for rows.Next() {
		var b entity.BinLocation
		if err := rows.Scan(&b.ID, &b.WarehouseID, &b.Code, &b.Description); err != nil {
			return nil, fmt.Errorf("scan bin: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
