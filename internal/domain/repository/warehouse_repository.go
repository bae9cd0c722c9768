package repository

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para bodegas y sus ubicaciones (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	GetByCode(ctx context.Context, code string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)

	CreateBin(ctx context.Context, bin *entity.BinLocation) error
	GetBin(ctx context.Context, id string) (*entity.BinLocation, error)
	ListBins(ctx context.Context, warehouseID string) ([]*entity.BinLocation, error)
}
