package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para el catálogo de ítems (DIP).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	UpdateLastPrice(ctx context.Context, itemID string, price decimal.Decimal) error
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
}
