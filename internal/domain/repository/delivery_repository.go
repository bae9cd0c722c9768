package repository

import (
	"context"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// DeliveryRepository persistencia de órdenes de despacho con sus líneas.
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.Delivery) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Delivery, error)
	MarkShipped(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.Delivery, error)
}
