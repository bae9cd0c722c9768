package repository

import (
	"context"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// GoodsReceiptRepository persistencia de recepciones (GRN) con sus líneas.
type GoodsReceiptRepository interface {
	Create(ctx context.Context, grn *entity.GoodsReceipt) error
	GetByID(ctx context.Context, id string) (*entity.GoodsReceipt, error)
	// GetByIDForUpdate bloquea la cabecera para serializar recepciones del mismo GRN.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.GoodsReceipt, error)
	SaveInspection(ctx context.Context, id, result, notes, inspectedBy string, at time.Time) error
	MarkReceived(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.GoodsReceipt, error)
}
