package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// StockLineFilter filtros para listar líneas de stock. Limit <= 0 significa sin límite.
type StockLineFilter struct {
	WarehouseID string
	ItemID      string
	Limit       int
	Offset      int
}

// StockLineReader lectura del Ledger Store (reportes; nunca escribe).
type StockLineReader interface {
	// Get devuelve la línea o nil si aún no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockLine, error)
	List(ctx context.Context, filter StockLineFilter) ([]*entity.StockLine, error)
}

// StockLineRepository puerto del Ledger Store. Las escrituras solo las hace el motor dentro de una transacción.
type StockLineRepository interface {
	StockLineReader
	// GetOrCreateForUpdate devuelve la línea (creándola en cero si no existe) y la bloquea
	// hasta el fin de la transacción. Llamarla dos veces con la misma clave devuelve la misma línea.
	GetOrCreateForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLine, error)
	// SetQuantity sobrescribe la cantidad sin validar.
	SetQuantity(ctx context.Context, stockLineID string, quantity decimal.Decimal, at time.Time) error
}
