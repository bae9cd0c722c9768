package inventory

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// QueryUseCase lectura de saldos y del log de movimientos. Nunca escribe.
type QueryUseCase struct {
	stock     repository.StockLineReader
	movements repository.MovementReader
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(stock repository.StockLineReader, movements repository.MovementReader) *QueryUseCase {
	return &QueryUseCase{stock: stock, movements: movements}
}

// GetStock devuelve el saldo de una clave. Una clave nunca tocada vale cero (sin ID).
func (uc *QueryUseCase) GetStock(ctx context.Context, key entity.StockKey) (*dto.StockLineResponse, error) {
	if key.WarehouseID == "" || key.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	line, err := uc.stock.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return &dto.StockLineResponse{WarehouseID: key.WarehouseID, ItemID: key.ItemID, BinID: key.BinID}, nil
	}
	return toStockLineResponse(line), nil
}

// ListStock lista líneas de stock con filtros y paginación.
func (uc *QueryUseCase) ListStock(ctx context.Context, filter repository.StockLineFilter) (*dto.StockListResponse, error) {
	list, err := uc.stock.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockLineResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toStockLineResponse(l))
	}
	return &dto.StockListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// GetMovement obtiene un movimiento por ID.
func (uc *QueryUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return ToMovementResponse(m), nil
}

// ListMovements lista movimientos, más recientes primero.
func (uc *QueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	list, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func toStockLineResponse(l *entity.StockLine) *dto.StockLineResponse {
	return &dto.StockLineResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		ItemID:      l.ItemID,
		BinID:       l.BinID,
		Quantity:    l.Quantity,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ToMovementResponse convierte un registro del log al DTO.
func ToMovementResponse(m *entity.MovementRecord) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:                     m.ID,
		Sequence:               m.Sequence,
		Kind:                   string(m.Kind),
		SourceWarehouseID:      m.SourceWarehouseID,
		DestinationWarehouseID: m.DestinationWarehouseID,
		ItemID:                 m.ItemID,
		BinID:                  m.BinID,
		DestinationBinID:       m.DestinationBinID,
		Quantity:               m.Quantity,
		Reason:                 m.Reason,
		ReferenceType:          m.ReferenceType,
		ReferenceID:            m.ReferenceID,
		CreatedBy:              m.CreatedBy,
		CreatedAt:              m.CreatedAt,
	}
}
