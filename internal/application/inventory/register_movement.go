package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP a In/Out/Transfer.
// Devuelve *dto.MovementResultResponse para IN/OUT y *dto.TransferResultResponse para TRANSFER.
func (e *Engine) RegisterMovementFromRequest(ctx context.Context, actor entity.Actor, in dto.RegisterMovementRequest) (any, error) {
	switch strings.ToUpper(in.Type) {
	case dto.MovementTypeIN, dto.MovementTypeOUT:
		input := MovementInput{
			WarehouseID:   in.WarehouseID,
			ItemID:        in.ItemID,
			BinID:         in.BinID,
			Quantity:      in.Quantity,
			ReferenceType: strings.ToUpper(strings.TrimSpace(in.ReferenceType)),
			ReferenceID:   in.ReferenceID,
		}
		op := e.In
		if strings.EqualFold(in.Type, dto.MovementTypeOUT) {
			op = e.Out
		}
		res, err := op(ctx, actor, input)
		if err != nil {
			return nil, err
		}
		return ToMovementResultResponse(res), nil
	case dto.MovementTypeTRANSFER:
		dest := in.DestinationWarehouseID
		if dest == "" {
			// Traslado entre bins de la misma bodega.
			dest = in.WarehouseID
		}
		res, err := e.Transfer(ctx, actor, TransferInput{
			SourceWarehouseID:      in.WarehouseID,
			DestinationWarehouseID: dest,
			ItemID:                 in.ItemID,
			Quantity:               in.Quantity,
			Reason:                 in.Reason,
			SourceBinID:            in.BinID,
			DestinationBinID:       in.DestinationBinID,
		})
		if err != nil {
			return nil, err
		}
		return &dto.TransferResultResponse{
			TransferID:          res.TransferID,
			OutMovementID:       res.OutMovementID,
			InMovementID:        res.InMovementID,
			MarkerMovementID:    res.MarkerMovementID,
			SourceQuantity:      res.SourceQuantity,
			DestinationQuantity: res.DestinationQuantity,
		}, nil
	}
	return nil, domain.ErrInvalidInput
}

// ToMovementResultResponse convierte el resultado del motor al DTO.
func ToMovementResultResponse(res *MovementResult) *dto.MovementResultResponse {
	return &dto.MovementResultResponse{
		MovementID:  res.MovementID,
		WarehouseID: res.Key.WarehouseID,
		ItemID:      res.Key.ItemID,
		BinID:       res.Key.BinID,
		Quantity:    res.Quantity,
	}
}
