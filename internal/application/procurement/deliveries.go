package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
)

// DeliveryUseCase crea y despacha órdenes de despacho. Despachar emite un OUT por línea; si alguna
// línea no tiene stock la orden queda en created y se devuelve el faltante.
type DeliveryUseCase struct {
	txRunner   inventory.TxRunner
	engine     *inventory.Engine
	deliveries repository.DeliveryRepository
	ids        *idgen.Generator
	now        func() time.Time
}

// NewDeliveryUseCase construye el caso de uso.
func NewDeliveryUseCase(txRunner inventory.TxRunner, engine *inventory.Engine, deliveries repository.DeliveryRepository, ids *idgen.Generator) *DeliveryUseCase {
	return &DeliveryUseCase{txRunner: txRunner, engine: engine, deliveries: deliveries, ids: ids, now: time.Now}
}

// Create registra una orden en estado created.
func (uc *DeliveryUseCase) Create(ctx context.Context, in dto.CreateDeliveryRequest) (*dto.DeliveryResponse, error) {
	if in.WarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidQuantity
		}
		if l.ItemID == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	d := &entity.Delivery{
		ID:            uuid.New().String(),
		Number:        uc.ids.Number("DO"),
		WarehouseID:   in.WarehouseID,
		CustomerName:  in.CustomerName,
		Status:        entity.DeliveryStatusCreated,
		ScheduledDate: in.ScheduledDate,
		CreatedAt:     uc.now(),
	}
	refs := make([]lineRef, 0, len(in.Lines))
	for _, l := range in.Lines {
		d.Lines = append(d.Lines, entity.DeliveryLine{
			ID: uuid.New().String(), DeliveryID: d.ID, ItemID: l.ItemID, BinID: l.BinID, Quantity: l.Quantity,
		})
		refs = append(refs, lineRef{itemID: l.ItemID, binID: l.BinID})
	}
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := checkDocumentRefs(ctx, repos, d.WarehouseID, refs); err != nil {
			return err
		}
		return repos.Deliveries().Create(ctx, d)
	})
	if err != nil {
		return nil, domain.WrapStorage("create delivery", err)
	}
	return toDeliveryResponse(d, nil), nil
}

// Ship despacha todas las líneas en una transacción y marca la orden como shipped.
func (uc *DeliveryUseCase) Ship(ctx context.Context, actor entity.Actor, id string) (*dto.DeliveryResponse, error) {
	var (
		d       *entity.Delivery
		inputs  []inventory.MovementInput
		results []*inventory.MovementResult
		failed  *inventory.MovementInput
	)
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		inputs, results, failed = nil, nil, nil
		var err error
		d, err = repos.Deliveries().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.Status != entity.DeliveryStatusCreated {
			return domain.ErrConflict
		}
		inputs = make([]inventory.MovementInput, len(d.Lines))
		for i, l := range d.Lines {
			inputs[i] = inventory.MovementInput{
				WarehouseID:   d.WarehouseID,
				ItemID:        l.ItemID,
				BinID:         l.BinID,
				Quantity:      l.Quantity,
				ReferenceType: entity.ReferenceDelivery,
				ReferenceID:   d.ID,
			}
		}
		results = make([]*inventory.MovementResult, len(inputs))
		for _, i := range lockOrder(inputs) {
			res, err := uc.engine.ApplyOut(ctx, repos, actor, inputs[i])
			if err != nil {
				in := inputs[i]
				failed = &in
				return err
			}
			results[i] = res
		}
		at := uc.now()
		if err := repos.Deliveries().MarkShipped(ctx, d.ID, at); err != nil {
			return err
		}
		d.Status = entity.DeliveryStatusShipped
		d.ShippedAt = &at
		return nil
	})
	if err != nil {
		if failed != nil {
			uc.engine.AuditMovement(ctx, actor, entity.MovementKindOut, *failed, nil, err)
		}
		return nil, domain.WrapStorage("ship delivery", err)
	}

	ids := make([]string, 0, len(results))
	for i, res := range results {
		uc.engine.AuditMovement(ctx, actor, entity.MovementKindOut, inputs[i], res, nil)
		ids = append(ids, res.MovementID)
	}
	return toDeliveryResponse(d, ids), nil
}

// Get obtiene una orden con sus líneas.
func (uc *DeliveryUseCase) Get(ctx context.Context, id string) (*dto.DeliveryResponse, error) {
	d, err := uc.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return toDeliveryResponse(d, nil), nil
}

// List lista órdenes, más recientes primero.
func (uc *DeliveryUseCase) List(ctx context.Context, limit, offset int) (*dto.DeliveryListResponse, error) {
	list, err := uc.deliveries.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DeliveryResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDeliveryResponse(d, nil))
	}
	return &dto.DeliveryListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

func toDeliveryResponse(d *entity.Delivery, movementIDs []string) *dto.DeliveryResponse {
	out := &dto.DeliveryResponse{
		ID:            d.ID,
		Number:        d.Number,
		WarehouseID:   d.WarehouseID,
		CustomerName:  d.CustomerName,
		Status:        d.Status,
		ScheduledDate: d.ScheduledDate,
		ShippedAt:     d.ShippedAt,
		CreatedAt:     d.CreatedAt,
		MovementIDs:   movementIDs,
	}
	for _, l := range d.Lines {
		out.Lines = append(out.Lines, dto.DeliveryLineResponse{ID: l.ID, ItemID: l.ItemID, BinID: l.BinID, Quantity: l.Quantity})
	}
	return out
}
