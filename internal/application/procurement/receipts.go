// Package procurement contiene los colaboradores de flujo que mueven stock a través del motor:
// recepción de mercancía (GRN) y despacho de órdenes (DO).
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

// ReceiptUseCase registra, inspecciona y recibe GRNs. Recibir emite un IN por línea y marca el
// GRN como received en la misma transacción.
type ReceiptUseCase struct {
	txRunner inventory.TxRunner
	engine   *inventory.Engine
	grns     repository.GoodsReceiptRepository
	ids      *idgen.Generator
	now      func() time.Time
}

// NewReceiptUseCase construye el caso de uso. grns se usa solo para lecturas fuera de transacción.
func NewReceiptUseCase(txRunner inventory.TxRunner, engine *inventory.Engine, grns repository.GoodsReceiptRepository, ids *idgen.Generator) *ReceiptUseCase {
	return &ReceiptUseCase{txRunner: txRunner, engine: engine, grns: grns, ids: ids, now: time.Now}
}

// Create registra un GRN pendiente con sus líneas.
func (uc *ReceiptUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateGRNRequest) (*dto.GRNResponse, error) {
	if in.WarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidQuantity
		}
		if l.UnitPrice.IsNegative() || l.ItemID == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	now := uc.now()
	grn := &entity.GoodsReceipt{
		ID:          uuid.New().String(),
		Number:      uc.ids.Number("GRN"),
		POReference: in.POReference,
		WarehouseID: in.WarehouseID,
		ReceivedBy:  actor.Name(),
		Status:      entity.GRNStatusPending,
		CreatedAt:   now,
	}
	for _, l := range in.Lines {
		grn.Lines = append(grn.Lines, entity.GoodsReceiptLine{
			ID:        uuid.New().String(),
			GRNID:     grn.ID,
			ItemID:    l.ItemID,
			BinID:     l.BinID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := checkDocumentRefs(ctx, repos, grn.WarehouseID, grnItems(grn)); err != nil {
			return err
		}
		return repos.GoodsReceipts().Create(ctx, grn)
	})
	if err != nil {
		return nil, domain.WrapStorage("create grn", err)
	}
	return toGRNResponse(grn, nil), nil
}

// Inspect registra el resultado de inspección. Un GRN ya recibido no se puede re-inspeccionar.
func (uc *ReceiptUseCase) Inspect(ctx context.Context, actor entity.Actor, id string, in dto.InspectGRNRequest) (*dto.GRNResponse, error) {
	switch in.Result {
	case entity.InspectionAccepted, entity.InspectionRejected, entity.InspectionAcceptedWithNotes:
	default:
		return nil, domain.ErrInvalidInput
	}
	var grn *entity.GoodsReceipt
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		grn, err = repos.GoodsReceipts().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if grn == nil {
			return domain.ErrNotFound
		}
		if grn.Status != entity.GRNStatusPending {
			return domain.ErrConflict
		}
		at := uc.now()
		if err := repos.GoodsReceipts().SaveInspection(ctx, id, in.Result, in.Notes, actor.Name(), at); err != nil {
			return err
		}
		grn.InspectionResult = in.Result
		grn.InspectionNotes = in.Notes
		grn.InspectedBy = actor.Name()
		grn.InspectedAt = &at
		return nil
	})
	if err != nil {
		return nil, domain.WrapStorage("inspect grn", err)
	}
	return toGRNResponse(grn, nil), nil
}

// Receive ingresa todas las líneas al inventario y marca el GRN como received.
// Si cualquier IN falla no se escribe nada y el GRN sigue pending.
func (uc *ReceiptUseCase) Receive(ctx context.Context, actor entity.Actor, id string) (*dto.GRNResponse, error) {
	var (
		grn     *entity.GoodsReceipt
		inputs  []inventory.MovementInput
		results []*inventory.MovementResult
		failed  *inventory.MovementInput
	)
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		inputs, results, failed = nil, nil, nil
		var err error
		grn, err = repos.GoodsReceipts().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if grn == nil {
			return domain.ErrNotFound
		}
		if grn.Status != entity.GRNStatusPending || grn.InspectionResult == entity.InspectionRejected {
			return domain.ErrConflict
		}
		inputs = make([]inventory.MovementInput, len(grn.Lines))
		for i, l := range grn.Lines {
			inputs[i] = inventory.MovementInput{
				WarehouseID:   grn.WarehouseID,
				ItemID:        l.ItemID,
				BinID:         l.BinID,
				Quantity:      l.Quantity,
				ReferenceType: entity.ReferenceGRN,
				ReferenceID:   grn.ID,
			}
		}
		results = make([]*inventory.MovementResult, len(inputs))
		for _, i := range lockOrder(inputs) {
			res, err := uc.engine.ApplyIn(ctx, repos, actor, inputs[i])
			if err != nil {
				in := inputs[i]
				failed = &in
				return err
			}
			results[i] = res
		}
		// Precio en orden de línea: con dos líneas del mismo ítem gana la última.
		for _, l := range grn.Lines {
			if l.UnitPrice.GreaterThan(decimal.Zero) {
				if err := repos.Items().UpdateLastPrice(ctx, l.ItemID, l.UnitPrice); err != nil {
					return err
				}
			}
		}
		at := uc.now()
		if err := repos.GoodsReceipts().MarkReceived(ctx, grn.ID, at); err != nil {
			return err
		}
		grn.Status = entity.GRNStatusReceived
		grn.ReceivedAt = &at
		return nil
	})
	if err != nil {
		if failed != nil {
			uc.engine.AuditMovement(ctx, actor, entity.MovementKindIn, *failed, nil, err)
		}
		return nil, domain.WrapStorage("receive grn", err)
	}

	ids := make([]string, 0, len(results))
	for i, res := range results {
		uc.engine.AuditMovement(ctx, actor, entity.MovementKindIn, inputs[i], res, nil)
		ids = append(ids, res.MovementID)
	}
	return toGRNResponse(grn, ids), nil
}

// Get obtiene un GRN con sus líneas.
func (uc *ReceiptUseCase) Get(ctx context.Context, id string) (*dto.GRNResponse, error) {
	grn, err := uc.grns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if grn == nil {
		return nil, domain.ErrNotFound
	}
	return toGRNResponse(grn, nil), nil
}

// List lista GRNs, más recientes primero.
func (uc *ReceiptUseCase) List(ctx context.Context, limit, offset int) (*dto.GRNListResponse, error) {
	list, err := uc.grns.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.GRNResponse, 0, len(list))
	for _, g := range list {
		items = append(items, *toGRNResponse(g, nil))
	}
	return &dto.GRNListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

func grnItems(g *entity.GoodsReceipt) []lineRef {
	refs := make([]lineRef, 0, len(g.Lines))
	for _, l := range g.Lines {
		refs = append(refs, lineRef{itemID: l.ItemID, binID: l.BinID})
	}
	return refs
}

func toGRNResponse(g *entity.GoodsReceipt, movementIDs []string) *dto.GRNResponse {
	out := &dto.GRNResponse{
		ID:               g.ID,
		Number:           g.Number,
		POReference:      g.POReference,
		WarehouseID:      g.WarehouseID,
		ReceivedBy:       g.ReceivedBy,
		Status:           g.Status,
		InspectionResult: g.InspectionResult,
		InspectionNotes:  g.InspectionNotes,
		InspectedBy:      g.InspectedBy,
		InspectedAt:      g.InspectedAt,
		ReceivedAt:       g.ReceivedAt,
		CreatedAt:        g.CreatedAt,
		MovementIDs:      movementIDs,
	}
	for _, l := range g.Lines {
		out.Lines = append(out.Lines, dto.GRNLineResponse{
			ID: l.ID, ItemID: l.ItemID, BinID: l.BinID, Quantity: l.Quantity, UnitPrice: l.UnitPrice,
		})
	}
	return out
}
