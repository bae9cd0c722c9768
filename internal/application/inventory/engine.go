package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	ledger "github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

// MovementInput entrada de IN/OUT. BinID vacío = pool sin ubicación.
type MovementInput struct {
	WarehouseID   string
	ItemID        string
	BinID         string
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
}

func (in MovementInput) key() entity.StockKey {
	return entity.StockKey{WarehouseID: in.WarehouseID, ItemID: in.ItemID, BinID: in.BinID}
}

// TransferInput entrada de TRANSFER.
type TransferInput struct {
	SourceWarehouseID      string
	DestinationWarehouseID string
	ItemID                 string
	Quantity               decimal.Decimal
	Reason                 string
	SourceBinID            string
	DestinationBinID       string
}

func (in TransferInput) sourceKey() entity.StockKey {
	return entity.StockKey{WarehouseID: in.SourceWarehouseID, ItemID: in.ItemID, BinID: in.SourceBinID}
}

func (in TransferInput) destinationKey() entity.StockKey {
	return entity.StockKey{WarehouseID: in.DestinationWarehouseID, ItemID: in.ItemID, BinID: in.DestinationBinID}
}

// MovementResult resultado de un IN/OUT confirmado.
type MovementResult struct {
	MovementID string
	Key        entity.StockKey
	Quantity   decimal.Decimal // saldo resultante de la línea
}

// TransferResult resultado de un TRANSFER confirmado. Los tres movimientos referencian ("TRANSFER", TransferID).
type TransferResult struct {
	TransferID          string
	OutMovementID       string
	InMovementID        string
	MarkerMovementID    string
	SourceQuantity      decimal.Decimal
	DestinationQuantity decimal.Decimal
}

// Engine motor de inventario: única vía para cambiar saldos. Cada operación escribe la línea
// de stock y el log de movimientos en la misma transacción.
type Engine struct {
	txRunner TxRunner
	audit    repository.AuditRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewEngine construye el motor. audit puede ser nil (sin auditoría).
func NewEngine(txRunner TxRunner, audit repository.AuditRepository, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		txRunner: txRunner,
		audit:    audit,
		log:      log.Component("inventory_engine"),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// In registra una entrada en su propia transacción.
func (e *Engine) In(ctx context.Context, actor entity.Actor, in MovementInput) (*MovementResult, error) {
	var res *MovementResult
	err := e.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		res, err = e.ApplyIn(ctx, repos, actor, in)
		return err
	})
	err = domain.WrapStorage("inventory in", err)
	e.logResult(entity.MovementKindIn, in.key(), err)
	e.AuditMovement(ctx, actor, entity.MovementKindIn, in, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Out registra una salida en su propia transacción.
func (e *Engine) Out(ctx context.Context, actor entity.Actor, in MovementInput) (*MovementResult, error) {
	var res *MovementResult
	err := e.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		res, err = e.ApplyOut(ctx, repos, actor, in)
		return err
	})
	err = domain.WrapStorage("inventory out", err)
	e.logResult(entity.MovementKindOut, in.key(), err)
	e.AuditMovement(ctx, actor, entity.MovementKindOut, in, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyIn ejecuta un IN con los repositorios de una transacción ya abierta por el llamador
// (recepción de GRN). No emite auditoría; el llamador la emite tras el commit.
func (e *Engine) ApplyIn(ctx context.Context, repos repository.TxRepos, actor entity.Actor, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	if err := validateRefs(ctx, repos, in.WarehouseID, in.ItemID, in.BinID); err != nil {
		return nil, err
	}
	line, err := repos.StockLines().GetOrCreateForUpdate(ctx, in.key())
	if err != nil {
		return nil, err
	}
	now := e.now()
	newQty := line.Quantity.Add(in.Quantity)
	if err := repos.StockLines().SetQuantity(ctx, line.ID, newQty, now); err != nil {
		return nil, err
	}
	id, err := repos.Movements().Append(ctx, &entity.MovementRecord{
		Kind:              entity.MovementKindIn,
		SourceWarehouseID: in.WarehouseID,
		ItemID:            in.ItemID,
		BinID:             in.BinID,
		Quantity:          in.Quantity,
		Reason:            ledger.ReasonFor(in.ReferenceType),
		ReferenceType:     in.ReferenceType,
		ReferenceID:       in.ReferenceID,
		CreatedBy:         actor.Name(),
		CreatedAt:         now,
	})
	if err != nil {
		return nil, err
	}
	return &MovementResult{MovementID: id, Key: in.key(), Quantity: newQty}, nil
}

// ApplyOut ejecuta un OUT dentro de la transacción del llamador (despacho de DO).
// Si el saldo no alcanza devuelve *domain.InsufficientStockError y no escribe nada.
func (e *Engine) ApplyOut(ctx context.Context, repos repository.TxRepos, actor entity.Actor, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	if err := validateRefs(ctx, repos, in.WarehouseID, in.ItemID, in.BinID); err != nil {
		return nil, err
	}
	line, err := repos.StockLines().GetOrCreateForUpdate(ctx, in.key())
	if err != nil {
		return nil, err
	}
	if ledger.ExceedsStock(line.Quantity, in.Quantity) {
		return nil, domain.NewInsufficientStockError(in.WarehouseID, in.ItemID, in.BinID, line.Quantity, in.Quantity)
	}
	now := e.now()
	newQty := line.Quantity.Sub(in.Quantity)
	if err := repos.StockLines().SetQuantity(ctx, line.ID, newQty, now); err != nil {
		return nil, err
	}
	id, err := repos.Movements().Append(ctx, &entity.MovementRecord{
		Kind:              entity.MovementKindOut,
		SourceWarehouseID: in.WarehouseID,
		ItemID:            in.ItemID,
		BinID:             in.BinID,
		Quantity:          in.Quantity,
		Reason:            ledger.ReasonFor(in.ReferenceType),
		ReferenceType:     in.ReferenceType,
		ReferenceID:       in.ReferenceID,
		CreatedBy:         actor.Name(),
		CreatedAt:         now,
	})
	if err != nil {
		return nil, err
	}
	return &MovementResult{MovementID: id, Key: in.key(), Quantity: newQty}, nil
}

// Transfer mueve qty entre dos claves en una sola transacción: OUT en origen, IN en destino y un
// marcador TRANSFER. Las dos líneas se bloquean en orden de clave para no generar deadlocks.
func (e *Engine) Transfer(ctx context.Context, actor entity.Actor, in TransferInput) (*TransferResult, error) {
	var res *TransferResult
	err := e.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		res, err = e.applyTransfer(ctx, repos, actor, in)
		return err
	})
	err = domain.WrapStorage("inventory transfer", err)
	e.logResult(entity.MovementKindTransfer, in.sourceKey(), err)
	e.auditTransfer(ctx, actor, in, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) applyTransfer(ctx context.Context, repos repository.TxRepos, actor entity.Actor, in TransferInput) (*TransferResult, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	if in.SourceWarehouseID == "" || in.DestinationWarehouseID == "" || in.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	src, dst := in.sourceKey(), in.destinationKey()
	if src == dst {
		return nil, domain.ErrInvalidInput
	}
	if err := validateRefs(ctx, repos, in.SourceWarehouseID, in.ItemID, in.SourceBinID); err != nil {
		return nil, err
	}
	if err := validateRefs(ctx, repos, in.DestinationWarehouseID, in.ItemID, in.DestinationBinID); err != nil {
		return nil, err
	}

	first, second := src, dst
	if dst.Less(src) {
		first, second = dst, src
	}
	lines := make(map[entity.StockKey]*entity.StockLine, 2)
	for _, k := range []entity.StockKey{first, second} {
		l, err := repos.StockLines().GetOrCreateForUpdate(ctx, k)
		if err != nil {
			return nil, err
		}
		lines[k] = l
	}
	srcLine, dstLine := lines[src], lines[dst]
	if ledger.ExceedsStock(srcLine.Quantity, in.Quantity) {
		return nil, domain.NewInsufficientStockError(src.WarehouseID, src.ItemID, src.BinID, srcLine.Quantity, in.Quantity)
	}

	now := e.now()
	srcQty := srcLine.Quantity.Sub(in.Quantity)
	dstQty := dstLine.Quantity.Add(in.Quantity)
	if err := repos.StockLines().SetQuantity(ctx, srcLine.ID, srcQty, now); err != nil {
		return nil, err
	}
	if err := repos.StockLines().SetQuantity(ctx, dstLine.ID, dstQty, now); err != nil {
		return nil, err
	}

	transferID := uuid.New().String()
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = ledger.ReasonFor(entity.ReferenceTransfer)
	}
	base := entity.MovementRecord{
		ItemID:        in.ItemID,
		Quantity:      in.Quantity,
		Reason:        reason,
		ReferenceType: entity.ReferenceTransfer,
		ReferenceID:   transferID,
		CreatedBy:     actor.Name(),
		CreatedAt:     now,
	}

	out := base
	out.Kind = entity.MovementKindOut
	out.SourceWarehouseID = src.WarehouseID
	out.BinID = src.BinID

	inLeg := base
	inLeg.Kind = entity.MovementKindIn
	inLeg.SourceWarehouseID = dst.WarehouseID
	inLeg.BinID = dst.BinID

	marker := base
	marker.Kind = entity.MovementKindTransfer
	marker.SourceWarehouseID = src.WarehouseID
	marker.BinID = src.BinID
	marker.DestinationWarehouseID = dst.WarehouseID
	marker.DestinationBinID = dst.BinID

	res := &TransferResult{TransferID: transferID, SourceQuantity: srcQty, DestinationQuantity: dstQty}
	for _, rec := range []struct {
		m  *entity.MovementRecord
		id *string
	}{{&out, &res.OutMovementID}, {&inLeg, &res.InMovementID}, {&marker, &res.MarkerMovementID}} {
		id, err := repos.Movements().Append(ctx, rec.m)
		if err != nil {
			return nil, err
		}
		*rec.id = id
	}
	return res, nil
}

func validateMovement(in MovementInput) error {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	if in.WarehouseID == "" || in.ItemID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// validateRefs comprueba que bodega e ítem existan y que el bin pertenezca a la bodega.
func validateRefs(ctx context.Context, repos repository.TxRepos, warehouseID, itemID, binID string) error {
	wh, err := repos.Warehouses().GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	item, err := repos.Items().GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if binID == "" {
		return nil
	}
	bin, err := repos.Warehouses().GetBin(ctx, binID)
	if err != nil {
		return err
	}
	if bin == nil || bin.WarehouseID != warehouseID {
		return domain.ErrInvalidInput
	}
	return nil
}

func (e *Engine) logResult(kind entity.MovementKind, key entity.StockKey, err error) {
	var shortfall *domain.InsufficientStockError
	switch {
	case err == nil:
		e.log.Debug().Str("kind", string(kind)).Str("key", key.String()).Msg("movimiento registrado")
	case errors.As(err, &shortfall):
		e.log.Warn().Str("kind", string(kind)).Str("key", key.String()).
			Str("current", shortfall.Current.String()).Str("requested", shortfall.Requested.String()).
			Msg("stock insuficiente")
	case errors.Is(err, domain.ErrStorageUnavailable) || !domain.IsDomainError(err):
		e.log.Error().Err(err).Str("kind", string(kind)).Str("key", key.String()).Msg("fallo de almacenamiento")
	default:
		e.log.Debug().Err(err).Str("kind", string(kind)).Str("key", key.String()).Msg("movimiento rechazado")
	}
}
