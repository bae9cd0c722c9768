package procurement_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/procurement"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
)

var actor = entity.Actor{UserID: "u-2", Email: "compras@example.com", Role: "operator"}

type fixture struct {
	store      *memory.Store
	engine     *inventory.Engine
	receipts   *procurement.ReceiptUseCase
	deliveries *procurement.DeliveryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ids := idgen.MustNew(5)
	s := memory.New(ids, time.Second)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "WH1", Code: "WH1", Name: "Principal", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, s.Items().Create(ctx, &entity.Item{ID: "ItemA", SKU: "A", Name: "Tornillo", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, s.Items().Create(ctx, &entity.Item{ID: "ItemB", SKU: "B", Name: "Tuerca", CreatedAt: now, UpdatedAt: now}))

	eng := inventory.NewEngine(s, s.Audit(), nil)
	return &fixture{
		store:      s,
		engine:     eng,
		receipts:   procurement.NewReceiptUseCase(s, eng, s.GoodsReceipts(), ids),
		deliveries: procurement.NewDeliveryUseCase(s, eng, s.Deliveries(), ids),
	}
}

func (f *fixture) qty(t *testing.T, item string) decimal.Decimal {
	t.Helper()
	l, err := f.store.StockLines().Get(context.Background(), entity.StockKey{WarehouseID: "WH1", ItemID: item})
	require.NoError(t, err)
	if l == nil {
		return decimal.Zero
	}
	return l.Quantity
}

func grnRequest() dto.CreateGRNRequest {
	return dto.CreateGRNRequest{
		POReference: "PO-77",
		WarehouseID: "WH1",
		Lines: []dto.GRNLineRequest{
			{ItemID: "ItemA", Quantity: decimal.NewFromInt(50), UnitPrice: decimal.RequireFromString("1.25")},
			{ItemID: "ItemB", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(3)},
		},
	}
}

func TestReceive_IngresaLineasYMarcaRecibido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	grn, err := f.receipts.Create(ctx, actor, grnRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.GRNStatusPending, grn.Status)
	assert.Contains(t, grn.Number, "GRN-")

	_, err = f.receipts.Inspect(ctx, actor, grn.ID, dto.InspectGRNRequest{Result: entity.InspectionAccepted})
	require.NoError(t, err)

	got, err := f.receipts.Receive(ctx, actor, grn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GRNStatusReceived, got.Status)
	assert.Len(t, got.MovementIDs, 2)

	assert.True(t, f.qty(t, "ItemA").Equal(decimal.NewFromInt(50)))
	assert.True(t, f.qty(t, "ItemB").Equal(decimal.NewFromInt(10)))

	item, err := f.store.Items().GetByID(ctx, "ItemA")
	require.NoError(t, err)
	assert.True(t, item.LastPrice.Equal(decimal.RequireFromString("1.25")))

	moves, err := f.store.Movements().List(ctx, repository.MovementFilter{ReferenceType: entity.ReferenceGRN, ReferenceID: grn.ID})
	require.NoError(t, err)
	assert.Len(t, moves, 2)

	_, err = f.receipts.Receive(ctx, actor, grn.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "un GRN no se recibe dos veces")
}

func TestReceive_RechazadoNoIngresa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	grn, err := f.receipts.Create(ctx, actor, grnRequest())
	require.NoError(t, err)
	_, err = f.receipts.Inspect(ctx, actor, grn.ID, dto.InspectGRNRequest{Result: entity.InspectionRejected, Notes: "cajas húmedas"})
	require.NoError(t, err)

	_, err = f.receipts.Receive(ctx, actor, grn.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.qty(t, "ItemA").IsZero())

	stored, err := f.receipts.Get(ctx, grn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GRNStatusPending, stored.Status)
	assert.Equal(t, "cajas húmedas", stored.InspectionNotes)
}

func TestCreateGRN_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := grnRequest()
	req.Lines[0].Quantity = decimal.Zero
	_, err := f.receipts.Create(ctx, actor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req = grnRequest()
	req.WarehouseID = "WH9"
	_, err = f.receipts.Create(ctx, actor, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.receipts.Get(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShip_FaltanteDejaLaOrdenSinDespachar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.In(ctx, actor, inventory.MovementInput{WarehouseID: "WH1", ItemID: "ItemA", Quantity: decimal.NewFromInt(5)})
	require.NoError(t, err)

	d, err := f.deliveries.Create(ctx, dto.CreateDeliveryRequest{
		WarehouseID:  "WH1",
		CustomerName: "Ferretería Central",
		Lines: []dto.DeliveryLineRequest{
			{ItemID: "ItemA", Quantity: decimal.NewFromInt(3)},
			{ItemID: "ItemB", Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)

	_, err = f.deliveries.Ship(ctx, actor, d.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var shortfall *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, "ItemB", shortfall.ItemID)

	assert.True(t, f.qty(t, "ItemA").Equal(decimal.NewFromInt(5)), "la primera línea se revierte")
	stored, err := f.deliveries.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryStatusCreated, stored.Status)
}

func TestShip_DespachaTodasLasLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.In(ctx, actor, inventory.MovementInput{WarehouseID: "WH1", ItemID: "ItemA", Quantity: decimal.NewFromInt(5)})
	require.NoError(t, err)
	d, err := f.deliveries.Create(ctx, dto.CreateDeliveryRequest{
		WarehouseID:  "WH1",
		CustomerName: "Ferretería Central",
		Lines:        []dto.DeliveryLineRequest{{ItemID: "ItemA", Quantity: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)

	shipped, err := f.deliveries.Ship(ctx, actor, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryStatusShipped, shipped.Status)
	assert.NotNil(t, shipped.ShippedAt)
	require.Len(t, shipped.MovementIDs, 1)
	assert.True(t, f.qty(t, "ItemA").IsZero())

	m, err := f.store.Movements().GetByID(ctx, shipped.MovementIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "DELIVERY", m.Reason)
	assert.Equal(t, d.ID, m.ReferenceID)

	_, err = f.deliveries.Ship(ctx, actor, d.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// trackingRunner envuelve el store: registra el orden en que se bloquean las claves de stock
// y, con failAppend, hace fallar la escritura del log.
type trackingRunner struct {
	s          *memory.Store
	failAppend bool

	mu     sync.Mutex
	locked []entity.StockKey
}

type trackingRepos struct {
	repository.TxRepos
	r *trackingRunner
}

type trackingStockLines struct {
	repository.StockLineRepository
	r *trackingRunner
}

type brokenMovements struct{ repository.MovementRepository }

func (brokenMovements) Append(context.Context, *entity.MovementRecord) (string, error) {
	return "", domain.WrapStorage("append movement", errors.New("disk full"))
}

func (l trackingStockLines) GetOrCreateForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLine, error) {
	l.r.mu.Lock()
	l.r.locked = append(l.r.locked, key)
	l.r.mu.Unlock()
	return l.StockLineRepository.GetOrCreateForUpdate(ctx, key)
}

func (t trackingRepos) StockLines() repository.StockLineRepository {
	return trackingStockLines{StockLineRepository: t.TxRepos.StockLines(), r: t.r}
}

func (t trackingRepos) Movements() repository.MovementRepository {
	if t.r.failAppend {
		return brokenMovements{t.TxRepos.Movements()}
	}
	return t.TxRepos.Movements()
}

func (r *trackingRunner) Run(ctx context.Context, fn func(repository.TxRepos) error) error {
	return r.s.Run(ctx, func(repos repository.TxRepos) error { return fn(trackingRepos{TxRepos: repos, r: r}) })
}

func TestReceive_FalloDeLineaQuedaAuditado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	grn, err := f.receipts.Create(ctx, actor, grnRequest())
	require.NoError(t, err)

	runner := &trackingRunner{s: f.store, failAppend: true}
	receipts := procurement.NewReceiptUseCase(runner, f.engine, f.store.GoodsReceipts(), idgen.MustNew(6))
	_, err = receipts.Receive(ctx, actor, grn.ID)
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.True(t, f.qty(t, "ItemA").IsZero())

	logs, err := f.store.Audit().List(ctx, repository.AuditFilter{Action: entity.AuditActionInventoryIn})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, string(logs[0].Payload), `"success":false`)
	assert.Contains(t, string(logs[0].Payload), grn.ID)
}

func TestShip_LineasSeBloqueanEnOrdenDeClave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, item := range []string{"ItemA", "ItemB"} {
		_, err := f.engine.In(ctx, actor, inventory.MovementInput{WarehouseID: "WH1", ItemID: item, Quantity: decimal.NewFromInt(10)})
		require.NoError(t, err)
	}
	d, err := f.deliveries.Create(ctx, dto.CreateDeliveryRequest{
		WarehouseID:  "WH1",
		CustomerName: "Ferretería Central",
		Lines: []dto.DeliveryLineRequest{
			{ItemID: "ItemB", Quantity: decimal.NewFromInt(2)},
			{ItemID: "ItemA", Quantity: decimal.NewFromInt(3)},
		},
	})
	require.NoError(t, err)

	runner := &trackingRunner{s: f.store}
	deliveries := procurement.NewDeliveryUseCase(runner, f.engine, f.store.Deliveries(), idgen.MustNew(6))
	shipped, err := deliveries.Ship(ctx, actor, d.ID)
	require.NoError(t, err)

	require.Len(t, runner.locked, 2)
	assert.Equal(t, "ItemA", runner.locked[0].ItemID)
	assert.Equal(t, "ItemB", runner.locked[1].ItemID)

	// Los ids de movimiento siguen el orden de las líneas del documento.
	require.Len(t, shipped.MovementIDs, 2)
	first, err := f.store.Movements().GetByID(ctx, shipped.MovementIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "ItemB", first.ItemID)
}

func TestReceive_DocumentosCruzadosNoSeBloquean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, order := range [][]string{{"ItemA", "ItemB"}, {"ItemB", "ItemA"}} {
		req := dto.CreateGRNRequest{WarehouseID: "WH1"}
		for _, item := range order {
			req.Lines = append(req.Lines, dto.GRNLineRequest{ItemID: item, Quantity: decimal.NewFromInt(1)})
		}
		grn, err := f.receipts.Create(ctx, actor, req)
		require.NoError(t, err)
		ids = append(ids, grn.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.receipts.Receive(ctx, actor, id)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.True(t, f.qty(t, "ItemA").Equal(decimal.NewFromInt(2)))
	assert.True(t, f.qty(t, "ItemB").Equal(decimal.NewFromInt(2)))
}
