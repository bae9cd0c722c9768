package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	ledger "github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
)

// Requiere una base real: LEDGER_TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
const dsnEnv = "LEDGER_TEST_DATABASE_URL"

var actor = entity.Actor{UserID: "u-1", Email: "bodega@example.com", Role: "storekeeper"}

type fixture struct {
	pool   *pgxpool.Pool
	runner *postgres.TxRunner
	engine *inventory.Engine
	wh1    string
	wh2    string
	item   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s no definido", dsnEnv)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10}, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))

	ids := idgen.MustNew(7)
	runner := postgres.NewTxRunner(pool, ids, 3, nil)
	f := &fixture{
		pool:   pool,
		runner: runner,
		engine: inventory.NewEngine(runner, postgres.NewAuditRepository(pool), nil),
		wh1:    uuid.NewString(),
		wh2:    uuid.NewString(),
		item:   uuid.NewString(),
	}

	now := time.Now()
	whs := postgres.NewWarehouseRepository(pool)
	for _, id := range []string{f.wh1, f.wh2} {
		require.NoError(t, whs.Create(ctx, &entity.Warehouse{ID: id, Code: "T-" + id[:8], Name: "Prueba " + id[:8], CreatedAt: now, UpdatedAt: now}))
	}
	require.NoError(t, postgres.NewItemRepository(pool).Create(ctx, &entity.Item{
		ID: f.item, SKU: "SKU-" + f.item[:8], Name: "Cable", UOM: "UND", CreatedAt: now, UpdatedAt: now,
	}))
	return f
}

func (f *fixture) quantity(t *testing.T, wh string) decimal.Decimal {
	t.Helper()
	l, err := postgres.NewStockLineRepository(f.pool).Get(context.Background(), entity.StockKey{WarehouseID: wh, ItemID: f.item})
	require.NoError(t, err)
	if l == nil {
		return decimal.Zero
	}
	return l.Quantity
}

func TestLedger_EscenarioSobrePostgres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.In(ctx, actor, inventory.MovementInput{WarehouseID: f.wh1, ItemID: f.item, Quantity: decimal.NewFromInt(100), ReferenceType: "PO", ReferenceID: "PO-1"})
	require.NoError(t, err)
	_, err = f.engine.Transfer(ctx, actor, inventory.TransferInput{SourceWarehouseID: f.wh1, DestinationWarehouseID: f.wh2, ItemID: f.item, Quantity: decimal.NewFromInt(30)})
	require.NoError(t, err)

	_, err = f.engine.Out(ctx, actor, inventory.MovementInput{WarehouseID: f.wh2, ItemID: f.item, Quantity: decimal.NewFromInt(50)})
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.True(t, short.Shortfall.Equal(decimal.NewFromInt(20)))

	assert.True(t, f.quantity(t, f.wh1).Equal(decimal.NewFromInt(70)))
	assert.True(t, f.quantity(t, f.wh2).Equal(decimal.NewFromInt(30)))

	moves, err := postgres.NewMovementRepository(f.pool, nil).List(ctx, repository.MovementFilter{ItemID: f.item})
	require.NoError(t, err)
	assert.Len(t, moves, 4)

	logs, err := postgres.NewAuditRepository(f.pool).List(ctx, repository.AuditFilter{Actor: actor.Name()})
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestLedger_SalidasConcurrentesEnPostgres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.In(ctx, actor, inventory.MovementInput{WarehouseID: f.wh1, ItemID: f.item, Quantity: decimal.NewFromInt(10)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Out(ctx, actor, inventory.MovementInput{WarehouseID: f.wh1, ItemID: f.item, Quantity: decimal.NewFromInt(4)})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 2, ok)
	assert.True(t, f.quantity(t, f.wh1).Equal(decimal.NewFromInt(2)))
}

func TestLedger_ReplayCoincideConLasLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, q := range []int64{40, 15, 5} {
		_, err := f.engine.In(ctx, actor, inventory.MovementInput{WarehouseID: f.wh1, ItemID: f.item, Quantity: decimal.NewFromInt(q)})
		require.NoError(t, err)
	}
	_, err := f.engine.Transfer(ctx, actor, inventory.TransferInput{SourceWarehouseID: f.wh1, DestinationWarehouseID: f.wh2, ItemID: f.item, Quantity: decimal.RequireFromString("12.5")})
	require.NoError(t, err)

	r := ledger.NewReplayer()
	require.NoError(t, postgres.NewMovementRepository(f.pool, nil).Replay(ctx, func(m *entity.MovementRecord) error {
		if m.ItemID == f.item {
			r.Apply(m)
		}
		return nil
	}))
	balances := r.Balances()
	assert.True(t, balances[entity.StockKey{WarehouseID: f.wh1, ItemID: f.item}].Equal(f.quantity(t, f.wh1)))
	assert.True(t, balances[entity.StockKey{WarehouseID: f.wh2, ItemID: f.item}].Equal(f.quantity(t, f.wh2)))
}

func TestTxRunner_ErrorDeDominioHaceRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	err := f.runner.Run(ctx, func(repos repository.TxRepos) error {
		line, err := repos.StockLines().GetOrCreateForUpdate(ctx, entity.StockKey{WarehouseID: f.wh1, ItemID: f.item})
		if err != nil {
			return err
		}
		if err := repos.StockLines().SetQuantity(ctx, line.ID, decimal.NewFromInt(99), time.Now()); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.quantity(t, f.wh1).IsZero())
}
