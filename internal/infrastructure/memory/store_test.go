package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
)

var keyA = entity.StockKey{WarehouseID: "WH1", ItemID: "ITEM1"}

func newStore(t *testing.T, timeout time.Duration) *memory.Store {
	t.Helper()
	return memory.New(idgen.MustNew(7), timeout)
}

func TestGetOrCreateForUpdate_Idempotente(t *testing.T) {
	s := newStore(t, time.Second)
	ctx := context.Background()

	var first, second *entity.StockLine
	err := s.Run(ctx, func(r repository.TxRepos) error {
		var err error
		first, err = r.StockLines().GetOrCreateForUpdate(ctx, keyA)
		if err != nil {
			return err
		}
		second, err = r.StockLines().GetOrCreateForUpdate(ctx, keyA)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.Quantity.IsZero())

	err = s.Run(ctx, func(r repository.TxRepos) error {
		again, err := r.StockLines().GetOrCreateForUpdate(ctx, keyA)
		if err != nil {
			return err
		}
		assert.Equal(t, first.ID, again.ID)
		return nil
	})
	require.NoError(t, err)

	lines, err := s.StockLines().List(ctx, repository.StockLineFilter{})
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestRun_ErrorDescartaEscrituras(t *testing.T) {
	s := newStore(t, time.Second)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(r repository.TxRepos) error {
		line, err := r.StockLines().GetOrCreateForUpdate(ctx, keyA)
		if err != nil {
			return err
		}
		if err := r.StockLines().SetQuantity(ctx, line.ID, decimal.NewFromInt(5), time.Now()); err != nil {
			return err
		}
		if _, err := r.Movements().Append(ctx, &entity.MovementRecord{
			Kind: entity.MovementKindIn, SourceWarehouseID: "WH1", ItemID: "ITEM1", Quantity: decimal.NewFromInt(5),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	line, err := s.StockLines().Get(ctx, keyA)
	require.NoError(t, err)
	assert.Nil(t, line, "la línea creada en la transacción fallida no debe persistir")

	moves, err := s.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestRun_CommitPersisteLineaYMovimiento(t *testing.T) {
	s := newStore(t, time.Second)
	ctx := context.Background()

	var movementID string
	err := s.Run(ctx, func(r repository.TxRepos) error {
		line, err := r.StockLines().GetOrCreateForUpdate(ctx, keyA)
		if err != nil {
			return err
		}
		if err := r.StockLines().SetQuantity(ctx, line.ID, decimal.NewFromInt(3), time.Now()); err != nil {
			return err
		}
		movementID, err = r.Movements().Append(ctx, &entity.MovementRecord{
			Kind: entity.MovementKindIn, SourceWarehouseID: "WH1", ItemID: "ITEM1", Quantity: decimal.NewFromInt(3),
		})
		return err
	})
	require.NoError(t, err)

	line, err := s.StockLines().Get(ctx, keyA)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(3)))

	m, err := s.Movements().GetByID(ctx, movementID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, entity.MovementKindIn, m.Kind)
	assert.Positive(t, m.Sequence)
}

func TestLock_TimeoutEsErrorDeAlmacenamiento(t *testing.T) {
	s := newStore(t, 50*time.Millisecond)
	ctx := context.Background()

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx, func(r repository.TxRepos) error {
			if _, err := r.StockLines().GetOrCreateForUpdate(ctx, keyA); err != nil {
				return err
			}
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding

	err := s.Run(ctx, func(r repository.TxRepos) error {
		_, err := r.StockLines().GetOrCreateForUpdate(ctx, keyA)
		return err
	})
	close(done)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestMovements_ListYReplay(t *testing.T) {
	s := newStore(t, time.Second)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := s.Movements().Append(ctx, &entity.MovementRecord{
			Kind: entity.MovementKindIn, SourceWarehouseID: "WH1", ItemID: "ITEM1", Quantity: decimal.NewFromInt(int64(i)),
		})
		require.NoError(t, err)
	}

	list, err := s.Movements().List(ctx, repository.MovementFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].Sequence, list[1].Sequence, "más recientes primero")

	var seen []int64
	err = s.Movements().Replay(ctx, func(m *entity.MovementRecord) error {
		seen = append(seen, m.Quantity.IntPart())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, seen)
}

func TestCatalogo_CodigoDuplicado(t *testing.T) {
	s := newStore(t, time.Second)
	ctx := context.Background()

	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "w1", Code: "WH1", Name: "Principal"}))
	err := s.Warehouses().Create(ctx, &entity.Warehouse{ID: "w2", Code: "wh1", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, s.Items().Create(ctx, &entity.Item{ID: "i1", SKU: "SKU-1", Name: "Tornillo"}))
	err = s.Items().Create(ctx, &entity.Item{ID: "i2", SKU: "SKU-1", Name: "Tuerca"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCatalogo_AltasConcurrentesConMismoCodigo(t *testing.T) {
	for round := 0; round < 20; round++ {
		s := newStore(t, time.Second)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%2 == 0 {
					errs[i] = s.Warehouses().Create(ctx, &entity.Warehouse{ID: fmt.Sprintf("w%d", i), Code: "WH1", Name: "Principal"})
					return
				}
				errs[i] = s.Run(ctx, func(r repository.TxRepos) error {
					return r.Warehouses().Create(ctx, &entity.Warehouse{ID: fmt.Sprintf("w%d", i), Code: "wh1", Name: "Principal"})
				})
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.ErrorIs(t, err, domain.ErrDuplicate)
		}
		assert.Equal(t, 1, ok)
		list, err := s.Warehouses().List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
}

func TestCatalogo_DuplicadoDentroDeLaMismaTransaccion(t *testing.T) {
	s := newStore(t, time.Second)
	ctx := context.Background()

	err := s.Run(ctx, func(r repository.TxRepos) error {
		if err := r.Items().Create(ctx, &entity.Item{ID: "i1", SKU: "SKU-9", Name: "Tornillo"}); err != nil {
			return err
		}
		return r.Items().Create(ctx, &entity.Item{ID: "i2", SKU: "sku-9", Name: "Tuerca"})
	})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	item, err := s.Items().GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Nil(t, item, "el error descarta también la primera alta")
}
