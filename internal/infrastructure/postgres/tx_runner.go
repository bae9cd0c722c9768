package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool       *pgxpool.Pool
	ids        *idgen.Generator
	maxRetries int
	log        *logger.Logger
}

// NewTxRunner construye el runner. maxRetries acota los reintentos ante 40001/40P01.
func NewTxRunner(pool *pgxpool.Pool, ids *idgen.Generator, maxRetries int, log *logger.Logger) *TxRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, ids: ids, maxRetries: maxRetries, log: log.Component("tx_runner")}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Conflictos de serialización o deadlock se reintentan; agotados los intentos se devuelve
// ErrStorageUnavailable. Los errores de dominio de fn se devuelven tal cual.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) || ctx.Err() != nil {
			if isLockTimeout(err) {
				return domain.WrapStorage("lock timeout", err)
			}
			return domain.WrapStorage("transaction", err)
		}
		lastErr = err
		r.log.Warn().Err(err).Int("attempt", attempt+1).Msg("reintentando transacción")
	}
	return domain.WrapStorage(fmt.Sprintf("transaction tras %d reintentos", r.maxRetries), lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txRepos{q: tx, ids: r.ids}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxCommitRollback) {
			return fmt.Errorf("commit transaction: rollback: %w", err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txRepos implementa repository.TxRepos sobre una pgx.Tx.
type txRepos struct {
	q   Querier
	ids *idgen.Generator
}

func (t *txRepos) StockLines() repository.StockLineRepository { return NewStockLineRepository(t.q) }
func (t *txRepos) Movements() repository.MovementRepository {
	return NewMovementRepository(t.q, t.ids)
}
func (t *txRepos) Warehouses() repository.WarehouseRepository { return NewWarehouseRepository(t.q) }
func (t *txRepos) Items() repository.ItemRepository           { return NewItemRepository(t.q) }
func (t *txRepos) GoodsReceipts() repository.GoodsReceiptRepository {
	return NewGoodsReceiptRepository(t.q)
}
func (t *txRepos) Deliveries() repository.DeliveryRepository { return NewDeliveryRepository(t.q) }
