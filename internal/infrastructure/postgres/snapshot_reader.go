package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.LedgerSnapshotReader = (*SnapshotReader)(nil)

// SnapshotReader lee stock_lines y movements dentro de una transacción REPEATABLE READ
// de solo lectura: ambas consultas ven la misma foto de la base.
type SnapshotReader struct {
	pool *pgxpool.Pool
}

func NewSnapshotReader(pool *pgxpool.Pool) *SnapshotReader {
	return &SnapshotReader{pool: pool}
}

func (r *SnapshotReader) ReadSnapshot(ctx context.Context, fn func(stock repository.StockLineReader, movements repository.MovementReader) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return domain.WrapStorage("begin snapshot", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockLineRepository(tx), NewMovementRepository(tx, nil)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WrapStorage("commit snapshot", fmt.Errorf("commit: %w", err))
	}
	return nil
}
