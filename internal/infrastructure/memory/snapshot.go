package memory

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.LedgerSnapshotReader = (*Store)(nil)

// ReadSnapshot copia líneas y log bajo un único RLock; fn lee la copia congelada.
// Un commit aplica líneas y movimientos con el lock exclusivo, así que la copia nunca
// queda a medio camino entre ambos.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(stock repository.StockLineReader, movements repository.MovementReader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	frozen := New(s.ids, s.lockTimeout)
	frozen.now = s.now

	s.mu.RLock()
	for k, l := range s.lines {
		frozen.lines[k] = cloneStockLine(l)
	}
	frozen.movements = make([]*entity.MovementRecord, 0, len(s.movements))
	for _, m := range s.movements {
		c := cloneMovement(m)
		frozen.movements = append(frozen.movements, c)
		frozen.movementByID[c.ID] = c
	}
	s.mu.RUnlock()

	return fn(frozen.StockLines(), frozen.Movements())
}
