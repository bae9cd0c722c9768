// Package memory implementa el ledger y sus documentos en memoria del proceso.
// Las transacciones bloquean por clave (equivalente a SELECT ... FOR UPDATE), acumulan
// las escrituras y las aplican de una sola vez en Commit; un error descarta todo.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
)

var errLockTimeout = errors.New("timeout esperando bloqueo")

// Store estado en memoria. Seguro para uso concurrente.
type Store struct {
	mu          sync.RWMutex
	ids         *idgen.Generator
	lockTimeout time.Duration
	locks       *keyLocks
	now         func() time.Time

	lines        map[entity.StockKey]*entity.StockLine
	movements    []*entity.MovementRecord
	movementByID map[string]*entity.MovementRecord
	audits       []*entity.AuditLog
	warehouses   map[string]*entity.Warehouse
	bins         map[string]*entity.BinLocation
	items        map[string]*entity.Item
	grns         map[string]*entity.GoodsReceipt
	deliveries   map[string]*entity.Delivery
}

// New construye el store. lockTimeout acota la espera por el bloqueo de una clave.
func New(ids *idgen.Generator, lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Store{
		ids:          ids,
		lockTimeout:  lockTimeout,
		locks:        &keyLocks{m: make(map[string]chan struct{})},
		now:          time.Now,
		lines:        make(map[entity.StockKey]*entity.StockLine),
		movementByID: make(map[string]*entity.MovementRecord),
		warehouses:   make(map[string]*entity.Warehouse),
		bins:         make(map[string]*entity.BinLocation),
		items:        make(map[string]*entity.Item),
		grns:         make(map[string]*entity.GoodsReceipt),
		deliveries:   make(map[string]*entity.Delivery),
	}
}

// Run ejecuta fn con repositorios atados a una transacción; Commit si fn no falla, descarte si falla.
func (s *Store) Run(ctx context.Context, fn func(r repository.TxRepos) error) error {
	tx := &Tx{
		s:     s,
		held:  make(map[string]struct{}),
		lines: make(map[entity.StockKey]*entity.StockLine),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.WrapStorage("commit", err)
	}
	tx.commit()
	return nil
}

// Repositorios sin transacción (autocommit) para lecturas y mantenimiento de catálogos.

func (s *Store) StockLines() repository.StockLineRepository       { return &stockLineRepo{s: s} }
func (s *Store) Movements() repository.MovementRepository         { return &movementRepo{s: s} }
func (s *Store) Warehouses() repository.WarehouseRepository       { return &warehouseRepo{s: s} }
func (s *Store) Items() repository.ItemRepository                 { return &itemRepo{s: s} }
func (s *Store) GoodsReceipts() repository.GoodsReceiptRepository { return &grnRepo{s: s} }
func (s *Store) Deliveries() repository.DeliveryRepository        { return &deliveryRepo{s: s} }
func (s *Store) Audit() repository.AuditRepository                { return &auditRepo{s: s} }
func (s *Store) Reports() repository.ReportRepository             { return &reportRepo{s: s} }

// apply ejecuta op de inmediato (autocommit) o la difiere al Commit de tx.
func (s *Store) apply(tx *Tx, op func()) {
	if tx == nil {
		s.mu.Lock()
		op()
		s.mu.Unlock()
		return
	}
	tx.ops = append(tx.ops, op)
}

// insertUnique inserta bajo la clave única key. El lock "unique:<key>" se mantiene hasta el
// Commit, así que un segundo Create concurrente espera y ve la fila ya insertada. Sin
// transacción abre una propia.
func (s *Store) insertUnique(ctx context.Context, tx *Tx, key string, exists func() bool, insert func()) error {
	if tx == nil {
		return s.Run(ctx, func(r repository.TxRepos) error {
			return s.insertUnique(ctx, r.(*Tx), key, exists, insert)
		})
	}
	lockKey := "unique:" + key
	if _, ok := tx.held[lockKey]; ok {
		return domain.ErrDuplicate
	}
	if err := tx.lock(ctx, lockKey); err != nil {
		return err
	}
	s.mu.RLock()
	dup := exists()
	s.mu.RUnlock()
	if dup {
		return domain.ErrDuplicate
	}
	tx.ops = append(tx.ops, insert)
	return nil
}

// Tx transacción en curso. Implementa repository.TxRepos.
type Tx struct {
	s     *Store
	held  map[string]struct{}
	lines map[entity.StockKey]*entity.StockLine // copias de trabajo de líneas bloqueadas
	moves []*entity.MovementRecord
	ops   []func()
}

func (tx *Tx) StockLines() repository.StockLineRepository { return &stockLineRepo{s: tx.s, tx: tx} }
func (tx *Tx) Movements() repository.MovementRepository   { return &movementRepo{s: tx.s, tx: tx} }
func (tx *Tx) Warehouses() repository.WarehouseRepository { return &warehouseRepo{s: tx.s, tx: tx} }
func (tx *Tx) Items() repository.ItemRepository           { return &itemRepo{s: tx.s, tx: tx} }
func (tx *Tx) GoodsReceipts() repository.GoodsReceiptRepository {
	return &grnRepo{s: tx.s, tx: tx}
}
func (tx *Tx) Deliveries() repository.DeliveryRepository { return &deliveryRepo{s: tx.s, tx: tx} }

// lock toma el bloqueo de key una sola vez por transacción.
func (tx *Tx) lock(ctx context.Context, key string) error {
	if _, ok := tx.held[key]; ok {
		return nil
	}
	if err := tx.s.locks.acquire(ctx, key, tx.s.lockTimeout); err != nil {
		return domain.WrapStorage(fmt.Sprintf("bloquear %s", key), err)
	}
	tx.held[key] = struct{}{}
	return nil
}

func (tx *Tx) commit() {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, line := range tx.lines {
		s.lines[k] = cloneStockLine(line)
	}
	for _, m := range tx.moves {
		s.movements = append(s.movements, m)
		s.movementByID[m.ID] = m
	}
	for _, op := range tx.ops {
		op()
	}
}

func (tx *Tx) release() {
	for key := range tx.held {
		tx.s.locks.release(key)
	}
	tx.held = nil
}

// keyLocks mutex por clave con espera acotada.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]chan struct{}
}

func (l *keyLocks) get(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.m[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.m[key] = ch
	}
	return ch
}

func (l *keyLocks) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := l.get(key)
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errLockTimeout
	}
}

func (l *keyLocks) release(key string) {
	<-l.get(key)
}
