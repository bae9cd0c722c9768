package repository

import (
	"context"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos. Limit <= 0 significa sin límite.
type MovementFilter struct {
	WarehouseID   string // coincide con origen o destino
	ItemID        string
	Kind          entity.MovementKind
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// MovementReader lectura del Movement Log.
type MovementReader interface {
	GetByID(ctx context.Context, id string) (*entity.MovementRecord, error)
	// List devuelve los movimientos más recientes primero.
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementRecord, error)
	// Replay recorre el log completo en orden de creación.
	Replay(ctx context.Context, fn func(*entity.MovementRecord) error) error
}

// MovementRepository puerto del Movement Log: solo se agrega, nunca se actualiza ni se elimina.
type MovementRepository interface {
	MovementReader
	// Append asigna ID y secuencia al registro, lo persiste y devuelve el ID.
	Append(ctx context.Context, record *entity.MovementRecord) (string, error)
}
