package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo Movement Log sobre PostgreSQL. Solo INSERT y SELECT.
type MovementRepo struct {
	q   Querier
	ids *idgen.Generator
}

// NewMovementRepository construye el adaptador. ids asigna el identificador Snowflake en Append.
func NewMovementRepository(q Querier, ids *idgen.Generator) *MovementRepo {
	return &MovementRepo{q: q, ids: ids}
}

const movementColumns = `id, sequence, kind, source_warehouse_id, destination_warehouse_id, item_id,
	bin_id, destination_bin_id, quantity, reason, reference_type, reference_id, created_by, created_at`

func scanMovement(row pgx.Row) (*entity.MovementRecord, error) {
	var m entity.MovementRecord
	var kind string
	err := row.Scan(&m.ID, &m.Sequence, &kind, &m.SourceWarehouseID, &m.DestinationWarehouseID, &m.ItemID,
		&m.BinID, &m.DestinationBinID, &m.Quantity, &m.Reason, &m.ReferenceType, &m.ReferenceID,
		&m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	return &m, nil
}

func (r *MovementRepo) Append(ctx context.Context, rec *entity.MovementRecord) (string, error) {
	rec.ID, rec.Sequence = r.ids.Next(rec.Kind.Prefix())
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.Sequence, string(rec.Kind), rec.SourceWarehouseID, rec.DestinationWarehouseID, rec.ItemID,
		rec.BinID, rec.DestinationBinID, rec.Quantity, rec.Reason, rec.ReferenceType, rec.ReferenceID,
		rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("append movement: %w", err)
	}
	return rec.ID, nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementRecord, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapStorage("get movement", err)
	}
	return m, nil
}

// movementWhere arma el WHERE común a List y al historial de reportes.
func movementWhere(alias string, f repository.MovementFilter) (string, []any) {
	p := alias + "."
	where := `WHERE ($1 = '' OR ` + p + `source_warehouse_id = $1 OR ` + p + `destination_warehouse_id = $1)
		AND ($2 = '' OR ` + p + `item_id = $2)
		AND ($3 = '' OR ` + p + `kind = $3)
		AND ($4 = '' OR ` + p + `reference_type = $4)
		AND ($5 = '' OR ` + p + `reference_id = $5)
		AND ($6::timestamptz IS NULL OR ` + p + `created_at >= $6)
		AND ($7::timestamptz IS NULL OR ` + p + `created_at <= $7)`
	return where, []any{f.WarehouseID, f.ItemID, string(f.Kind), f.ReferenceType, f.ReferenceID, f.From, f.To}
}

func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementRecord, error) {
	where, args := movementWhere("m", filter)
	query := `SELECT ` + prefixColumns("m", movementColumns) + ` FROM movements m ` + where + `
		ORDER BY m.sequence DESC LIMIT NULLIF($8, 0) OFFSET $9`
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStorage("list movements", err)
	}
	defer rows.Close()
	var list []*entity.MovementRecord
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Replay recorre el log en orden de secuencia.
func (r *MovementRepo) Replay(ctx context.Context, fn func(*entity.MovementRecord) error) error {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM movements ORDER BY sequence`)
	if err != nil {
		return domain.WrapStorage("replay movements", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return fmt.Errorf("scan movement: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}
