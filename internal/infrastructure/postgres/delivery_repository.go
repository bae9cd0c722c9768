package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

// DeliveryRepo órdenes de despacho sobre PostgreSQL.
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

const deliveryColumns = `id, number, warehouse_id, customer_name, status, scheduled_date, shipped_at, created_at`

func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	_, err := r.q.Exec(ctx, `INSERT INTO deliveries (`+deliveryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.Number, d.WarehouseID, d.CustomerName, d.Status, d.ScheduledDate, d.ShippedAt, d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	for _, l := range d.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO delivery_lines (id, delivery_id, item_id, bin_id, quantity)
			VALUES ($1, $2, $3, $4, $5)`, l.ID, d.ID, l.ItemID, l.BinID, l.Quantity)
		if err != nil {
			return fmt.Errorf("insert delivery line: %w", err)
		}
	}
	return nil
}

func (r *DeliveryRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var d entity.Delivery
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Number, &d.WarehouseID, &d.CustomerName, &d.Status, &d.ScheduledDate, &d.ShippedAt, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, delivery_id, item_id, bin_id, quantity
		FROM delivery_lines WHERE delivery_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get delivery lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.DeliveryLine
		if err := rows.Scan(&l.ID, &l.DeliveryID, &l.ItemID, &l.BinID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan delivery line: %w", err)
		}
		d.Lines = append(d.Lines, l)
	}
	return &d, rows.Err()
}

func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.get(ctx, id, false)
}

func (r *DeliveryRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.get(ctx, id, true)
}

func (r *DeliveryRepo) MarkShipped(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE deliveries SET status = $2, shipped_at = $3 WHERE id = $1`,
		id, entity.DeliveryStatusShipped, at)
	if err != nil {
		return fmt.Errorf("mark delivery shipped: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DeliveryRepo) List(ctx context.Context, limit, offset int) ([]*entity.Delivery, error) {
	rows, err := r.q.Query(ctx, `SELECT `+deliveryColumns+` FROM deliveries
		ORDER BY created_at DESC LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()
	var list []*entity.Delivery
	for rows.Next() {
		var d entity.Delivery
		if err := rows.Scan(&d.ID, &d.Number, &d.WarehouseID, &d.CustomerName, &d.Status,
			&d.ScheduledDate, &d.ShippedAt, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
