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

var _ repository.GoodsReceiptRepository = (*GoodsReceiptRepo)(nil)

// GoodsReceiptRepo recepciones (GRN) y sus líneas sobre PostgreSQL.
type GoodsReceiptRepo struct {
	q Querier
}

// NewGoodsReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGoodsReceiptRepository(q Querier) *GoodsReceiptRepo {
	return &GoodsReceiptRepo{q: q}
}

const grnColumns = `id, number, po_reference, warehouse_id, received_by, status, inspection_result,
	inspection_notes, inspected_by, inspected_at, received_at, created_at`

// Create inserta cabecera y líneas. Debe llamarse dentro de una transacción para que sea atómico.
func (r *GoodsReceiptRepo) Create(ctx context.Context, g *entity.GoodsReceipt) error {
	_, err := r.q.Exec(ctx, `INSERT INTO goods_receipts (`+grnColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		g.ID, g.Number, g.POReference, g.WarehouseID, g.ReceivedBy, g.Status, g.InspectionResult,
		g.InspectionNotes, g.InspectedBy, g.InspectedAt, g.ReceivedAt, g.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert grn: %w", err)
	}
	for _, l := range g.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO goods_receipt_lines (id, grn_id, item_id, bin_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, g.ID, l.ItemID, l.BinID, l.Quantity, l.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert grn line: %w", err)
		}
	}
	return nil
}

func (r *GoodsReceiptRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.GoodsReceipt, error) {
	query := `SELECT ` + grnColumns + ` FROM goods_receipts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var g entity.GoodsReceipt
	err := r.q.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Number, &g.POReference, &g.WarehouseID, &g.ReceivedBy, &g.Status, &g.InspectionResult,
		&g.InspectionNotes, &g.InspectedBy, &g.InspectedAt, &g.ReceivedAt, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grn: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, grn_id, item_id, bin_id, quantity, unit_price
		FROM goods_receipt_lines WHERE grn_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get grn lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.GoodsReceiptLine
		if err := rows.Scan(&l.ID, &l.GRNID, &l.ItemID, &l.BinID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan grn line: %w", err)
		}
		g.Lines = append(g.Lines, l)
	}
	return &g, rows.Err()
}

func (r *GoodsReceiptRepo) GetByID(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate bloquea la cabecera del GRN.
func (r *GoodsReceiptRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	return r.get(ctx, id, true)
}

func (r *GoodsReceiptRepo) SaveInspection(ctx context.Context, id, result, notes, inspectedBy string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE goods_receipts
		SET inspection_result = $2, inspection_notes = $3, inspected_by = $4, inspected_at = $5
		WHERE id = $1`, id, result, notes, inspectedBy, at)
	if err != nil {
		return fmt.Errorf("save inspection: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GoodsReceiptRepo) MarkReceived(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE goods_receipts SET status = $2, received_at = $3 WHERE id = $1`,
		id, entity.GRNStatusReceived, at)
	if err != nil {
		return fmt.Errorf("mark grn received: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve cabeceras (sin líneas), más recientes primero.
func (r *GoodsReceiptRepo) List(ctx context.Context, limit, offset int) ([]*entity.GoodsReceipt, error) {
	rows, err := r.q.Query(ctx, `SELECT `+grnColumns+` FROM goods_receipts
		ORDER BY created_at DESC LIMIT NULLIF($1, 0) OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list grns: %w", err)
	}
	defer rows.Close()
	var list []*entity.GoodsReceipt
	for rows.Next() {
		var g entity.GoodsReceipt
		if err := rows.Scan(&g.ID, &g.Number, &g.POReference, &g.WarehouseID, &g.ReceivedBy, &g.Status,
			&g.InspectionResult, &g.InspectionNotes, &g.InspectedBy, &g.InspectedAt, &g.ReceivedAt, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grn: %w", err)
		}
		list = append(list, &g)
	}
	return list, rows.Err()
}
